package tensor

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestKindOf(t *testing.T) {
	if KindOf[int64]() != KindSignedInt {
		t.Error("KindOf[int64] != KindSignedInt")
	}
	if KindOf[int8]() != KindSignedInt {
		t.Error("KindOf[int8] != KindSignedInt")
	}
	if KindOf[float64]() != KindFloat {
		t.Error("KindOf[float64] != KindFloat")
	}
	if KindOf[float32]() != KindFloat {
		t.Error("KindOf[float32] != KindFloat")
	}
}

func TestMatrixAccessors(t *testing.T) {
	m := NewMatrix(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	r, c := m.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("Dims() = (%d,%d), want (2,3)", r, c)
	}
	if m.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", m.At(1, 2))
	}

	m.Set(0, 1, 9)
	if m.At(0, 1) != 9 {
		t.Errorf("Set did not stick: %v", m.At(0, 1))
	}

	col := m.Col(nil, 2)
	if col[0] != 3 || col[1] != 6 {
		t.Errorf("Col(2) = %v, want [3 6]", col)
	}
}

func TestMatrixClone(t *testing.T) {
	m := NewMatrix(1, 2, []int64{1, 2})
	cl := m.Clone()
	cl.Set(0, 0, 99)
	if m.At(0, 0) != 1 {
		t.Error("Clone shares the backing slice")
	}
}

func TestNewMatrixPanics(t *testing.T) {
	t.Run("bad length", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for mismatched data length")
			}
		}()
		NewMatrix(2, 2, []float64{1})
	})
	t.Run("negative dims", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for negative dimension")
			}
		}()
		NewMatrix[float64](-1, 2, nil)
	})
}

func TestDenseRoundTrip(t *testing.T) {
	src := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	m := FromDense(src)
	back, err := ToDense(m)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(src, back) {
		t.Errorf("round trip changed the matrix: %v", mat.Formatted(back))
	}
}

func TestToDenseWidensIntegers(t *testing.T) {
	m := NewMatrix(1, 2, []int64{3, -1})
	d, err := ToDense(m)
	if err != nil {
		t.Fatal(err)
	}
	if d.At(0, 0) != 3 || d.At(0, 1) != -1 {
		t.Errorf("unexpected values: %v, %v", d.At(0, 0), d.At(0, 1))
	}
}

func TestToDenseEmpty(t *testing.T) {
	if _, err := ToDense(NewMatrix[float64](0, 3, nil)); err == nil {
		t.Fatal("expected error for empty matrix")
	}
}

func TestTensor3Flatten(t *testing.T) {
	tr := NewTensor3[float64](2, 2, 2)
	v := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				tr.Set(i, j, k, v)
				v++
			}
		}
	}

	m := tr.Flatten()
	r, c := m.Dims()
	if r != 2 || c != 4 {
		t.Fatalf("Flatten dims = (%d,%d), want (2,4)", r, c)
	}
	// Row i holds feature blocks side by side: (i,j,k) -> (i, j*d+k).
	want := []float64{0, 1, 2, 3}
	for j, w := range want {
		if m.At(0, j) != w {
			t.Errorf("flattened[0][%d] = %v, want %v", j, m.At(0, j), w)
		}
	}
	if m.At(1, 0) != 4 {
		t.Errorf("flattened[1][0] = %v, want 4", m.At(1, 0))
	}

	// The backing slice is shared by contract.
	tr.Set(0, 0, 0, 42)
	if m.At(0, 0) != 42 {
		t.Error("Flatten copied the backing slice")
	}
}
