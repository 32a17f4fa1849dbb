package nn

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestReLU(t *testing.T) {
	if ReLU(-3) != 0 || ReLU(0) != 0 || ReLU(2) != 2 {
		t.Error("ReLU does not clamp negatives to zero")
	}
}

func TestLinearForward(t *testing.T) {
	l := &Linear{
		W:   mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		B:   mat.NewVecDense(2, []float64{10, 20}),
		in:  2,
		out: 2,
	}

	x := mat.NewDense(1, 2, []float64{1, 1})
	y, err := l.Forward(x)
	if err != nil {
		t.Fatal(err)
	}
	// [1 1] * [[1 2][3 4]] + [10 20] = [14 26]
	if y.At(0, 0) != 14 || y.At(0, 1) != 26 {
		t.Errorf("Forward = [%v %v], want [14 26]", y.At(0, 0), y.At(0, 1))
	}
}

func TestLinearForwardDimensionMismatch(t *testing.T) {
	l, err := NewLinear(3, 2, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Forward(mat.NewDense(1, 4, nil)); err == nil {
		t.Fatal("expected error for input width mismatch")
	}
}

func TestNewLinearInitBounds(t *testing.T) {
	in := 16
	l, err := NewLinear(in, 8, rand.NewSource(7))
	if err != nil {
		t.Fatal(err)
	}
	bound := 1 / math.Sqrt(float64(in))
	for i := 0; i < in; i++ {
		for j := 0; j < 8; j++ {
			if w := l.W.At(i, j); w < -bound || w > bound {
				t.Fatalf("weight %v outside +-%v", w, bound)
			}
		}
	}
}

func TestNewLinearRejectsBadSizes(t *testing.T) {
	if _, err := NewLinear(0, 2, rand.NewSource(1)); err == nil {
		t.Fatal("expected error for in = 0")
	}
	if _, err := NewLinear(2, 0, rand.NewSource(1)); err == nil {
		t.Fatal("expected error for out = 0")
	}
}

func TestDropoutEvalIsIdentity(t *testing.T) {
	d, err := NewDropout(0.9, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y, err := d.Forward(x)
	if err != nil {
		t.Fatal(err)
	}
	if y != x {
		t.Error("evaluation-mode dropout must pass the input through")
	}
}

func TestDropoutTraining(t *testing.T) {
	d, err := NewDropout(0.5, rand.NewSource(3))
	if err != nil {
		t.Fatal(err)
	}
	d.SetTraining(true)

	x := mat.NewDense(1, 1000, nil)
	for j := 0; j < 1000; j++ {
		x.Set(0, j, 1)
	}
	y, err := d.Forward(x)
	if err != nil {
		t.Fatal(err)
	}

	zeros := 0
	for j := 0; j < 1000; j++ {
		v := y.At(0, j)
		if v == 0 {
			zeros++
		} else if v != 2 {
			t.Fatalf("survivor scaled to %v, want 2", v)
		}
	}
	if zeros < 400 || zeros > 600 {
		t.Errorf("zeroed %d of 1000 at rate 0.5", zeros)
	}
}

func TestNewDropoutRejectsBadRate(t *testing.T) {
	for _, rate := range []float64{-0.1, 1, 1.5} {
		if _, err := NewDropout(rate, rand.NewSource(1)); err == nil {
			t.Errorf("rate %v accepted", rate)
		}
	}
}

func TestBatchNormTraining(t *testing.T) {
	bn, err := NewBatchNorm(1)
	if err != nil {
		t.Fatal(err)
	}
	bn.SetTraining(true)

	x := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
	y, err := bn.Forward(x)
	if err != nil {
		t.Fatal(err)
	}

	// Batch statistics: mean 5, variance 5. Output has zero mean, unit
	// variance up to eps.
	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += y.At(i, 0)
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("normalized mean = %v, want 0", sum/4)
	}

	if math.Abs(bn.RunningMean[0]-0.5) > 1e-12 {
		t.Errorf("RunningMean = %v, want 0.5", bn.RunningMean[0])
	}
	if math.Abs(bn.RunningVar[0]-(0.9+0.1*5)) > 1e-12 {
		t.Errorf("RunningVar = %v, want 1.4", bn.RunningVar[0])
	}
}

func TestBatchNormEvalUsesRunningStats(t *testing.T) {
	bn, err := NewBatchNorm(1)
	if err != nil {
		t.Fatal(err)
	}
	bn.RunningMean[0] = 3
	bn.RunningVar[0] = 4

	x := mat.NewDense(1, 1, []float64{5})
	y, err := bn.Forward(x)
	if err != nil {
		t.Fatal(err)
	}
	want := (5.0 - 3.0) / math.Sqrt(4+bn.Eps)
	if math.Abs(y.At(0, 0)-want) > 1e-12 {
		t.Errorf("eval output = %v, want %v", y.At(0, 0), want)
	}
}

func TestBatchNormDimensionMismatch(t *testing.T) {
	bn, err := NewBatchNorm(2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bn.Forward(mat.NewDense(1, 3, nil)); err == nil {
		t.Fatal("expected error for feature-count mismatch")
	}
}
