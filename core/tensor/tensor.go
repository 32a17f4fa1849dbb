// Package tensor provides the dense numeric containers shared by the
// binning and encoding pipeline.
//
// The algorithms in the preprocessing package are written once against the
// generic Matrix and Tensor3 types; gonum users cross the boundary through
// the FromDense/ToDense adapters. Element kinds form a closed enumeration
// (signed integer, floating point) so that dtype decisions are made by
// exhaustive switching, never by inspecting type names.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// Signed is the set of signed-integer element types.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Float is the set of floating-point element types.
type Float interface {
	~float32 | ~float64
}

// Number is the set of supported element types.
type Number interface {
	Signed | Float
}

// Kind classifies an element type.
type Kind int

const (
	// KindSignedInt marks signed-integer elements.
	KindSignedInt Kind = iota
	// KindFloat marks floating-point elements.
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSignedInt:
		return "signed integer"
	case KindFloat:
		return "floating point"
	default:
		return "unknown"
	}
}

// KindOf reports the Kind of the element type T.
func KindOf[T Number]() Kind {
	switch any(*new(T)).(type) {
	case int8, int16, int32, int64:
		return KindSignedInt
	default:
		return KindFloat
	}
}

// Matrix is a dense row-major 2-D array of T with shape
// (n_objects, n_features).
type Matrix[T Number] struct {
	rows, cols int
	data       []T
}

// NewMatrix creates a rows×cols matrix. If data is nil a zeroed backing
// slice is allocated; otherwise data is used directly and must have
// rows*cols elements.
func NewMatrix[T Number](rows, cols int, data []T) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic("tensor: negative dimension")
	}
	if data == nil {
		data = make([]T, rows*cols)
	} else if len(data) != rows*cols {
		panic("tensor: data length does not match dimensions")
	}
	return &Matrix[T]{rows: rows, cols: cols, data: data}
}

// Dims returns the shape (rows, cols).
func (m *Matrix[T]) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at (i, j).
func (m *Matrix[T]) At(i, j int) T { return m.data[i*m.cols+j] }

// Set assigns the element at (i, j).
func (m *Matrix[T]) Set(i, j int, v T) { m.data[i*m.cols+j] = v }

// Col copies column j into dst, allocating when dst is nil or too short.
func (m *Matrix[T]) Col(dst []T, j int) []T {
	if cap(dst) < m.rows {
		dst = make([]T, m.rows)
	}
	dst = dst[:m.rows]
	for i := 0; i < m.rows; i++ {
		dst[i] = m.data[i*m.cols+j]
	}
	return dst
}

// Clone returns a deep copy.
func (m *Matrix[T]) Clone() *Matrix[T] {
	data := make([]T, len(m.data))
	copy(data, m.data)
	return &Matrix[T]{rows: m.rows, cols: m.cols, data: data}
}

// FromDense converts a gonum matrix into a Matrix[float64].
func FromDense(src mat.Matrix) *Matrix[float64] {
	r, c := src.Dims()
	out := NewMatrix[float64](r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = src.At(i, j)
		}
	}
	return out
}

// ToDense converts the matrix into a gonum *mat.Dense. Integer elements are
// widened to float64; a zero-sized matrix is rejected because gonum does not
// represent empty Dense matrices.
func ToDense[T Number](m *Matrix[T]) (*mat.Dense, error) {
	if m.rows == 0 || m.cols == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrEmptyData, "tensor.ToDense")
	}
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.rows, m.cols, data), nil
}

// Tensor3 is a dense row-major 3-D array of T with shape
// (n_objects, n_features, d).
type Tensor3[T Number] struct {
	n, f, d int
	data    []T
}

// NewTensor3 creates an n×f×d tensor backed by a zeroed slice.
func NewTensor3[T Number](n, f, d int) *Tensor3[T] {
	if n < 0 || f < 0 || d < 0 {
		panic("tensor: negative dimension")
	}
	return &Tensor3[T]{n: n, f: f, d: d, data: make([]T, n*f*d)}
}

// Dims returns the shape (n_objects, n_features, d).
func (t *Tensor3[T]) Dims() (int, int, int) { return t.n, t.f, t.d }

// At returns the element at (i, j, k).
func (t *Tensor3[T]) At(i, j, k int) T { return t.data[(i*t.f+j)*t.d+k] }

// Set assigns the element at (i, j, k).
func (t *Tensor3[T]) Set(i, j, k int, v T) { t.data[(i*t.f+j)*t.d+k] = v }

// Flatten reshapes the tensor into a (n_objects, n_features*d) matrix. The
// backing slice is shared, not copied. This is the layout consumed by
// linear-layer inputs.
func (t *Tensor3[T]) Flatten() *Matrix[T] {
	return &Matrix[T]{rows: t.n, cols: t.f * t.d, data: t.data}
}
