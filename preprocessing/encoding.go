package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/tensor"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// lvrEncoding is the Left-Value-Right kernel shared by both encoders. For
// every (object, feature) slot it produces a d-wide vector
//
//	[left, ..., left, values[o,f], right, ..., right]
//
// with the payload at position indices[o,f]. The fill scalars and the
// values matrix share the type parameter, so the original's runtime
// "left and right must be of the same type" check holds by construction.
func lvrEncoding[T tensor.Number](op string, values *tensor.Matrix[T], indices *tensor.Matrix[int64], dEncoding int, left, right T) (*tensor.Tensor3[T], error) {
	if dEncoding < 1 {
		return nil, pkgerrors.NewValidationError("d_encoding", "must be positive", dEncoding)
	}
	r, c := values.Dims()
	ir, ic := indices.Dims()
	if r != ir {
		return nil, pkgerrors.NewDimensionError(op, r, ir, 0)
	}
	if c != ic {
		return nil, pkgerrors.NewDimensionError(op, c, ic, 1)
	}

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if idx := indices.At(i, j); idx < 0 || idx >= int64(dEncoding) {
				return nil, pkgerrors.NewValueError(op, "all indices must be non-negative and less than d_encoding")
			}
		}
	}

	out := tensor.NewTensor3[T](r, c, dEncoding)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			idx := int(indices.At(i, j))
			for k := 0; k < idx; k++ {
				out.Set(i, j, k, left)
			}
			out.Set(i, j, idx, values.At(i, j))
			for k := idx + 1; k < dEncoding; k++ {
				out.Set(i, j, k, right)
			}
		}
	}
	return out, nil
}

// OrdinalBinaryEncoding expands bin indices into a monotone thermometer
// code of width dEncoding: positions up to and including the index are 1,
// positions beyond it are 0. Each slot encodes "index >= position" as a
// non-increasing binary vector.
func OrdinalBinaryEncoding[T tensor.Number](indices *tensor.Matrix[int64], dEncoding int) (*tensor.Tensor3[T], error) {
	r, c := indices.Dims()
	ones := tensor.NewMatrix[T](r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			ones.Set(i, j, 1)
		}
	}
	return lvrEncoding("preprocessing.OrdinalBinaryEncoding", ones, indices, dEncoding, 1, 0)
}

// OrdinalBinaryEncodingDense is the gonum-backend form of
// OrdinalBinaryEncoding. The result is flattened to
// (n_objects, n_features*dEncoding).
func OrdinalBinaryEncodingDense(indices mat.Matrix, dEncoding int) (*mat.Dense, error) {
	idx, err := denseToIndices("preprocessing.OrdinalBinaryEncoding", indices)
	if err != nil {
		return nil, err
	}
	enc, err := OrdinalBinaryEncoding[float64](idx, dEncoding)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(enc.Flatten())
}

// PiecewiseLinearEncoding expands in-bin fractions (as produced by
// ComputePiecewiseLinearBinValues) into a staircase code of width
// dEncoding: 1 before the active bin, the fraction at it, 0 after it. It is
// the smooth generalization of OrdinalBinaryEncoding.
//
// Fractions must lie in [0, 1] except in the open-ended extreme bins: the
// lower bound is dropped where the index is 0 and the upper bound where the
// index is the last position.
func PiecewiseLinearEncoding[T tensor.Float](values *tensor.Matrix[T], indices *tensor.Matrix[int64], dEncoding int) (*tensor.Tensor3[T], error) {
	const op = "preprocessing.PiecewiseLinearEncoding"
	const message = "values do not satisfy the requirements for the piecewise-linear encoding. " +
		"Use ComputePiecewiseLinearBinValues to obtain valid values"

	r, c := values.Dims()
	ir, ic := indices.Dims()
	if r == ir && c == ic {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := float64(values.At(i, j))
				idx := indices.At(i, j)
				lower, upper := 0.0, 1.0
				if idx == 0 {
					lower = math.Inf(-1)
				}
				if idx+1 == int64(dEncoding) {
					upper = math.Inf(1)
				}
				if v < lower || v > upper {
					return nil, pkgerrors.NewValueError(op, message)
				}
			}
		}
	}
	return lvrEncoding(op, values, indices, dEncoding, 1, 0)
}

// PiecewiseLinearEncodingDense is the gonum-backend form of
// PiecewiseLinearEncoding. The result is flattened to
// (n_objects, n_features*dEncoding).
func PiecewiseLinearEncodingDense(values, indices mat.Matrix, dEncoding int) (*mat.Dense, error) {
	idx, err := denseToIndices("preprocessing.PiecewiseLinearEncoding", indices)
	if err != nil {
		return nil, err
	}
	enc, err := PiecewiseLinearEncoding(tensor.FromDense(values), idx, dEncoding)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(enc.Flatten())
}
