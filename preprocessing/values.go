package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/parallel"
	"github.com/YuminosukeSato/tabgo/core/tensor"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// ComputePiecewiseLinearBinValues computes, for every value of X, its
// fractional position inside its assigned bin:
//
//	(x - edges[idx]) / (edges[idx+1] - edges[idx])
//
// Interior bins yield values in [0, 1]. Values are not clamped: data beyond
// the training range lands in an extreme bin and produces a fraction below
// 0 or above 1 there, which PiecewiseLinearEncoding accepts for exactly
// those bins.
//
// indices must have the shape of X and come from edge sequences of the same
// lengths; an index whose right boundary would fall outside its column's
// edges is a contract violation.
func ComputePiecewiseLinearBinValues[T tensor.Float](X *tensor.Matrix[T], indices *tensor.Matrix[int64], edges []Edges) (*tensor.Matrix[T], error) {
	const op = "preprocessing.ComputePiecewiseLinearBinValues"
	r, c := X.Dims()
	ir, ic := indices.Dims()
	if r != ir {
		return nil, pkgerrors.NewDimensionError(op, r, ir, 0)
	}
	if c != ic {
		return nil, pkgerrors.NewDimensionError(op, c, ic, 1)
	}
	if c != len(edges) {
		return nil, pkgerrors.NewDimensionError(op, len(edges), c, 1)
	}

	out := tensor.NewMatrix[T](r, c, nil)
	errs := make([]error, c)
	parallel.ColumnsWithThreshold(c, parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			n := edges[j].Len()
			for i := 0; i < r; i++ {
				idx := indices.At(i, j)
				if idx < 0 || idx+1 >= int64(n) {
					errs[j] = pkgerrors.NewValueError(op,
						fmt.Sprintf("the indices in column %d are not compatible with the bin edges of that column", j))
					return
				}
				left := edges[j].At(int(idx))
				right := edges[j].At(int(idx) + 1)
				out.Set(i, j, T((float64(X.At(i, j))-left)/(right-left)))
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ComputePiecewiseLinearBinValuesDense is the gonum-backend form of
// ComputePiecewiseLinearBinValues. indices must hold integer-valued
// entries, as produced by ComputeBinIndicesDense.
func ComputePiecewiseLinearBinValuesDense(X, indices mat.Matrix, edges []Edges) (*mat.Dense, error) {
	idx, err := denseToIndices("preprocessing.ComputePiecewiseLinearBinValues", indices)
	if err != nil {
		return nil, err
	}
	values, err := ComputePiecewiseLinearBinValues(tensor.FromDense(X), idx, edges)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(values)
}

// denseToIndices converts an integer-valued float matrix into an int64
// matrix, rejecting fractional entries. It is the float64 backend's
// analogue of requiring an integer dtype.
func denseToIndices(op string, indices mat.Matrix) (*tensor.Matrix[int64], error) {
	r, c := indices.Dims()
	out := tensor.NewMatrix[int64](r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := indices.At(i, j)
			if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, pkgerrors.NewValueError(op, "indices must be integer-valued")
			}
			out.Set(i, j, int64(v))
		}
	}
	return out, nil
}
