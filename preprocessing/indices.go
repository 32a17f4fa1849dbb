package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/parallel"
	"github.com/YuminosukeSato/tabgo/core/tensor"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// ComputeBinIndices maps every value of X to the index of its bin, given one
// edge sequence per column. Membership is edges[i] <= x < edges[i+1] with
// the first and last boundary treated as -Inf/+Inf, so values below the
// lowest interior boundary return 0 and values at or above the highest
// interior boundary return NumBins()-1. The convention is fixed here by
// searching interior boundaries only; it does not depend on any library's
// bucketize default.
func ComputeBinIndices[T tensor.Float](X *tensor.Matrix[T], edges []Edges) (*tensor.Matrix[int64], error) {
	r, c := X.Dims()
	if c != len(edges) {
		return nil, pkgerrors.NewDimensionError("preprocessing.ComputeBinIndices", len(edges), c, 1)
	}

	out := tensor.NewMatrix[int64](r, c, nil)
	parallel.ColumnsWithThreshold(c, parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			interior := edges[j].Values()
			interior = interior[1 : len(interior)-1]
			for i := 0; i < r; i++ {
				x := float64(X.At(i, j))
				// Number of interior boundaries <= x.
				idx := sort.Search(len(interior), func(k int) bool { return interior[k] > x })
				out.Set(i, j, int64(idx))
			}
		}
	})
	return out, nil
}

// ComputeBinIndicesDense is the gonum-backend form of ComputeBinIndices.
// The returned matrix holds integer-valued entries.
func ComputeBinIndicesDense(X mat.Matrix, edges []Edges) (*mat.Dense, error) {
	indices, err := ComputeBinIndices(tensor.FromDense(X), edges)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(indices)
}
