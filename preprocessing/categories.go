package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/tensor"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// GetCategorySizes validates integer-encoded categorical columns and
// returns the count of distinct values per column. A column is valid only
// when its distinct values form the exact contiguous range [0, k-1]: the
// minimum must be zero and there must be no gaps. The sizes are the
// cardinality input for downstream categorical-embedding construction.
//
// For valid inputs the result equals max+1 per column.
func GetCategorySizes[T tensor.Signed](X *tensor.Matrix[T]) ([]int, error) {
	const op = "preprocessing.GetCategorySizes"
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrEmptyData, op)
	}

	sizes := make([]int, c)
	for j := 0; j < c; j++ {
		seen := make(map[T]struct{}, 16)
		minVal, maxVal := X.At(0, j), X.At(0, j)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			seen[v] = struct{}{}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		if minVal != 0 {
			return nil, pkgerrors.NewValueError(op,
				fmt.Sprintf("the minimum value of column %d is %d, but it must be zero", j, int64(minVal)))
		}
		if int64(maxVal)+1 != int64(len(seen)) {
			return nil, pkgerrors.NewValueError(op,
				fmt.Sprintf("the values of column %d do not fully cover the range from zero to %d", j, int64(maxVal)))
		}
		sizes[j] = len(seen)
	}
	return sizes, nil
}

// GetCategorySizesDense is the gonum-backend form of GetCategorySizes.
// Every entry must be integer-valued; a fractional entry is the float64
// backend's analogue of a non-integer dtype and is rejected.
func GetCategorySizesDense(X mat.Matrix) ([]int, error) {
	const op = "preprocessing.GetCategorySizes"
	r, c := X.Dims()
	out := tensor.NewMatrix[int64](r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, pkgerrors.NewValueError(op, "X must contain signed integer values")
			}
			out.Set(i, j, int64(v))
		}
	}
	return GetCategorySizes(out)
}
