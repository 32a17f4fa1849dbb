package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/parallel"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
	"github.com/YuminosukeSato/tabgo/tree"
)

// ComputeDecisionTreeBinEdges derives one edge sequence per column of X by
// fitting a single-feature decision tree against the target y and taking
// its split thresholds, plus the column min and max, as boundaries. Unlike
// uniform quantiles, supervised splits concentrate bins where they best
// separate the target.
//
// treeOpts is forwarded to the tree fitter, except MaxLeafNodes: it is
// derived from the per-column effective bin count, and supplying it is a
// configuration conflict. The bin-count adjustment and warning rule matches
// ComputeQuantileBinEdges.
func ComputeDecisionTreeBinEdges(X mat.Matrix, nBins int, y []float64, task tree.Task, treeOpts tree.Options, opts ...Option) ([]Edges, error) {
	const op = "ComputeDecisionTreeBinEdges"
	o := applyOptions(opts)
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrEmptyData, "preprocessing."+op)
	}
	if len(y) != r {
		return nil, pkgerrors.NewDimensionError("preprocessing."+op, r, len(y), 0)
	}
	if treeOpts.MaxLeafNodes != 0 {
		return nil, pkgerrors.NewConfigConflictError("preprocessing."+op, "MaxLeafNodes",
			"it is set equal to the effective bin count automatically")
	}

	stats := computeColumnStats(X)
	counts, err := adjustBinCounts(op, stats, nBins, o.warn)
	if err != nil {
		return nil, err
	}

	edges := make([]Edges, c)
	errs := make([]error, c)
	parallel.ColumnsWithThreshold(c, parallelThreshold, func(start, end int) {
		col := make([]float64, r)
		for j := start; j < end; j++ {
			for i := 0; i < r; i++ {
				col[i] = X.At(i, j)
			}
			colOpts := treeOpts
			colOpts.MaxLeafNodes = counts[j]
			t, err := tree.Fit(col, y, task, colOpts)
			if err != nil {
				errs[j] = pkgerrors.Wrapf(err, "preprocessing.%s: column %d", op, j)
				continue
			}

			boundaries := t.SplitThresholds()
			boundaries = append(boundaries, stats[j].sorted[0], stats[j].sorted[r-1])
			sort.Float64s(boundaries)
			dedup := boundaries[:1]
			for _, b := range boundaries[1:] {
				if b > dedup[len(dedup)-1] {
					dedup = append(dedup, b)
				}
			}
			edges[j], errs[j] = NewEdges(dedup)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return edges, nil
}
