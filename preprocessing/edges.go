package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabgo/core/parallel"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// parallelThreshold is the column count below which transforms run
// sequentially.
const parallelThreshold = 8

// Edges is an immutable, strictly increasing sequence of bin boundaries for
// one feature column. It always has at least two entries (one bin). Edges
// are produced once at training time and only read afterwards; the backing
// slice is never exposed.
type Edges struct {
	vals []float64
}

// NewEdges validates and copies vals into an Edges value. vals must be
// strictly increasing with at least two entries.
func NewEdges(vals []float64) (Edges, error) {
	if len(vals) < 2 {
		return Edges{}, pkgerrors.NewValidationError("edges", "must contain at least two boundaries", len(vals))
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return Edges{}, pkgerrors.NewValidationError("edges", "must be strictly increasing", vals)
		}
	}
	copied := make([]float64, len(vals))
	copy(copied, vals)
	return Edges{vals: copied}, nil
}

// Len returns the number of boundaries.
func (e Edges) Len() int { return len(e.vals) }

// NumBins returns the number of bins, Len()-1.
func (e Edges) NumBins() int { return len(e.vals) - 1 }

// At returns boundary i.
func (e Edges) At(i int) float64 { return e.vals[i] }

// Values returns a copy of the boundaries.
func (e Edges) Values() []float64 {
	out := make([]float64, len(e.vals))
	copy(out, e.vals)
	return out
}

// Option configures an edge-computation call.
type Option func(*computeOptions)

type computeOptions struct {
	warn func(error)
}

// WithWarningHandler routes the call's non-fatal warnings to fn instead of
// the package-level handler in pkg/errors.
func WithWarningHandler(fn func(error)) Option {
	return func(o *computeOptions) { o.warn = fn }
}

func applyOptions(opts []Option) computeOptions {
	o := computeOptions{warn: pkgerrors.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// columnStats holds the per-column intermediates shared by both edge
// strategies.
type columnStats struct {
	sorted   []float64
	distinct int
}

func computeColumnStats(X mat.Matrix) []columnStats {
	r, c := X.Dims()
	stats := make([]columnStats, c)
	parallel.ColumnsWithThreshold(c, parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			col := make([]float64, r)
			for i := 0; i < r; i++ {
				col[i] = X.At(i, j)
			}
			sort.Float64s(col)
			distinct := 1
			for i := 1; i < r; i++ {
				if col[i] != col[i-1] {
					distinct++
				}
			}
			stats[j] = columnStats{sorted: col, distinct: distinct}
		}
	})
	return stats
}

// adjustBinCounts lowers the effective bin count of each column to its
// distinct-value count and reports the adjustment through warn. A constant
// column cannot be binned and fails; so does nBins below two.
func adjustBinCounts(op string, stats []columnStats, nBins int, warn func(error)) ([]int, error) {
	if nBins < 2 {
		return nil, pkgerrors.NewValidationError("n_bins", "must be greater than 1", nBins)
	}
	counts := make([]int, len(stats))
	for j, s := range stats {
		if s.distinct < 2 {
			return nil, pkgerrors.NewValueError(op, fmt.Sprintf("all elements in column %d are the same", j))
		}
		if s.distinct < nBins {
			warn(pkgerrors.NewBinCountWarning(j, nBins, s.distinct))
			counts[j] = s.distinct
		} else {
			counts[j] = nBins
		}
	}
	return counts, nil
}

// ComputeQuantileBinEdges derives one edge sequence per column of X from
// equally spaced quantile levels. The levels include 0 and 1, so the edges
// span the column's min and max; adjacent equal quantile values collapse,
// which can shrink the bin count further without error.
func ComputeQuantileBinEdges(X mat.Matrix, nBins int, opts ...Option) ([]Edges, error) {
	o := applyOptions(opts)
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrEmptyData, "preprocessing.ComputeQuantileBinEdges")
	}

	stats := computeColumnStats(X)
	counts, err := adjustBinCounts("ComputeQuantileBinEdges", stats, nBins, o.warn)
	if err != nil {
		return nil, err
	}

	edges := make([]Edges, c)
	errs := make([]error, c)
	parallel.ColumnsWithThreshold(c, parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			levels := make([]float64, counts[j]+1)
			floats.Span(levels, 0, 1)
			boundaries := make([]float64, 0, len(levels))
			for _, p := range levels {
				q := stat.Quantile(p, stat.LinInterp, stats[j].sorted, nil)
				if len(boundaries) == 0 || q > boundaries[len(boundaries)-1] {
					boundaries = append(boundaries, q)
				}
			}
			edges[j], errs[j] = NewEdges(boundaries)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return edges, nil
}
