package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabgo/core/model"
	"github.com/YuminosukeSato/tabgo/core/tensor"
	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
	"github.com/YuminosukeSato/tabgo/pkg/log"
	"github.com/YuminosukeSato/tabgo/tree"
)

// Strategy selects how bin edges are derived at fit time.
type Strategy int

const (
	// QuantileStrategy derives edges from equally spaced quantiles.
	QuantileStrategy Strategy = iota
	// DecisionTreeStrategy derives edges from supervised tree splits and
	// requires a target at fit time.
	DecisionTreeStrategy
)

// Discretizer is the stateful wrapper around the edge/index functions:
// Fit computes and freezes one edge sequence per column, Transform maps
// data onto bin indices with those edges.
type Discretizer struct {
	model.BaseEstimator

	// NBins is the requested bin count per feature.
	NBins int

	// Strategy selects quantile or decision-tree edges.
	Strategy Strategy

	// Task is the tree task for DecisionTreeStrategy.
	Task tree.Task

	// TreeOptions is forwarded to the tree fitter for DecisionTreeStrategy.
	// MaxLeafNodes must be left zero.
	TreeOptions tree.Options

	edges []Edges
}

// NewDiscretizer creates a Discretizer with the given bin count and
// strategy.
func NewDiscretizer(nBins int, strategy Strategy) *Discretizer {
	return &Discretizer{NBins: nBins, Strategy: strategy}
}

// Fit computes the per-column bin edges from training data. y is required
// for DecisionTreeStrategy and ignored otherwise.
func (d *Discretizer) Fit(X mat.Matrix, y []float64) error {
	var (
		edges []Edges
		err   error
	)
	switch d.Strategy {
	case DecisionTreeStrategy:
		edges, err = ComputeDecisionTreeBinEdges(X, d.NBins, y, d.Task, d.TreeOptions)
	default:
		edges, err = ComputeQuantileBinEdges(X, d.NBins)
	}
	if err != nil {
		return err
	}
	d.edges = edges

	effective := make([]int, len(edges))
	for j, e := range edges {
		effective[j] = e.NumBins()
	}
	r, c := X.Dims()
	logger := log.GetLoggerWithName("preprocessing")
	logger.Debug("fitted bin edges",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.BinsRequestedKey, d.NBins,
		log.BinsEffectiveKey, effective)

	d.SetFitted()
	return nil
}

// Edges returns the fitted edge sequences. The Edges values are immutable;
// the returned slice is a copy.
func (d *Discretizer) Edges() []Edges {
	out := make([]Edges, len(d.edges))
	copy(out, d.edges)
	return out
}

// Transform maps X onto bin indices using the fitted edges.
func (d *Discretizer) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !d.IsFitted() {
		return nil, pkgerrors.NewNotFittedError("Discretizer", "Transform")
	}
	return ComputeBinIndicesDense(X, d.edges)
}

// FitTransform fits on X and returns its bin indices.
func (d *Discretizer) FitTransform(X mat.Matrix, y []float64) (*mat.Dense, error) {
	if err := d.Fit(X, y); err != nil {
		return nil, err
	}
	return d.Transform(X)
}

// PiecewiseLinearEncoder chains the full pipeline behind a Fit/Transform
// surface: edges at fit time, indices -> fractions -> piecewise-linear
// encoding at transform time. The encoding width is the maximum bin count
// across columns, so every column's vectors share one shape.
type PiecewiseLinearEncoder struct {
	Discretizer

	dEncoding int
}

// NewPiecewiseLinearEncoder creates an encoder with the given bin count and
// strategy.
func NewPiecewiseLinearEncoder(nBins int, strategy Strategy) *PiecewiseLinearEncoder {
	return &PiecewiseLinearEncoder{Discretizer: Discretizer{NBins: nBins, Strategy: strategy}}
}

// Fit computes bin edges and fixes the encoding width.
func (e *PiecewiseLinearEncoder) Fit(X mat.Matrix, y []float64) error {
	if err := e.Discretizer.Fit(X, y); err != nil {
		return err
	}
	e.dEncoding = 0
	for _, ed := range e.edges {
		if ed.NumBins() > e.dEncoding {
			e.dEncoding = ed.NumBins()
		}
	}

	logger := log.GetLoggerWithName("preprocessing")
	logger.Debug("fitted encoding width",
		log.OperationKey, "fit",
		log.EncodingWidthKey, e.dEncoding)
	return nil
}

// DEncoding returns the fitted encoding width.
func (e *PiecewiseLinearEncoder) DEncoding() int { return e.dEncoding }

// Transform encodes X and flattens the result to
// (n_objects, n_features*DEncoding()) for linear-layer input.
//
// The open-ended upper bound of PiecewiseLinearEncoding is tied to the
// shared width DEncoding(): in a column with fewer bins than the widest
// one, values above the training maximum fall in a last bin whose index is
// below DEncoding()-1 and are rejected rather than passed through. Columns
// that must tolerate such values need equal bin counts, i.e. data without
// the distinct-value adjustment.
func (e *PiecewiseLinearEncoder) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, pkgerrors.NewNotFittedError("PiecewiseLinearEncoder", "Transform")
	}
	Xt := tensor.FromDense(X)
	indices, err := ComputeBinIndices(Xt, e.edges)
	if err != nil {
		return nil, err
	}
	values, err := ComputePiecewiseLinearBinValues(Xt, indices, e.edges)
	if err != nil {
		return nil, err
	}
	enc, err := PiecewiseLinearEncoding(values, indices, e.dEncoding)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(enc.Flatten())
}

// TransformOrdinal encodes X with the thermometer code instead of the
// piecewise-linear one, flattened the same way.
func (e *PiecewiseLinearEncoder) TransformOrdinal(X mat.Matrix) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, pkgerrors.NewNotFittedError("PiecewiseLinearEncoder", "TransformOrdinal")
	}
	indices, err := ComputeBinIndices(tensor.FromDense(X), e.edges)
	if err != nil {
		return nil, err
	}
	enc, err := OrdinalBinaryEncoding[float64](indices, e.dEncoding)
	if err != nil {
		return nil, err
	}
	return tensor.ToDense(enc.Flatten())
}

// FitTransform fits on X and returns its encoding.
func (e *PiecewiseLinearEncoder) FitTransform(X mat.Matrix, y []float64) (*mat.Dense, error) {
	if err := e.Fit(X, y); err != nil {
		return nil, err
	}
	return e.Transform(X)
}
