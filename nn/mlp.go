package nn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// MLPBlock is the main building block of MLP:
// Linear -> Activation -> Dropout.
type MLPBlock struct {
	Linear     *Linear
	Activation Activation
	Dropout    *Dropout
}

// MLP is a multilayer perceptron:
//
//	(in) -> Block -> ... -> Block -> Head -> (out)
//
// Head is a plain Linear layer and is omitted when dOut is zero, making the
// model backbone-only.
type MLP struct {
	Blocks []*MLPBlock
	Head   *Linear
}

// NewMLP builds an MLP. dLayers must be non-empty; dropouts must have one
// rate per layer. dOut == 0 omits the head.
func NewMLP(dIn, dOut int, dLayers []int, dropouts []float64, activation Activation, src rand.Source) (*MLP, error) {
	if len(dLayers) == 0 {
		return nil, pkgerrors.NewValidationError("d_layers", "must be non-empty", dLayers)
	}
	if len(dropouts) != len(dLayers) {
		return nil, pkgerrors.NewDimensionError("nn.NewMLP", len(dLayers), len(dropouts), 1)
	}

	m := &MLP{}
	in := dIn
	for i, d := range dLayers {
		linear, err := NewLinear(in, d, src)
		if err != nil {
			return nil, err
		}
		dropout, err := NewDropout(dropouts[i], src)
		if err != nil {
			return nil, err
		}
		m.Blocks = append(m.Blocks, &MLPBlock{Linear: linear, Activation: activation, Dropout: dropout})
		in = d
	}
	if dOut > 0 {
		head, err := NewLinear(in, dOut, src)
		if err != nil {
			return nil, err
		}
		m.Head = head
	}
	return m, nil
}

// MakeBaselineMLP builds the baseline variant: uniform layer width, one
// dropout rate, ReLU activations.
func MakeBaselineMLP(dIn, dOut, nBlocks, dLayer int, dropout float64, seed uint64) (*MLP, error) {
	if nBlocks <= 0 {
		return nil, pkgerrors.NewValidationError("n_blocks", "must be positive", nBlocks)
	}
	dLayers := make([]int, nBlocks)
	dropouts := make([]float64, nBlocks)
	for i := range dLayers {
		dLayers[i] = dLayer
		dropouts[i] = dropout
	}
	return NewMLP(dIn, dOut, dLayers, dropouts, ReLU, rand.NewSource(seed))
}

// SetTraining switches dropout behavior for all blocks.
func (m *MLP) SetTraining(training bool) {
	for _, b := range m.Blocks {
		b.Dropout.SetTraining(training)
	}
}

// Forward runs the model on a (n, dIn) matrix.
func (m *MLP) Forward(x *mat.Dense) (*mat.Dense, error) {
	var err error
	for _, b := range m.Blocks {
		if x, err = b.Linear.Forward(x); err != nil {
			return nil, err
		}
		x = apply(x, b.Activation)
		if x, err = b.Dropout.Forward(x); err != nil {
			return nil, err
		}
	}
	if m.Head != nil {
		if x, err = m.Head.Forward(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}
