package nn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// ResNetBlock is the main building block of ResNet:
//
//	|-> Norm -> Linear -> Activation -> Dropout -> Linear -> Dropout ->|
//	|                                                                  |
//	(in) ------------------------------------------------------------ Add -> (out)
type ResNetBlock struct {
	Norm          *BatchNorm
	LinearFirst   *Linear
	Activation    Activation
	DropoutFirst  *Dropout
	LinearSecond  *Linear
	DropoutSecond *Dropout
}

// Forward applies the block with its residual connection.
func (b *ResNetBlock) Forward(x *mat.Dense) (*mat.Dense, error) {
	z, err := b.Norm.Forward(x)
	if err != nil {
		return nil, err
	}
	if z, err = b.LinearFirst.Forward(z); err != nil {
		return nil, err
	}
	z = apply(z, b.Activation)
	if z, err = b.DropoutFirst.Forward(z); err != nil {
		return nil, err
	}
	if z, err = b.LinearSecond.Forward(z); err != nil {
		return nil, err
	}
	if z, err = b.DropoutSecond.Forward(z); err != nil {
		return nil, err
	}
	n, c := x.Dims()
	out := mat.NewDense(n, c, nil)
	out.Add(x, z)
	return out, nil
}

// ResNetHead is the output module of ResNet: Norm -> Activation -> Linear.
type ResNetHead struct {
	Norm       *BatchNorm
	Activation Activation
	Linear     *Linear
}

// Forward applies the head.
func (h *ResNetHead) Forward(x *mat.Dense) (*mat.Dense, error) {
	z, err := h.Norm.Forward(x)
	if err != nil {
		return nil, err
	}
	z = apply(z, h.Activation)
	return h.Linear.Forward(z)
}

// ResNet is the residual backbone:
//
//	(in) -> Linear -> Block -> ... -> Block -> Head -> (out)
//
// Head is omitted when dOut is zero, making the model backbone-only.
type ResNet struct {
	FirstLayer *Linear
	Blocks     []*ResNetBlock
	Head       *ResNetHead
}

// MakeBaselineResNet builds the baseline variant: ReLU activations and
// batch normalization throughout. dMain is the block input/output width,
// dHidden the width after the first linear layer of each block. dOut == 0
// omits the head.
func MakeBaselineResNet(dIn, dOut, nBlocks, dMain, dHidden int, dropoutFirst, dropoutSecond float64, seed uint64) (*ResNet, error) {
	if nBlocks <= 0 {
		return nil, pkgerrors.NewValidationError("n_blocks", "must be positive", nBlocks)
	}
	src := rand.NewSource(seed)

	first, err := NewLinear(dIn, dMain, src)
	if err != nil {
		return nil, err
	}
	r := &ResNet{FirstLayer: first}
	for i := 0; i < nBlocks; i++ {
		block, err := newResNetBlock(dMain, dHidden, dropoutFirst, dropoutSecond, src)
		if err != nil {
			return nil, err
		}
		r.Blocks = append(r.Blocks, block)
	}
	if dOut > 0 {
		norm, err := NewBatchNorm(dMain)
		if err != nil {
			return nil, err
		}
		linear, err := NewLinear(dMain, dOut, src)
		if err != nil {
			return nil, err
		}
		r.Head = &ResNetHead{Norm: norm, Activation: ReLU, Linear: linear}
	}
	return r, nil
}

func newResNetBlock(dMain, dHidden int, dropoutFirst, dropoutSecond float64, src rand.Source) (*ResNetBlock, error) {
	norm, err := NewBatchNorm(dMain)
	if err != nil {
		return nil, err
	}
	linearFirst, err := NewLinear(dMain, dHidden, src)
	if err != nil {
		return nil, err
	}
	dropFirst, err := NewDropout(dropoutFirst, src)
	if err != nil {
		return nil, err
	}
	linearSecond, err := NewLinear(dHidden, dMain, src)
	if err != nil {
		return nil, err
	}
	dropSecond, err := NewDropout(dropoutSecond, src)
	if err != nil {
		return nil, err
	}
	return &ResNetBlock{
		Norm:          norm,
		LinearFirst:   linearFirst,
		Activation:    ReLU,
		DropoutFirst:  dropFirst,
		LinearSecond:  linearSecond,
		DropoutSecond: dropSecond,
	}, nil
}

// SetTraining switches dropout and batch-statistics behavior everywhere.
func (r *ResNet) SetTraining(training bool) {
	for _, b := range r.Blocks {
		b.Norm.SetTraining(training)
		b.DropoutFirst.SetTraining(training)
		b.DropoutSecond.SetTraining(training)
	}
	if r.Head != nil {
		r.Head.Norm.SetTraining(training)
	}
}

// Forward runs the model on a (n, dIn) matrix.
func (r *ResNet) Forward(x *mat.Dense) (*mat.Dense, error) {
	x, err := r.FirstLayer.Forward(x)
	if err != nil {
		return nil, err
	}
	for _, b := range r.Blocks {
		if x, err = b.Forward(x); err != nil {
			return nil, err
		}
	}
	if r.Head != nil {
		if x, err = r.Head.Forward(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}
