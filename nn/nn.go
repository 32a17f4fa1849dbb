// Package nn provides the neural backbones for tabular deep learning: an
// MLP and a ResNet built from plain layer composition over gonum matrices.
// They consume the (n_objects, n_features*d_encoding) flattenings produced
// by the preprocessing package.
//
// Layers default to evaluation mode; call SetTraining(true) on a model to
// enable dropout and batch statistics.
package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// Activation is an element-wise activation function.
type Activation func(float64) float64

// ReLU clamps negative values to zero.
func ReLU(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Identity passes values through unchanged.
func Identity(v float64) float64 { return v }

// Linear is a fully connected layer: y = x*W + b.
type Linear struct {
	// W has shape (in, out).
	W *mat.Dense
	// B has length out.
	B *mat.VecDense

	in, out int
}

// NewLinear creates a Linear layer with Kaiming-uniform initialization,
// bounds +-1/sqrt(in), drawn from src.
func NewLinear(in, out int, src rand.Source) (*Linear, error) {
	if in < 1 || out < 1 {
		return nil, pkgerrors.NewValidationError("in/out", "layer sizes must be positive", []int{in, out})
	}
	bound := 1 / math.Sqrt(float64(in))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}

	w := mat.NewDense(in, out, nil)
	for i := 0; i < in; i++ {
		for j := 0; j < out; j++ {
			w.Set(i, j, dist.Rand())
		}
	}
	b := mat.NewVecDense(out, nil)
	for j := 0; j < out; j++ {
		b.SetVec(j, dist.Rand())
	}
	return &Linear{W: w, B: b, in: in, out: out}, nil
}

// Forward applies the layer to a (n, in) matrix and returns (n, out).
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	n, c := x.Dims()
	if c != l.in {
		return nil, pkgerrors.NewDimensionError("nn.Linear.Forward", l.in, c, 1)
	}
	out := mat.NewDense(n, l.out, nil)
	out.Mul(x, l.W)
	for i := 0; i < n; i++ {
		for j := 0; j < l.out; j++ {
			out.Set(i, j, out.At(i, j)+l.B.AtVec(j))
		}
	}
	return out, nil
}

// Dropout zeroes entries with probability Rate in training mode and scales
// the survivors by 1/(1-Rate). In evaluation mode it is the identity.
type Dropout struct {
	Rate float64

	training bool
	rnd      *rand.Rand
}

// NewDropout creates a Dropout layer. rate must lie in [0, 1).
func NewDropout(rate float64, src rand.Source) (*Dropout, error) {
	if rate < 0 || rate >= 1 {
		return nil, pkgerrors.NewValidationError("dropout", "must be in [0, 1)", rate)
	}
	return &Dropout{Rate: rate, rnd: rand.New(src)}, nil
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout) SetTraining(training bool) { d.training = training }

// Forward applies dropout.
func (d *Dropout) Forward(x *mat.Dense) (*mat.Dense, error) {
	if !d.training || d.Rate == 0 {
		return x, nil
	}
	n, c := x.Dims()
	scale := 1 / (1 - d.Rate)
	out := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			if d.rnd.Float64() < d.Rate {
				continue
			}
			out.Set(i, j, x.At(i, j)*scale)
		}
	}
	return out, nil
}

// BatchNorm normalizes each feature to zero mean and unit variance, with
// learnable scale and shift. Training mode uses batch statistics and
// updates the running estimates; evaluation mode uses the running
// estimates.
type BatchNorm struct {
	Gamma, Beta             []float64
	RunningMean, RunningVar []float64

	Momentum float64
	Eps      float64

	features int
	training bool
}

// NewBatchNorm creates a BatchNorm over the given feature count with
// gamma=1, beta=0, momentum 0.1 and eps 1e-5.
func NewBatchNorm(features int) (*BatchNorm, error) {
	if features < 1 {
		return nil, pkgerrors.NewValidationError("features", "must be positive", features)
	}
	bn := &BatchNorm{
		Gamma:       make([]float64, features),
		Beta:        make([]float64, features),
		RunningMean: make([]float64, features),
		RunningVar:  make([]float64, features),
		Momentum:    0.1,
		Eps:         1e-5,
		features:    features,
	}
	for i := range bn.Gamma {
		bn.Gamma[i] = 1
		bn.RunningVar[i] = 1
	}
	return bn, nil
}

// SetTraining switches between batch and running statistics.
func (b *BatchNorm) SetTraining(training bool) { b.training = training }

// Forward normalizes x feature-wise.
func (b *BatchNorm) Forward(x *mat.Dense) (*mat.Dense, error) {
	n, c := x.Dims()
	if c != b.features {
		return nil, pkgerrors.NewDimensionError("nn.BatchNorm.Forward", b.features, c, 1)
	}

	mean := b.RunningMean
	variance := b.RunningVar
	if b.training {
		mean = make([]float64, c)
		variance = make([]float64, c)
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += x.At(i, j)
			}
			mean[j] = sum / float64(n)
			sq := 0.0
			for i := 0; i < n; i++ {
				diff := x.At(i, j) - mean[j]
				sq += diff * diff
			}
			variance[j] = sq / float64(n)

			b.RunningMean[j] = (1-b.Momentum)*b.RunningMean[j] + b.Momentum*mean[j]
			b.RunningVar[j] = (1-b.Momentum)*b.RunningVar[j] + b.Momentum*variance[j]
		}
	}

	out := mat.NewDense(n, c, nil)
	for j := 0; j < c; j++ {
		inv := 1 / math.Sqrt(variance[j]+b.Eps)
		for i := 0; i < n; i++ {
			out.Set(i, j, b.Gamma[j]*(x.At(i, j)-mean[j])*inv+b.Beta[j])
		}
	}
	return out, nil
}

// apply maps an activation over a matrix in place and returns it.
func apply(x *mat.Dense, fn Activation) *mat.Dense {
	n, c := x.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			x.Set(i, j, fn(x.At(i, j)))
		}
	}
	return x
}
