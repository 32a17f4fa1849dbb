package preprocessing

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
	"github.com/YuminosukeSato/tabgo/pkg/log"
)

func trainingData(n, f int) *mat.Dense {
	X := mat.NewDense(n, f, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < f; j++ {
			X.Set(i, j, float64((i*7+j*3)%n))
		}
	}
	return X
}

func TestDiscretizerFitTransform(t *testing.T) {
	X := trainingData(60, 2)

	d := NewDiscretizer(4, QuantileStrategy)
	indices, err := d.FitTransform(X, nil)
	require.NoError(t, err)

	r, c := indices.Dims()
	assert.Equal(t, 60, r)
	assert.Equal(t, 2, c)

	edges := d.Edges()
	require.Len(t, edges, 2)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			idx := indices.At(i, j)
			assert.GreaterOrEqual(t, idx, 0.0)
			assert.Less(t, int(idx), edges[j].NumBins())
		}
	}
}

func TestDiscretizerDecisionTreeStrategy(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 10, 11, 12, 13})
	y := []float64{0, 0, 0, 0, 5, 5, 5, 5}

	d := NewDiscretizer(2, DecisionTreeStrategy)
	require.NoError(t, d.Fit(X, y))

	assert.Equal(t, []float64{0, 6.5, 13}, d.Edges()[0].Values())
}

func TestDiscretizerNotFitted(t *testing.T) {
	d := NewDiscretizer(4, QuantileStrategy)
	_, err := d.Transform(trainingData(10, 1))
	require.Error(t, err)
	var nf *pkgerrors.NotFittedError
	assert.True(t, pkgerrors.As(err, &nf))
}

func TestPiecewiseLinearEncoderTransform(t *testing.T) {
	X := trainingData(60, 3)

	enc := NewPiecewiseLinearEncoder(4, QuantileStrategy)
	out, err := enc.FitTransform(X, nil)
	require.NoError(t, err)

	d := enc.DEncoding()
	require.Greater(t, d, 0)
	r, c := out.Dims()
	assert.Equal(t, 60, r)
	assert.Equal(t, 3*d, c)

	// Training data falls inside its own edges, so every component sits in
	// [0, 1] and each feature block is non-increasing along the encoding
	// axis.
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := out.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			if j%d > 0 {
				assert.LessOrEqual(t, v, out.At(i, j-1))
			}
		}
	}
}

func TestPiecewiseLinearEncoderTransformOrdinal(t *testing.T) {
	X := trainingData(40, 2)

	enc := NewPiecewiseLinearEncoder(3, QuantileStrategy)
	require.NoError(t, enc.Fit(X, nil))

	out, err := enc.TransformOrdinal(X)
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 40, r)
	assert.Equal(t, 2*enc.DEncoding(), c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := out.At(i, j)
			assert.True(t, v == 0 || v == 1, "entry (%d,%d) = %v is not binary", i, j, v)
		}
	}
}

// captureDebugLog routes the default slog logger into buf at debug level for
// one test.
func captureDebugLog(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	prev := slog.Default()
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(log.WrapByErrFmtHandler(handler)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestDiscretizerFitLogsEffectiveBins(t *testing.T) {
	var buf bytes.Buffer
	captureDebugLog(t, &buf)

	d := NewDiscretizer(4, QuantileStrategy)
	require.NoError(t, d.Fit(trainingData(60, 2), nil))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record), "fit record is not JSON: %s", buf.String())
	assert.Equal(t, "preprocessing", record[log.ComponentKey])
	assert.EqualValues(t, 4, record[log.BinsRequestedKey])
	assert.Contains(t, record, log.BinsEffectiveKey)
}

func TestPiecewiseLinearEncoderFitLogsEncodingWidth(t *testing.T) {
	var buf bytes.Buffer
	captureDebugLog(t, &buf)

	enc := NewPiecewiseLinearEncoder(3, QuantileStrategy)
	require.NoError(t, enc.Fit(trainingData(40, 2), nil))

	dec := json.NewDecoder(&buf)
	found := false
	for dec.More() {
		var record map[string]any
		require.NoError(t, dec.Decode(&record))
		if w, ok := record[log.EncodingWidthKey]; ok {
			assert.EqualValues(t, enc.DEncoding(), w)
			found = true
		}
	}
	assert.True(t, found, "no fit record carries the encoding width")
}

// TestPiecewiseLinearEncoderNarrowColumnAboveMax pins the shared-width
// contract: the open-ended upper bound applies only at index DEncoding()-1,
// so a column with fewer bins than the widest one rejects inference values
// above its training maximum.
func TestPiecewiseLinearEncoderNarrowColumnAboveMax(t *testing.T) {
	pkgerrors.SetWarningHandler(func(w error) {})
	defer pkgerrors.SetWarningHandler(func(w error) {})

	// Column 0 has 2 distinct values (2 bins after adjustment), column 1
	// has 3, so DEncoding is 3.
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 2,
		1, 0,
		0, 1,
		1, 2,
	})
	enc := NewPiecewiseLinearEncoder(3, QuantileStrategy)
	require.NoError(t, enc.Fit(X, nil))
	require.Equal(t, 3, enc.DEncoding())

	// Above the training max in the wide column: accepted.
	_, err := enc.Transform(mat.NewDense(1, 2, []float64{0.5, 9}))
	require.NoError(t, err)

	// Above the training max in the narrow column: its last bin index is 1,
	// below DEncoding()-1, so the fraction above 1 is rejected.
	_, err = enc.Transform(mat.NewDense(1, 2, []float64{9, 0.5}))
	require.Error(t, err)
	var ve *pkgerrors.ValueError
	assert.True(t, pkgerrors.As(err, &ve))
}

func TestPiecewiseLinearEncoderNotFitted(t *testing.T) {
	enc := NewPiecewiseLinearEncoder(4, QuantileStrategy)

	_, err := enc.Transform(trainingData(10, 1))
	require.Error(t, err)

	_, err = enc.TransformOrdinal(trainingData(10, 1))
	require.Error(t, err)
}
