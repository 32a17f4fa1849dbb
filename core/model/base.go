// Package model holds the estimator base shared by the stateful
// preprocessing types.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the state before Fit has been called.
	NotFitted EstimatorState = iota
	// Fitted is the state after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by every stateful estimator. Fitting is a
// one-way transition; the fitted artifacts (bin edges) are treated as
// read-only afterwards.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
