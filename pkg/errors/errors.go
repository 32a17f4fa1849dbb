// Package errors provides the error handling and warning system used across
// tabgo. It is inspired by scikit-learn's warning/exception machinery and
// carries structured error information with stack traces.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("tabgo-warning: %v\n", w)
	}
	// zerolog sink, installed lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the library-wide warning handler. Use this to
// silence or redirect non-fatal advisories such as BinCountWarning.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop all warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning through the installed sink.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// BinCountWarning is emitted when a feature column has fewer distinct values
// than the requested number of bins, and the effective bin count is lowered
// to the distinct-value count. This is the single sanctioned silent
// adjustment in the binning pipeline; everything else fails fast.
type BinCountWarning struct {
	Feature   int
	Requested int
	Distinct  int
}

func (w *BinCountWarning) Error() string {
	return fmt.Sprintf(
		"feature %d: the number of bins is set to the number of distinct values (%d), because the requested n_bins=%d is greater than this number",
		w.Feature, w.Distinct, w.Requested)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *BinCountWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("feature", w.Feature).
		Int("requested_bins", w.Requested).
		Int("distinct_values", w.Distinct).
		Str("type", "BinCountWarning")
}

// NewBinCountWarning creates a new BinCountWarning.
func NewBinCountWarning(feature, requested, distinct int) *BinCountWarning {
	return &BinCountWarning{Feature: feature, Requested: requested, Distinct: distinct}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when Transform is called on an estimator before
// Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("tabgo: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the dimensions of an input do not match
// the expectation, e.g. mismatched row counts between paired matrices.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("tabgo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a parameter fails validation, e.g.
// n_bins below two.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tabgo: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when the content of an argument is invalid, e.g. a
// constant column that cannot be binned or an index outside its edge range.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tabgo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ConfigConflictError is returned when a caller supplies an option that the
// library derives automatically, e.g. MaxLeafNodes for decision-tree
// binning.
type ConfigConflictError struct {
	Op     string
	Option string
	Reason string
}

func (e *ConfigConflictError) Error() string {
	return fmt.Sprintf("tabgo: %s: option %s must not be set: %s", e.Op, e.Option, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ConfigConflictError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("option", e.Option).
		Str("reason", e.Reason).
		Str("type", "ConfigConflictError")
}

// NewConfigConflictError creates a new ConfigConflictError with a stack
// trace.
func NewConfigConflictError(op, option, reason string) error {
	err := &ConfigConflictError{Op: op, Option: option, Reason: reason}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty matrix is passed in.
	ErrEmptyData = New("empty data")
)
