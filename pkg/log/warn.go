package log

import (
	"os"

	"github.com/rs/zerolog"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// warnLogger is the zerolog logger used for library warnings. Warning types
// in pkg/errors implement zerolog.LogObjectMarshaler, so the emitted records
// carry their structured fields.
var warnLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// WarnError emits a warning through zerolog. Structured warning types are
// marshalled field by field; anything else is logged as a plain error.
func WarnError(warning error) {
	if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
		warnLogger.Warn().Object("warning", obj).Msg(warning.Error())
		return
	}
	warnLogger.Warn().Err(warning).Msg("warning")
}

// UseZerologWarnings routes pkg/errors warnings through zerolog.
func UseZerologWarnings() {
	pkgerrors.SetZerologWarnFunc(WarnError)
}
