package scenario

import "fmt"

// ValidationError reports a structurally or numerically invalid Scenario.
// The builder re-asserts these checks before emitting any constraint, per
// the loader/builder contract: a loader may validate eagerly, but the
// builder never trusts it.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
