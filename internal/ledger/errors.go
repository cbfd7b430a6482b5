package ledger

import "fmt"

// ValidationError reports input the caller can correct: a bad split,
// a non-member payer, a non-positive amount. It is always surfaced to
// the user-facing layer as a correctable failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// DataIntegrityError reports a ledger that violates an engine invariant:
// conservation broken, or records referencing unknown members. It means
// corruption upstream; the engine refuses to compute over such data and
// never repairs it.
type DataIntegrityError struct {
	msg string
}

func (e *DataIntegrityError) Error() string { return e.msg }

// Integrityf builds a DataIntegrityError from a format string.
func Integrityf(format string, args ...any) *DataIntegrityError {
	return &DataIntegrityError{msg: fmt.Sprintf(format, args...)}
}
