// Package service holds the back-office business rules.  Services sit
// between the HTTP handlers and the repositories: they validate input,
// apply defaults and translate storage failures into messages the staff
// can act on.
package service

// ValidationError is a user-facing input problem.  Message is French and is
// shown as-is next to the re-rendered form.  Err optionally carries the
// underlying cause, e.g. repository.ErrDuplicate.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// MsgSaveFailed is shown when a write fails for a reason the user cannot fix.
const MsgSaveFailed = "Une erreur est survenue lors de l'enregistrement. Veuillez réessayer."
