package errors

import "fmt"

// ValidationError reports a fact rejected at append time.
// Position is the zero-based index of the offending fact within its batch.
type ValidationError struct {
	Position  int
	Subject   string
	Predicate string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fact %d (%s %s): %s", e.Position, e.Subject, e.Predicate, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ParseError reports a malformed definition source.
// Line is 1-based; zero when the failure is not tied to a line.
type ParseError struct {
	Source string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IsValidationError checks if an error is or wraps a ValidationError
func IsValidationError(err error) bool {
	return err != nil && Is(err, ErrValidation)
}

// IsParseError checks if an error is or wraps a ParseError
func IsParseError(err error) bool {
	return err != nil && Is(err, ErrParse)
}
