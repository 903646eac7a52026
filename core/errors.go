package core

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// Message returns the first user-facing field message, falling back to Error().
func (err ValidationError) Message() string {
	for _, fErr := range err.Fields {
		if fErr.Error != "" {
			return fErr.Error
		}
	}
	return err.Error()
}
