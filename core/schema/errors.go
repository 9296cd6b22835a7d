package schema

import (
	"errors"
	"fmt"
)

// ErrNotArrayOfObject indicates a table field is not an array of exactly one object type.
var ErrNotArrayOfObject = errors.New("not array-of-object")

// ErrNoCellsField indicates the row type has no array field of one string or object item type.
var ErrNoCellsField = errors.New("no cells field")

// ConfigError reports a schema that cannot back a table editor.
// It is fatal to editor initialization and is not retried.
type ConfigError struct {
	Field string // table field being resolved
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("table config error for field %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{
		Field: field,
		Err:   err,
	}
}
