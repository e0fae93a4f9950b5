package setting

import (
	"errors"
	"fmt"
	"strconv"
)

// Declared value types.
const (
	TypeBoolean = "boolean"
	TypeString  = "string"
)

var (
	ErrMissingKey  = errors.New("setting key is required")
	ErrInvalidType = errors.New("setting type must be 'boolean' or 'string'")
	ErrWrongType   = errors.New("setting has a different declared type")
)

// Setting is a typed key/value row. Booleans drive feature toggles; strings hold
// values such as the public URL of a globally shared PDF.
//
// Key is stable and referenced by code (handlers and templates).
type Setting struct {
	Key         string
	Value       string
	Type        string
	Description string
}

// Validate checks required fields and that Value parses as the declared Type.
// PRE: Setting struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Setting) Validate() error {
	if s.Key == "" {
		return ErrMissingKey
	}
	switch s.Type {
	case TypeBoolean:
		if _, err := strconv.ParseBool(s.Value); err != nil {
			return fmt.Errorf("setting %q: value %q is not a boolean", s.Key, s.Value)
		}
	case TypeString:
	default:
		return ErrInvalidType
	}
	return nil
}

// Bool returns the boolean value.
// INVARIANT: s is not mutated
func (s Setting) Bool() (bool, error) {
	if s.Type != TypeBoolean {
		return false, ErrWrongType
	}
	return strconv.ParseBool(s.Value)
}

// Text returns the string value.
func (s Setting) Text() (string, error) {
	if s.Type != TypeString {
		return "", ErrWrongType
	}
	return s.Value, nil
}

// WithBool returns a copy holding v, keeping the declared type.
func (s Setting) WithBool(v bool) (Setting, error) {
	if s.Type != TypeBoolean {
		return s, ErrWrongType
	}
	s.Value = strconv.FormatBool(v)
	return s, nil
}
