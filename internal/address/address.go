package address

import (
	"context"
	"errors"
	"fmt"
)

// PostalCodeLength is the number of digits in a CEP.
const PostalCodeLength = 8

var (
	// ErrNotFound is returned when the lookup service does not know the postal code.
	ErrNotFound = errors.New("postal code not found")

	// ErrInvalidPostalCode is returned without any network call when the
	// postal code is not exactly eight digits.
	ErrInvalidPostalCode = errors.New("postal code must have 8 digits")
)

// Lookuper resolves a postal code into address fragments.
// Implementations return ErrNotFound for unknown codes and *LookupError for
// transport failures.
type Lookuper interface {
	Lookup(ctx context.Context, postalCode string) (*Address, error)
}

// Address holds the fragments returned for a postal code.
type Address struct {
	PostalCode string
	Street     string
	Complement string
	District   string
	City       string
	State      string
}

// LookupError wraps a transport failure: timeout, non-2xx status or a
// malformed payload.
type LookupError struct {
	PostalCode string
	Status     int
	Err        error
}

func (e *LookupError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("postal code lookup %s: status %d: %v", e.PostalCode, e.Status, e.Err)
	}
	return fmt.Sprintf("postal code lookup %s: %v", e.PostalCode, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsLookupError reports whether err is a transport failure.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// IsPostalCode reports whether s is exactly eight ASCII digits.
func IsPostalCode(s string) bool {
	if len(s) != PostalCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
