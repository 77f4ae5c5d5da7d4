package weather

import (
	"errors"
	"fmt"
)

// Fetch error kinds. Match with errors.Is.
var (
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrInvalidCredential  = errors.New("invalid api key")
	ErrCityNotFound       = errors.New("city not found")
	ErrProvider           = errors.New("provider error")
	ErrUnexpected         = errors.New("unexpected error")
)

// FetchError is the classified failure of a single city fetch.
type FetchError struct {
	Kind       error
	City       string
	StatusCode int // set for ErrProvider and for status-derived kinds
	Detail     string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrCityNotFound):
		return fmt.Sprintf("city %q not found", e.City)
	case errors.Is(e.Kind, ErrProvider):
		return fmt.Sprintf("provider error for %q: status %d", e.City, e.StatusCode)
	}
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFetchError builds a FetchError of the given kind.
func NewFetchError(kind error, city string, err error) *FetchError {
	return &FetchError{Kind: kind, City: city, Err: err}
}

// Kind returns the fetch error kind carried by err, or ErrUnexpected when err
// is not a classified fetch error. It returns nil for a nil err.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range []error{ErrNetworkUnavailable, ErrInvalidCredential, ErrCityNotFound, ErrProvider, ErrUnexpected} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrUnexpected
}
