package supabase

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the connection probe did not get a 200 back.
var ErrUnavailable = errors.New("supabase endpoint unavailable")

// RejectedError is a non-success HTTP response from the REST endpoint.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}

// TransportError wraps a failure to complete the HTTP exchange at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
