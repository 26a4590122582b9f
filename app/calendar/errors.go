package calendar

import (
	"errors"
	"fmt"
)

// ErrServiceRejected marks a request the calendar service answered with a
// non-success status.
var ErrServiceRejected = errors.New("calendar service rejected the request")

type RejectionError struct {
	Feed       FeedURL
	StatusCode int
	Status     string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("calendar %s: HTTP error: %s", e.Feed, e.Status)
}

func (e *RejectionError) Unwrap() error {
	return ErrServiceRejected
}

type TransportError struct {
	Feed FeedURL
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calendar %s: failed to fetch feed: %v", e.Feed, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ParseError struct {
	Feed FeedURL
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Feed, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
