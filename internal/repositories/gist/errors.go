package gist

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v63/github"
)

// Error implements repositories.StoreError for the gist-backed document store.
type Error struct {
	op           string
	err          error
	notFound     bool
	unauthorized bool
	rateLimited  bool
	malformed    bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the gist or its data file is absent.
func (e *Error) IsNotFound() bool { return e != nil && e.notFound }

// IsUnauthorized reports whether the store rejected the credential.
func (e *Error) IsUnauthorized() bool { return e != nil && e.unauthorized }

// IsRateLimited reports whether the store throttled the request.
func (e *Error) IsRateLimited() bool { return e != nil && e.rateLimited }

// IsMalformed reports whether the stored content did not parse into the
// expected document shape.
func (e *Error) IsMalformed() bool { return e != nil && e.malformed }

func notFoundError(op string, err error) *Error {
	return &Error{op: op, err: err, notFound: true}
}

func malformedError(op string, err error) *Error {
	return &Error{op: op, err: err, malformed: true}
}

// wrapAPIError maps GitHub API failures onto store error categories using the
// response status. Context cancellations pass through untouched.
func wrapAPIError(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	e := &Error{op: op, err: err}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		e.rateLimited = true
		return e
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	} else {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
	}

	switch status {
	case http.StatusNotFound:
		e.notFound = true
	case http.StatusUnauthorized, http.StatusForbidden:
		e.unauthorized = true
	case http.StatusTooManyRequests:
		e.rateLimited = true
	}
	return e
}
