package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Coordinate validation failures.
var (
	ErrInvalidFormat       = errors.New("coordinates must be finite numbers")
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// ErrCityNotFound is returned for slugs missing from the city directory.
var ErrCityNotFound = errors.New("city not found")

// ValidationError describes a rejected caller-supplied value.
type ValidationError struct {
	Field string
	Value string
	Err   error // one of the sentinels above, or a contact-form reason
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UpstreamError is a failed call to the crime-data service. Status is zero
// when the request never produced a response.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s returned status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Endpoint, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because a deadline elapsed.
func (e *UpstreamError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ErrorKind classifies a failed query for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindNotFound
	KindBadGateway
	KindGatewayTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindBadGateway:
		return "bad_gateway"
	case KindGatewayTimeout:
		return "gateway_timeout"
	default:
		return "internal_error"
	}
}

// QueryError is what use cases return to handlers. Message is safe to show
// to end users; Err carries the detail.
type QueryError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Detail returns the underlying error text, or "" when there is none.
func (e *QueryError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// BadRequest wraps err as a KindBadRequest failure.
func BadRequest(err error) *QueryError {
	return &QueryError{Kind: KindBadRequest, Message: err.Error(), Err: err}
}

// ClassifyUpstream maps an upstream failure to a query error.
func ClassifyUpstream(err error) *QueryError {
	var ue *UpstreamError
	switch {
	case errors.As(err, &ue) && ue.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return &QueryError{Kind: KindGatewayTimeout, Message: "crime data service timed out", Err: err}
	case errors.As(err, &ue):
		return &QueryError{Kind: KindBadGateway, Message: "crime data service unavailable", Err: err}
	default:
		return &QueryError{Kind: KindInternal, Message: "internal server error", Err: err}
	}
}

// KindOf extracts the error kind, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindInternal
}
