package api

import "fmt"

// ValidationError is returned for input rejected before any network call.
// It is surfaced inline next to the offending form field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// RequestError is returned when the backend answers with a non-2xx status.
// Transport failures (connection refused, timeout) are returned as the
// underlying wrapped error instead, so callers can distinguish "the server
// said no" from "the server is unreachable".
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Body)
}
