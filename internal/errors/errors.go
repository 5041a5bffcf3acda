// Package errors defines the error taxonomy shared by the API client, the form
// controllers and the stub server.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Client side errors

// ErrTransport is wrapped around any failure that prevented a request from completing
// (connection refused, DNS failure, cancelled context...).
var ErrTransport = errors.New("request could not complete")

// ErrDecode is wrapped around a 2xx response whose body is not the expected JSON.
var ErrDecode = errors.New("failed to decode response")

// ErrInvalidBaseURL is returned when the configured API base URL cannot be parsed.
var ErrInvalidBaseURL = errors.New("invalid API base URL")

// ErrSubmissionInFlight is returned when a form is submitted while its previous
// submission has not resolved yet.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ErrDeleteNotConfirmed is returned when the user declines the delete confirmation.
var ErrDeleteNotConfirmed = errors.New("deletion not confirmed")

// ErrStaleResponse is returned by a search whose response was superseded by a newer search.
var ErrStaleResponse = errors.New("response superseded by a newer request")

// Stub server errors

// ErrShortCodeNotFound is returned when a short code doesn't exist in the database
var ErrShortCodeNotFound = errors.New("short code not found")

// ErrLinkNotFound is returned when no active link has the requested id
var ErrLinkNotFound = errors.New("link not found")

// ErrLinkExpired is returned when a short link is past its expiry date
var ErrLinkExpired = errors.New("short link has expired")

// ErrShortCodeGenerationFailed is returned when we can't generate a unique short code
var ErrShortCodeGenerationFailed = errors.New("failed to generate unique short code")

// ValidationError is a local, field-scoped rule violation detected before any
// network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors maps a request field to the messages the server reported for it,
// e.g. {"original_url": ["Enter a valid URL."]}.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// First returns the first message of the first listed field that has one.
func (f FieldErrors) First(fields ...string) (string, bool) {
	for _, name := range fields {
		if msgs := f[name]; len(msgs) > 0 {
			return msgs[0], true
		}
	}
	return "", false
}

// Names returns the field names in lexical order.
func (f FieldErrors) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequestError is a non-2xx response from the API. Payload holds the raw body;
// Fields and Detail are what could be extracted from it.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Payload json.RawMessage
	Fields  FieldErrors
	Detail  string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// NewRequestError builds a RequestError from a response body. The body is parsed
// leniently: field values may be a string or a list of strings, and "detail",
// "error" or "message" keys feed Detail.
func NewRequestError(method, path string, status int, body []byte) *RequestError {
	e := &RequestError{
		Method: method,
		Path:   path,
		Status: status,
		Fields: FieldErrors{},
	}
	if len(body) > 0 && json.Valid(body) {
		e.Payload = json.RawMessage(body)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}
	for key, value := range raw {
		switch key {
		case "detail", "error", "message":
			var s string
			if json.Unmarshal(value, &s) == nil && e.Detail == "" {
				e.Detail = s
			}
			continue
		}
		var list []string
		if json.Unmarshal(value, &list) == nil {
			e.Fields[key] = append(e.Fields[key], list...)
			continue
		}
		var s string
		if json.Unmarshal(value, &s) == nil {
			e.Fields.Add(key, s)
		}
	}
	return e
}

// FirstMessage returns the first server message, looking at the preferred fields
// first, then the remaining fields in name order, then Detail.
func (e *RequestError) FirstMessage(preferred ...string) (string, bool) {
	if msg, ok := e.Fields.First(preferred...); ok {
		return msg, true
	}
	if msg, ok := e.Fields.First(e.Fields.Names()...); ok {
		return msg, true
	}
	if e.Detail != "" {
		return e.Detail, true
	}
	return "", false
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == 404
}
