// Package errors classifies daemon communication failures into
// user-facing hints.
package errors

import (
	"strings"
)

type ErrorKind string

const (
	ErrorKindAuth     ErrorKind = "auth"
	ErrorKindOffline  ErrorKind = "offline"
	ErrorKindHTTP     ErrorKind = "http"
	ErrorKindNotFound ErrorKind = "not-found"
	ErrorKindOther    ErrorKind = "other"
)

type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Hint    string // User-friendly suggestion
	Raw     error
}

func (e ClassifiedError) Error() string {
	return e.Message
}

func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid_token"):
		return ClassifiedError{
			Kind:    ErrorKindAuth,
			Message: err.Error(),
			Hint:    "Check your hub token or run 'tunedeck login'",
			Raw:     err,
		}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") || strings.Contains(msg, "no such host"):
		return ClassifiedError{
			Kind:    ErrorKindOffline,
			Message: err.Error(),
			Hint:    "Is the TuneDeck daemon running? Check with 'tunedeck status' or start it with 'tunedeck'",
			Raw:     err,
		}
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "The requested resource was not found. Check the tool or run name.",
			Raw:     err,
		}
	case strings.Contains(msg, "http"):
		return ClassifiedError{
			Kind:    ErrorKindHTTP,
			Message: err.Error(),
			Hint:    "An HTTP error occurred during communication with the daemon.",
			Raw:     err,
		}
	default:
		return ClassifiedError{
			Kind:    ErrorKindOther,
			Message: err.Error(),
			Raw:     err,
		}
	}
}
