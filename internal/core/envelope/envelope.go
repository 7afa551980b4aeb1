// Package envelope models the {success, data, message} response envelope used
// by the REST backend and turns envelopes into toasts.
package envelope

import (
	"github.com/hay-kot/toastq/internal/core/notify"
)

const (
	fallbackSuccess = "Request completed"
	fallbackFailure = "Something went wrong"
)

// Envelope is the standard API response body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// OK returns a successful envelope.
func OK[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Message: message}
}

// Fail returns a failed envelope with no data.
func Fail(message string) Envelope[any] {
	return Envelope[any]{Success: false, Message: message}
}

// Report shows the outcome of an API call as a toast: a success toast for a
// successful envelope, an error toast otherwise.
func Report[T any](c *notify.Center[string], env Envelope[T]) *notify.Handle[string] {
	spec := notify.Spec[string]{
		Title:       "Success",
		Description: env.Message,
		Severity:    notify.SeveritySuccess,
	}
	if spec.Description == "" {
		spec.Description = fallbackSuccess
	}

	if !env.Success {
		spec.Title = "Error"
		spec.Severity = notify.SeverityError
		if env.Message == "" {
			spec.Description = fallbackFailure
		}
	}

	return c.Notify(spec)
}
