package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"phonestore/internal/model"
)

// Error is a failed call to the storefront backend. Status is zero when no
// response was received.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "backend unreachable: " + e.Message
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the failed call.
func (e *Error) StatusCode() int {
	return e.Status
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is(err, model.ErrRemoteCallFailure) match backend failures.
func (e *Error) Is(target error) bool {
	return target == model.ErrRemoteCallFailure
}

var _ model.RemoteFailure = (*Error)(nil)

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// envelope is the {success, message, data} wrapper used by most endpoints.
type envelope struct {
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// rejection is a 2xx envelope carrying success=false.
type rejection struct {
	message string
}

func (r *rejection) Error() string {
	return "backend reported failure: " + r.message
}

// decodeEnvelope decodes raw into out, unwrapping {success, message, data}
// when present. Some endpoints answer with the bare payload. An envelope with
// success=false is a *rejection whether or not it carries data. out may be
// nil when only the outcome matters.
func decodeEnvelope(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return &rejection{message: messageText(env.Message)}
		}
		if len(env.Data) > 0 {
			if out == nil {
				return nil
			}
			return json.Unmarshal(env.Data, out)
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// newError builds an Error from a failed response, keeping the backend's
// message when one can be found.
func newError(status int, raw []byte) *Error {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = messageText(body.Message)
		if msg == "" {
			msg = body.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}

// messageText flattens a message that is either a string or a list of strings.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}
