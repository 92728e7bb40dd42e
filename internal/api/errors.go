package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindTransport: the request never produced an HTTP response.
	KindTransport Kind = iota
	// KindAuth: 401 that survived the refresh-and-retry path.
	KindAuth
	// KindPermission: 403.
	KindPermission
	// KindNotFound: 404.
	KindNotFound
	// KindValidation: 400 with (optionally field-scoped) validation details.
	KindValidation
	// KindConflict: 409, or a 400 disguising a version conflict.
	KindConflict
	// KindRateLimited: 429.
	KindRateLimited
	// KindServer: any 5xx.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate limited"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a classified API failure. For KindConflict, ServerVersion and
// ClientVersion carry the two versions the server compared. For
// KindValidation, Fields maps field names to their messages.
type Error struct {
	Kind          Kind
	StatusCode    int
	Message       string
	Fields        map[string][]string
	ServerVersion int
	ClientVersion int
	err           error
}

func (e *Error) Error() string {
	if e.Kind == KindConflict && e.ServerVersion > 0 {
		return fmt.Sprintf("%s: %s (server version %d, client version %d)", e.Kind, e.Message, e.ServerVersion, e.ClientVersion)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// IsConflict reports whether err is a version-conflict API error.
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindConflict
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// errorBody is the superset of error payload shapes the backend emits.
type errorBody struct {
	Detail        string          `json:"detail"`
	Message       string          `json:"message"`
	ErrorCode     string          `json:"error"`
	ServerVersion int             `json:"server_version"`
	ClientVersion int             `json:"client_version"`
	Raw           json.RawMessage `json:"-"`
}

// decodeError turns a non-2xx response into an *Error. It consumes the body.
func decodeError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body errorBody
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Detail
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	e := &Error{StatusCode: resp.StatusCode, Message: msg}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		e.Kind = KindAuth
	case resp.StatusCode == http.StatusForbidden:
		e.Kind = KindPermission
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = KindNotFound
	case resp.StatusCode == http.StatusConflict:
		e.Kind = KindConflict
		e.ServerVersion = body.ServerVersion
		e.ClientVersion = body.ClientVersion
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		// Version conflicts sometimes arrive as a 400 with an error code.
		if body.ErrorCode == "version_conflict" {
			e.Kind = KindConflict
			e.ServerVersion = body.ServerVersion
			e.ClientVersion = body.ClientVersion
			break
		}
		e.Kind = KindValidation
		e.Fields = fieldErrors(raw)
	case resp.StatusCode >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindServer
	}

	return e
}

// fieldErrors extracts DRF-style field-scoped messages: an object whose
// values are arrays of strings. Non-matching payloads yield nil.
func fieldErrors(raw []byte) map[string][]string {
	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	// Drop reserved keys that are not fields.
	delete(fields, "detail")
	delete(fields, "message")
	delete(fields, "error")
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// transportError wraps a request that never got a response.
func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), err: err}
}
