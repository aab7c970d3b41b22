package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/mtereshin/medtrack/internal/common"
)

// ErrorKind classifies a server error response.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is a decoded error response from the backend. Message holds the
// first populated entry from the server's error shape, probed in a fixed
// priority order; Fields carries any per-field validation messages.
type APIError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap maps well-known statuses onto the shared sentinels so callers can
// use errors.Is without depending on this package's types.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	}
	return nil
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// messagePriority is the ordered list of top-level keys probed for a
// human-readable error message.
var messagePriority = []string{"detail", "error", "message"}

// decodeError builds an APIError from a non-2xx response body. Bodies that
// are not JSON objects produce a status-only error.
func decodeError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Kind: kindForStatus(status)}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		return e
	}

	for _, key := range messagePriority {
		if msg := asString(data[key]); msg != "" {
			e.Message = msg
			return e
		}
	}

	if msg := asString(data["non_field_errors"]); msg != "" {
		e.Message = msg
		e.Kind = KindValidation
		return e
	}

	// Remaining keys are treated as field errors; the first one provides
	// the message.
	e.Fields = make(map[string][]string)
	for key, val := range data {
		if msgs := asStrings(val); len(msgs) > 0 {
			e.Fields[key] = msgs
		}
	}
	if len(e.Fields) > 0 {
		e.Kind = KindValidation
		for _, key := range sortedKeys(e.Fields) {
			e.Message = fmt.Sprintf("%s: %s", key, e.Fields[key][0])
			break
		}
	} else {
		e.Fields = nil
	}
	return e
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// asString extracts a message from a string or the first element of a
// string array, the two shapes the backend uses.
func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		if len(value) > 0 {
			if s, ok := value[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func asStrings(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
