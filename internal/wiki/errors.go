package wiki

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for upstream failures. Callers test with errors.Is.
var (
	ErrUnavailable = errors.New("upstream unavailable")
	ErrMalformed   = errors.New("upstream response malformed")
	ErrNotFound    = errors.New("not found upstream")
)

// FetchErrorKind classifies a failed upstream call.
type FetchErrorKind string

const (
	KindHTTPStatus FetchErrorKind = "http_status"
	KindNetwork    FetchErrorKind = "network"
	KindDecode     FetchErrorKind = "decode"
)

// FetchError is returned by Client.Fetch for every failure.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
	case KindNetwork:
		return "upstream request failed: " + e.Message
	default:
		return "upstream response is not JSON: " + e.Message
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is maps the fetch kinds onto the sentinel taxonomy.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind != KindDecode
	case ErrMalformed:
		return e.Kind == KindDecode
	case ErrNotFound:
		return e.Kind == KindHTTPStatus && e.StatusCode == http.StatusNotFound
	}
	return false
}

// Retryable reports whether a single retry is worthwhile.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindHTTPStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

// APIError is an error envelope returned by the MediaWiki API with HTTP 200.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wiki api error %s: %s", e.Code, e.Info)
}

// Is maps user/title lookup codes to ErrNotFound and everything else to ErrUnavailable.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return isNotFoundCode(e.Code)
	case ErrUnavailable:
		return !isNotFoundCode(e.Code)
	}
	return false
}

func isNotFoundCode(code string) bool {
	return strings.HasPrefix(code, "baduser") ||
		strings.HasPrefix(code, "nosuch") ||
		strings.HasPrefix(code, "missing") ||
		code == "invalidtitle"
}
