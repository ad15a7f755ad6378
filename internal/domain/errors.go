package domain

import "errors"

// ErrorKind classifies an upstream failure for the response envelope.
type ErrorKind string

const (
	// KindTransport covers connection failures and non-2xx upstream statuses.
	KindTransport ErrorKind = "transport"
	// KindDecode covers upstream bodies that are not valid JSON or RSS.
	KindDecode ErrorKind = "decode"
	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// UpstreamResponse is the part of an upstream reply kept for error reporting.
type UpstreamResponse struct {
	Status int
	Body   []byte
}

// UpstreamError is a classified failure talking to a CWA endpoint.
type UpstreamError struct {
	Kind     ErrorKind
	Upstream string // "cyclone" or "warnings"
	Err      error

	// Response is nil when no HTTP response was received.
	Response *UpstreamResponse
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or KindInternal when err is not
// an UpstreamError.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindInternal
}

// ErrorResponse is the JSON envelope returned with every 500. The cwa_* fields
// are set only when an upstream response existed.
type ErrorResponse struct {
	Error             string  `json:"error"`
	Details           string  `json:"details"`
	CWAResponseStatus *int    `json:"cwa_response_status,omitempty"`
	CWAResponseText   *string `json:"cwa_response_text,omitempty"`
}
