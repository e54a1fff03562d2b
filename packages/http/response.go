package http

import (
	"crypto/x509"
	"errors"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/expr"
)

// StatusFailed is reported when no response could be read.
const StatusFailed = 666

const selfSignedMessage = "Self signed certificate error, to allow harpi to run " +
	"without self signed certificate run with the option --insecure"

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
	// Error is set when StatusCode is StatusFailed.
	Error string
}

// FailedResponse wraps a transport error into a response carrying StatusFailed.
func FailedResponse(err error, d time.Duration) *Response {
	msg := err.Error()
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		msg = selfSignedMessage
	}
	return &Response{
		StatusCode: StatusFailed,
		Duration:   d,
		Error:      msg,
	}
}

func (r *Response) Failed() bool {
	return r.StatusCode == StatusFailed
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Decoded returns the body as an expression value: the decoded JSON document
// when the body is JSON, the raw text otherwise.
func (r *Response) Decoded() expr.Value {
	if v, ok := expr.FromJSON(r.Body); ok {
		return v
	}
	return expr.String(r.BodyString())
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsServerError reports a 5xx status or a failed response.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
