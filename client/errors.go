package client

import (
	"fmt"
	"net/http"
)

// InvalidResponseError reports an HTTP error status, or a successful
// response whose JSON body carries a truthy value under the configured
// error key. The raw status, headers and body are kept for diagnostics.
type InvalidResponseError struct {
	Status int
	Header http.Header
	Body   []byte
	URL    string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s (HTTP %d): %s", e.URL, e.Status, truncate(e.Body, 256))
}

// DecodeError reports a response body that was expected to be JSON but
// failed to parse.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response body: %v: %s", e.Err, truncate(e.Body, 128))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
