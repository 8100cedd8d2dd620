package client

import "net/url"

// SignedRequest carries the overrides produced by a signing hook.
// Headers are merged over the request defaults and win on conflict.
// Params and Data, when set, replace the defaults entirely (signing
// often rewrites the query string or the encoded body).
type SignedRequest struct {
	Headers map[string]string
	Params  url.Values
	Data    string
}

// SignFunc computes exchange-specific authentication material for a
// request. It receives the HTTP method, the URL path component (most
// exchanges sign path+body, not the full URL), the query parameters and
// the JSON-encoded body ("" when absent). Returning nil means "send
// unsigned".
type SignFunc func(method, path string, params url.Values, body string) (*SignedRequest, error)

// Unsigned is the default signing hook: it signs nothing.
func Unsigned(method, path string, params url.Values, body string) (*SignedRequest, error) {
	return nil, nil
}
