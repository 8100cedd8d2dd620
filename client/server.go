package client

import "fmt"

// Server describes an exchange REST API endpoint: protocol, host and an
// optional version path segment. The base URL is derived once at
// construction and never changes. Hosts are not validated; a malformed
// host is the caller's problem.
type Server struct {
	Protocol string
	Host     string
	Version  string
	URL      string
}

// NewServer builds a Server whose URL is "{protocol}://{host}" or
// "{protocol}://{host}/{version}" when version is non-empty.
func NewServer(protocol, host, version string) Server {
	url := fmt.Sprintf("%s://%s", protocol, host)
	if version != "" {
		url = fmt.Sprintf("%s/%s", url, version)
	}
	return Server{
		Protocol: protocol,
		Host:     host,
		Version:  version,
		URL:      url,
	}
}
