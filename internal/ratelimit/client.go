package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the client address used when none can be determined.
const Unknown = "unknown"

// NewKey builds the limiter key for an endpoint and client.
func NewKey(endpoint, client string) string {
	return endpoint + "+" + client
}

// ClientAddress identifies the caller of r. The proxy header is consulted
// only when trustProxy is set; its first comma-separated value wins. Otherwise
// the transport peer host is used.
func ClientAddress(r *http.Request, trustProxy bool, header string) string {
	if trustProxy && header != "" {
		if v := r.Header.Get(header); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return Unknown
}
