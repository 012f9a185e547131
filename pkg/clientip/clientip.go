// Package clientip extracts the caller address written to request logs.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// FromRequest returns the caller's IP from r.RemoteAddr, with the port
// stripped and IPv4-mapped IPv6 addresses unmapped. Forwarding headers are
// ignored; no trusted proxy sits in front of the API.
func FromRequest(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
