package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// headers are consulted in order before falling back to RemoteAddr.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client address of r. The first valid address from the
// proxy headers wins; for X-Forwarded-For that is the leftmost entry.
// Without a usable header the host part of RemoteAddr is returned.
func GetIP(r *http.Request) string {
	for _, h := range headers {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}
		if h == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}
		if ip, ok := parse(value); ok {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := parse(host); ok {
		return ip
	}
	return r.RemoteAddr
}

func parse(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || addr.IsUnspecified() {
		return "", false
	}
	return addr.Unmap().String(), true
}
