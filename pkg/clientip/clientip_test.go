package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dispatch/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, "10.0.0.1:1234", "10.0.0.1"},
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, "10.0.0.1:1", "1.1.1.1"},
		{"leftmost forwarded", map[string]string{"X-Forwarded-For": "3.3.3.3, 10.0.0.2"}, "10.0.0.1:1", "3.3.3.3"},
		{"real ip", map[string]string{"X-Real-IP": "4.4.4.4"}, "10.0.0.1:1", "4.4.4.4"},
		{"invalid header skipped", map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "5.5.5.5"}, "10.0.0.1:1", "5.5.5.5"},
		{"unspecified rejected", map[string]string{"X-Real-IP": "0.0.0.0"}, "10.0.0.1:1", "10.0.0.1"},
		{"ipv6", map[string]string{"X-Real-IP": "2001:db8::1"}, "10.0.0.1:1", "2001:db8::1"},
		{"ipv4 mapped", nil, "[::ffff:192.0.2.1]:80", "192.0.2.1"},
		{"unparsable remote addr", nil, "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}
