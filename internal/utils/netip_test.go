package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.7", " ", "not-an-ip", "fd00::/8"})

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{name: "inside cidr", ip: "10.1.2.3", want: true},
		{name: "exact ip", ip: "192.168.1.7", want: true},
		{name: "neighbour of exact ip", ip: "192.168.1.8", want: false},
		{name: "mapped v4", ip: "::ffff:10.0.0.1", want: true},
		{name: "inside v6 prefix", ip: "fd12::1", want: true},
		{name: "outside", ip: "8.8.8.8", want: false},
		{name: "garbage", ip: "nope", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Allow(tt.ip); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("empty list should give an empty matcher")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "1.2.3.4:5678", want: "1.2.3.4"},
		{name: "headers ignored without trust", remote: "1.2.3.4:5678", headers: map[string]string{"X-Forwarded-For": "9.9.9.9"}, want: "1.2.3.4"},
		{name: "cloudflare header first", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{"CF-Connecting-IP": "5.5.5.5", "X-Forwarded-For": "9.9.9.9"}, want: "5.5.5.5"},
		{name: "left-most forwarded hop", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}, want: "9.9.9.9"},
		{name: "real ip", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{"X-Real-IP": "7.7.7.7"}, want: "7.7.7.7"},
		{name: "v6 remote", remote: "[::1]:80", want: "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
