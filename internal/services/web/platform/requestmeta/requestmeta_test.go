package requestmeta

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHasSameOriginProof(t *testing.T) {
	t.Parallel()

	newPost := func(target string, headers map[string]string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req
	}

	tests := []struct {
		name   string
		req    *http.Request
		policy SchemePolicy
		want   bool
	}{
		{
			name: "matching origin",
			req:  newPost("http://wedding.test/admin/guests", map[string]string{"Origin": "http://wedding.test"}),
			want: true,
		},
		{
			name: "referer fallback",
			req:  newPost("http://wedding.test/admin/guests", map[string]string{"Referer": "http://wedding.test/admin/dashboard"}),
			want: true,
		},
		{
			name: "foreign origin",
			req:  newPost("http://wedding.test/admin/guests", map[string]string{"Origin": "http://evil.test"}),
			want: false,
		},
		{
			name: "missing proof",
			req:  newPost("http://wedding.test/admin/guests", nil),
			want: false,
		},
		{
			name: "untrusted forwarded proto is ignored",
			req: newPost("http://wedding.test/admin/guests", map[string]string{
				"Origin":            "https://wedding.test",
				"X-Forwarded-Proto": "https",
			}),
			want: false,
		},
		{
			name: "trusted forwarded proto",
			req: newPost("http://wedding.test/admin/guests", map[string]string{
				"Origin":            "https://wedding.test",
				"X-Forwarded-Proto": "https",
			}),
			policy: SchemePolicy{TrustForwardedProto: true},
			want:   true,
		},
		{
			name: "explicit port mismatch",
			req:  newPost("http://wedding.test:8080/admin/guests", map[string]string{"Origin": "http://wedding.test"}),
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasSameOriginProof(tc.req, tc.policy); got != tc.want {
				t.Fatalf("HasSameOriginProof() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsHTTPS(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://wedding.test/", nil)
	if IsHTTPS(req, SchemePolicy{}) {
		t.Fatal("plain request reported as https")
	}
	req.TLS = &tls.ConnectionState{}
	if !IsHTTPS(req, SchemePolicy{}) {
		t.Fatal("tls request not reported as https")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := ClientIP(req, SchemePolicy{}); got != "10.0.0.1" {
		t.Fatalf("untrusted ClientIP() = %q", got)
	}
	if got := ClientIP(req, SchemePolicy{TrustForwardedProto: true}); got != "203.0.113.9" {
		t.Fatalf("trusted ClientIP() = %q", got)
	}
}
