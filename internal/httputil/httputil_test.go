package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		status   int
		wantType string
	}{
		{http.StatusBadRequest, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1"},
		{http.StatusBadGateway, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.3"},
		{http.StatusServiceUnavailable, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.4"},
		{http.StatusTeapot, "about:blank"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tt.status, "something broke")

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q", ct)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["type"] != tt.wantType {
				t.Errorf("type = %v, want %v", body["type"], tt.wantType)
			}
			if body["detail"] != "something broke" {
				t.Errorf("detail = %v", body["detail"])
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"prompt":"hi"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"prompt":`, wantErr: true},
		{name: "too large", body: `{"prompt":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(tt.body))
			var dest struct {
				Prompt string `json:"prompt"`
			}
			err := ParseJSON(httptest.NewRecorder(), req, &dest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContextValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUserEmail(req) != "" || GetRequestID(req) != "" {
		t.Fatal("expected empty values on a bare request")
	}

	req = WithRequestID(WithUserEmail(req, "tech@oriol.org"), "req-1")
	if got := GetUserEmail(req); got != "tech@oriol.org" {
		t.Errorf("email = %q", got)
	}
	if got := GetRequestID(req); got != "req-1" {
		t.Errorf("request id = %q", got)
	}
}
