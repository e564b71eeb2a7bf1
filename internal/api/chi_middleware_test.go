// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitCustom_RejectsWithEnvelope(t *testing.T) {
	m := NewChiMiddleware(nil)
	h := m.RateLimitCustom(RateLimitConfig{Requests: 2, Window: time.Minute})(okHandler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		checkStatus(t, rec.Code, http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	checkStatus(t, rec.Code, http.StatusTooManyRequests)

	var resp models.APIResponse
	checkNoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if resp.Error == nil || resp.Error.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	// Another client has its own budget.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.11:4000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	checkStatus(t, rec.Code, http.StatusOK)
}

func TestRateLimit_Disabled(t *testing.T) {
	m := NewChiMiddlewareFromConfig(&config.SecurityConfig{RateLimitDisabled: true})
	h := m.RateLimitAdmin()(okHandler)

	for i := 0; i < RateLimitAdmin.Requests*3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		checkStatus(t, rec.Code, http.StatusOK)
	}
}

func TestNewChiMiddlewareFromConfig(t *testing.T) {
	m := NewChiMiddlewareFromConfig(&config.SecurityConfig{
		CORSOrigins:     []string{"https://shelf.example"},
		RateLimitReqs:   7,
		RateLimitWindow: 30 * time.Second,
	})
	if m.config.RateLimitRequests != 7 || m.config.RateLimitWindow != 30*time.Second {
		t.Errorf("rate limit not applied: %+v", m.config)
	}

	// Zero values keep the defaults.
	m = NewChiMiddlewareFromConfig(&config.SecurityConfig{})
	def := DefaultChiMiddlewareConfig()
	if m.config.RateLimitRequests != def.RateLimitRequests || m.config.RateLimitWindow != def.RateLimitWindow {
		t.Errorf("defaults lost: %+v", m.config)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	m := NewChiMiddlewareFromConfig(&config.SecurityConfig{CORSOrigins: []string{"https://shelf.example"}})
	h := m.CORS()(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/platform/stats", nil)
	req.Header.Set("Origin", "https://shelf.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	checkStringEqual(t, "allow origin", rec.Header().Get("Access-Control-Allow-Origin"), "https://shelf.example")

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/platform/stats", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	checkStringEqual(t, "allow origin", rec.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestRequestIDWithLogging(t *testing.T) {
	var seen string
	h := RequestIDWithLogging()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	checkStringEqual(t, "echoed id", rec.Header().Get(chimiddleware.RequestIDHeader), "req-123")
	checkStringEqual(t, "context id", seen, "req-123")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(chimiddleware.RequestIDHeader)
	if generated == "" {
		t.Fatal("expected a generated request id")
	}
	checkStringEqual(t, "context id", seen, generated)
}

func TestAPISecurityHeaders(t *testing.T) {
	h := APISecurityHeaders()(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	checkStringEqual(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), "nosniff")
	checkStringEqual(t, "frame options", rec.Header().Get("X-Frame-Options"), "DENY")
	checkStringEqual(t, "hsts over http", rec.Header().Get("Strict-Transport-Security"), "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind a TLS proxy")
	}
}
