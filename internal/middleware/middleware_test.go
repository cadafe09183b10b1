package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("client id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/method", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("missing id is generated", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/method", nil))

		assert.Regexp(t, `^[0-9a-f]{32}$`, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("unsafe id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/method", nil)
		req.Header.Set(RequestIDHeader, "bad id\nInjected: 1")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Regexp(t, `^[0-9a-f]{32}$`, seen)
	})

	t.Run("oversized id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/method", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLength+1))

		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Len(t, seen, 32)
	})
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestIDMiddleware(LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})))

	req := httptest.NewRequest(http.MethodPost, "/method", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"path":"/method"`)
	assert.Contains(t, out, `"status":422`)
	assert.Contains(t, out, `"request_id":"req-1"`)
}

func TestBasicAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled without user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		BasicAuthMiddleware("", "")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("prom", "nope")
		rec := httptest.NewRecorder()

		BasicAuthMiddleware("prom", "secret")(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("prom", "secret")
		rec := httptest.NewRecorder()

		BasicAuthMiddleware("prom", "secret")(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	var readErr error
	h := BodyLimitMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 20))))

	require.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "request body too large")
}

func TestRequestTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	h := RequestTimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}
