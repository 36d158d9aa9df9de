package middleware

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type stubAuth struct {
	inbound.AuthService
	token  string
	claims *inbound.SessionClaims
}

func (s stubAuth) Verify(ctx context.Context, token string) (*inbound.SessionClaims, error) {
	if token != s.token {
		return nil, errors.NewUnauthorizedError("Invalid or expired session")
	}
	return s.claims, nil
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthenticate(t *testing.T) {
	claims := &inbound.SessionClaims{SessionID: "s1", User: user.Identity{UID: "u1"}}
	auth := Authenticate(stubAuth{token: "good", claims: claims}, zaptest.NewLogger(t))

	var seen *inbound.SessionClaims
	handler := auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer good", "", http.StatusOK},
		{"lowercase scheme", "bearer good", "", http.StatusOK},
		{"query token", "", "?access_token=good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized},
		{"empty token", "Bearer  ", "", http.StatusUnauthorized},
		{"bad token", "Bearer bad", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Same(t, claims, seen)
			} else {
				assert.Nil(t, seen)
				assert.Equal(t, false, envelope(t, rec)["success"])
			}
		})
	}
}

func TestClaimsFromContext_Nil(t *testing.T) {
	_, found := ClaimsFromContext(WithClaims(context.Background(), nil))
	assert.False(t, found)
}

func TestRequestID(t *testing.T) {
	var id string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = chimiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", 65))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	for _, path := range []string{"/", "/missing", "/broken"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.EqualValues(t, 500, entries[2].ContextMap()["status"])
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", envelope(t, rec)["message"])

	abort := Recoverer(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestSecurity(t *testing.T) {
	rec := httptest.NewRecorder()
	Security(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestJSONBody(t *testing.T) {
	handler := JSONBody(ok)

	post := func(contentType, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("application/json; charset=utf-8", `{}`))
	assert.Equal(t, http.StatusOK, post("", ""))
	assert.Equal(t, http.StatusBadRequest, post("text/plain", "hi"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", strings.NewReader("x")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://app.pantrysense.io"}, MaxAge: time.Hour})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/inventory", nil)
	req.Header.Set("Origin", "https://app.pantrysense.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.pantrysense.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	assert.True(t, containsWildcard([]string{"https://a", "*"}))
	assert.False(t, containsWildcard(nil))
}

func TestCompress(t *testing.T) {
	payload := strings.Repeat(`{"name":"Rice","weight":850}`, 100)
	handler := Compress(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	decoded, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := limiter.Handler(ok)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001").Code)
	limited := call("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000").Code, "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1003").Code, "one token refills per second")

	now = now.Add(time.Hour)
	call("10.0.0.3:1")
	limiter.mu.Lock()
	assert.Len(t, limiter.visitors, 1, "idle visitors are dropped")
	limiter.mu.Unlock()
}

func TestRateLimiter_Disabled(t *testing.T) {
	handler := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, Burst: 1}).Handler(ok)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/inventory/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/inventory/{id}", "204")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}
