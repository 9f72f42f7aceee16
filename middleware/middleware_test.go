package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/sirupsen/logrus"
)

var corsConfig = config.CORSConfig{
	AllowedOrigin:  "*",
	AllowedMethods: []string{"POST", "OPTIONS"},
	AllowedHeaders: []string{"Content-Type", "Accept", "X-Requested-With"},
	MaxAge:         86400,
}

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, &buf
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := CORS(corsConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	for _, path := range []string{"/", "/api/v1/relay", "/anything/else"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if rr.Body.Len() != 0 {
			t.Errorf("%s: expected empty body, got %q", path, rr.Body.String())
		}

		want := map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "POST, OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type, Accept, X-Requested-With",
			"Access-Control-Max-Age":       "86400",
		}
		for header, value := range want {
			if got := rr.Header().Get(header); got != value {
				t.Errorf("%s: %s = %q, want %q", path, header, got, value)
			}
		}
	}

	if called {
		t.Error("preflight must not reach the next handler")
	}
}

func TestCORSOrigin(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		origin     string
		want       string
	}{
		{"wildcard", "*", "https://example.com", "*"},
		{"empty config", "", "https://example.com", "*"},
		{"prefix match echoes origin", "https://www.youtube.com", "https://www.youtube.com", "https://www.youtube.com"},
		{"prefix mismatch", "https://www.youtube.com", "https://evil.example", "https://www.youtube.com"},
		{"no origin header", "https://www.youtube.com", "", "https://www.youtube.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := corsConfig
			cfg.AllowedOrigin = tt.configured
			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusTeapot {
				t.Errorf("expected request to reach handler, got %d", rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
			if rr.Header().Get("Access-Control-Allow-Methods") != "" {
				t.Error("methods header is only set on preflight")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, rr.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "abc-123" {
		t.Errorf("expected incoming id to be kept, got %q", seen)
	}
}

func TestRecovery(t *testing.T) {
	logger, buf := testLogger()
	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }),
		Recovery(logger),
		CORS(corsConfig),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("expected JSON error body, got %q", rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("error responses must carry the allowed origin")
	}
	if !bytes.Contains(buf.Bytes(), []byte("Panic recovered")) {
		t.Error("expected panic to be logged")
	}
}

func TestRecoveryLogsRequestID(t *testing.T) {
	logger, buf := testLogger()
	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }),
		Recovery(logger),
		RequestID(),
	)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var logged map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logged); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if logged["request_id"] != "abc-123" {
		t.Errorf("expected request_id abc-123 in panic log, got %v", logged["request_id"])
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] != "Rate limit exceeded" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if deadline.IsZero() {
		t.Error("expected request context to carry a deadline")
	}

	passthrough := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); ok {
			t.Error("zero timeout should not set a deadline")
		}
	}))
	passthrough.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLogging(t *testing.T) {
	logger, buf := testLogger()

	var entry *logrus.Entry
	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry = GetLogger(r.Context())
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "nope")
		}),
		RequestID(),
		Logging(logger),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/relay", nil)
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if entry == nil || entry.Data["request_id"] != "req-1" {
		t.Fatalf("expected context logger with request id, got %+v", entry)
	}

	var logged map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logged); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if logged["level"] != "warning" || logged["status"] != float64(http.StatusBadRequest) || logged["size"] != float64(4) {
		t.Errorf("unexpected log entry: %v", logged)
	}
}

func TestGetLoggerDefault(t *testing.T) {
	if GetLogger(context.Background()) == nil {
		t.Error("expected a fallback logger")
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
}
