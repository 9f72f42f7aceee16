package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
)

func testConfig(base string) config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:  "secret-key",
		BaseURL: base,
		Model:   "gemini-2.0-flash",
		Timeout: time.Second,
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret-key" {
			t.Errorf("expected key query parameter")
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request body: %+v", req)
		}

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Hi "},{"text":"there"}]}}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), testConfig(srv.URL), nil)
	resp, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Errorf("expected OK response, got %d", resp.StatusCode)
	}
	text, err := resp.Text()
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hi there" {
		t.Errorf("expected %q, got %q", "Hi there", text)
	}
}

func TestForwardRelaysErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.Client(), testConfig(srv.URL), nil).Forward(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.OK() || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "API key not valid") {
		t.Errorf("expected raw body, got %s", resp.Body)
	}
}

func TestForwardTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewClient(srv.Client(), cfg, nil).Generate(context.Background(), "slow")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks API key: %v", err)
	}
}

type errTransport struct{}

func (errTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestForwardRedactsKey(t *testing.T) {
	c := NewClient(&http.Client{Transport: errTransport{}}, testConfig("http://gemini.invalid"), nil)
	_, err := c.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-key") || !strings.Contains(err.Error(), "REDACTED") {
		t.Errorf("expected redacted key in %v", err)
	}
}

func TestRateLimitedClientHonoursContext(t *testing.T) {
	cfg := testConfig("http://gemini.invalid")
	cfg.RequestsPerMinute = 1
	c := NewClient(&http.Client{Transport: errTransport{}}, cfg, nil)

	// Consume the single token.
	c.Generate(context.Background(), "x")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Generate(ctx, "x"); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("expected rate limit wait error, got %v", err)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"text", `{"candidates":[{"content":{"parts":[{"text":" summary "}]}}]}`, "summary", nil},
		{"no candidates", `{"candidates":[]}`, "", ErrEmptyCandidate},
		{"blank", `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, "", ErrEmptyCandidate},
	}

	for _, tt := range tests {
		got, err := ExtractText([]byte(tt.body))
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v want %q", tt.name, got, err, tt.want)
		}
	}

	if _, err := ExtractText([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}
