package validation

import (
	"net/http"
	"strings"
	"testing"

	"github.com/nijaru/yt-summary/errors"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", false},
		{"a-b_c-d_e-f", "a-b_c-d_e-f", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"not a url", "", true},
		{"", "", true},
		{"dQw4w9WgXc", "", true},
		{"https://vimeo.com/123456789", "", true},
		{"https://www.youtube.com/watch?v=short", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveVideoID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveVideoID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && err != ErrVideoIDNotFound {
			t.Errorf("ResolveVideoID(%q) error = %v, want ErrVideoIDNotFound", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ResolveVideoID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		ctype      string
		opts       RequestValidationOpts
		wantStatus int
	}{
		{"allowed", http.MethodPost, "application/json", RequestValidationOpts{AllowedMethods: []string{http.MethodPost}}, 0},
		{"any content type", http.MethodPost, "text/plain", RequestValidationOpts{AllowedMethods: []string{http.MethodPost}}, 0},
		{"wrong method", http.MethodGet, "", RequestValidationOpts{AllowedMethods: []string{http.MethodPost}}, http.StatusMethodNotAllowed},
		{"at limit", http.MethodPost, "", RequestValidationOpts{MaxContentLength: 2}, 0},
		{"too large", http.MethodPost, "", RequestValidationOpts{MaxContentLength: 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, "/", strings.NewReader("{}"))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", tt.ctype)

		err = ValidateRequest(req, tt.opts)
		if tt.wantStatus == 0 {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if got := errors.StatusCode(err); got != tt.wantStatus {
			t.Errorf("%s: got status %d want %d", tt.name, got, tt.wantStatus)
		}
	}
}
