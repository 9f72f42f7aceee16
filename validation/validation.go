package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	pkgerrors "github.com/pkg/errors"
)

var ErrVideoIDNotFound = pkgerrors.New("could not find a YouTube video ID")

var bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// Tried in order after the bare ID check.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// ResolveVideoID extracts an 11 character video ID from a bare ID or one of
// the supported URL shapes.
func ResolveVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrVideoIDNotFound
	}

	if bareIDPattern.MatchString(input) {
		return input, nil
	}

	for _, pattern := range videoURLPatterns {
		if m := pattern.FindStringSubmatch(input); len(m) == 2 {
			return m[1], nil
		}
	}

	return "", ErrVideoIDNotFound
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
}

// ValidateRequest validates HTTP requests
func ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "validation.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.MethodNotAllowed(op)
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
