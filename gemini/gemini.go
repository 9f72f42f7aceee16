// Package gemini is a minimal client for the generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxResponseSize = 8 * 1024 * 1024

var ErrEmptyCandidate = errors.New("completion contained no text")

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Request struct {
	Contents []Content `json:"contents"`
}

type candidateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// Response is the upstream reply, kept raw so it can be relayed verbatim.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the first candidate's text parts joined together.
func (r *Response) Text() (string, error) {
	return ExtractText(r.Body)
}

type Client struct {
	httpClient *http.Client
	cfg        config.GeminiConfig
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewClient(httpClient *http.Client, cfg config.GeminiConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute)/60, 1)
	}
	return c
}

func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends prompt as a single-turn request.
func (c *Client) Generate(ctx context.Context, prompt string) (*Response, error) {
	body, err := json.Marshal(Request{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode completion request")
	}
	return c.Forward(ctx, body)
}

// Forward posts an already encoded request body. It is attempted once; a
// timeout surfaces as an error like any transport failure.
func (c *Client) Forward(ctx context.Context, body []byte) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "wait for completion rate limit")
		}
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(redact(err), "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(redact(err), "completion request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "read completion response")
	}

	c.logger.WithFields(logrus.Fields{
		"model":    c.cfg.Model,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
		"size":     len(data),
	}).Debug("Completion request finished")

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, c.cfg.Model, url.QueryEscape(c.cfg.APIKey))
}

// redact keeps the API key out of logged transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			q := u.Query()
			if q.Has("key") {
				q.Set("key", "REDACTED")
				u.RawQuery = q.Encode()
				urlErr.URL = u.String()
			}
		}
	}
	return err
}

func ExtractText(body []byte) (string, error) {
	var payload candidateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.Wrap(err, "decode completion response")
	}
	if len(payload.Candidates) == 0 {
		return "", ErrEmptyCandidate
	}

	var b strings.Builder
	for _, part := range payload.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyCandidate
	}
	return text, nil
}
