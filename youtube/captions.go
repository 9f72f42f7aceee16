package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrCaptionsUnavailable = errors.New("no usable captions in any configured language")

// json3 timed text format.
type timedText struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

type CaptionResult struct {
	Text     string
	Language string
	// Attempts lists every language requested, in order.
	Attempts []string
	Outcome  Outcome
	Err      error
}

type CaptionFetcher struct {
	client *http.Client
	cfg    config.YouTubeConfig
	logger *logrus.Logger
}

func NewCaptionFetcher(client *http.Client, cfg config.YouTubeConfig, logger *logrus.Logger) *CaptionFetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CaptionFetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch tries each configured language in order and stops at the first
// transcript longer than MinCaptionLength.
func (f *CaptionFetcher) Fetch(ctx context.Context, id string) CaptionResult {
	logger := f.logger.WithField("video_id", id)
	result := CaptionResult{Outcome: OutcomeFailed}

	for _, lang := range f.cfg.Languages {
		if ctx.Err() != nil {
			break
		}
		result.Attempts = append(result.Attempts, lang)

		text, err := f.fetchLanguage(ctx, id, lang)
		if err != nil {
			logger.WithError(err).WithField("lang", lang).Debug("Caption attempt failed")
			continue
		}
		if utf8.RuneCountInString(text) <= f.cfg.MinCaptionLength {
			logger.WithFields(logrus.Fields{
				"lang":   lang,
				"length": utf8.RuneCountInString(text),
			}).Debug("Caption track too short")
			continue
		}

		result.Text = text
		result.Language = lang
		result.Outcome = OutcomeOK
		return result
	}

	result.Err = errors.Wrapf(ErrCaptionsUnavailable, "tried %s", strings.Join(result.Attempts, ", "))
	logger.WithError(result.Err).Info("Captions unavailable")
	return result
}

func (f *CaptionFetcher) fetchLanguage(ctx context.Context, id, lang string) (string, error) {
	timeout := f.cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	q.Set("v", id)
	q.Set("lang", lang)
	q.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.TimedTextURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "build timedtext request")
	}

	resp, err := f.client.Do(newRequest(req))
	if err != nil {
		return "", errors.Wrap(err, "timedtext request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return "", errors.Wrap(err, "read timedtext body")
	}
	if len(body) == 0 {
		return "", errors.New("empty timedtext body")
	}

	var tt timedText
	if err := json.Unmarshal(body, &tt); err != nil {
		return "", errors.Wrap(err, "decode timedtext body")
	}

	return flattenSegments(tt), nil
}

func flattenSegments(tt timedText) string {
	var sb strings.Builder
	for _, event := range tt.Events {
		for _, seg := range event.Segs {
			text := strings.Join(strings.Fields(seg.UTF8), " ")
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// SyntheticTranscript stands in for captions when none could be fetched.
func SyntheticTranscript(info VideoInfo) string {
	description := strings.TrimSpace(info.Description)
	if description == "" {
		description = "(no description available)"
	}
	return fmt.Sprintf("Title: %s\nChannel: %s\nDescription: %s", info.Title, info.Author, description)
}
