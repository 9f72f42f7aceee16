// Package youtube fetches video metadata and captions from public YouTube
// endpoints. Fetchers report an Outcome instead of failing so callers can
// decide how to degrade.
package youtube

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nijaru/yt-summary/config"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; yt-summary/1.0)"
	maxResponseSize = 4 * 1024 * 1024
	unknownChannel  = "Unknown channel"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeDegraded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type VideoInfo struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Thumbnail   string `json:"thumbnail"`
	Duration    *int   `json:"duration"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// PlaceholderInfo is the fully populated VideoInfo used when oEmbed is
// unavailable.
func PlaceholderInfo(cfg config.YouTubeConfig, id string) VideoInfo {
	return VideoInfo{
		VideoID:   id,
		Title:     "Video " + id,
		Author:    unknownChannel,
		Thumbnail: fmt.Sprintf(cfg.ThumbnailTemplate, id),
		URL:       fmt.Sprintf(cfg.WatchURLTemplate, id),
	}
}

func seconds(d time.Duration) *int {
	if d <= 0 {
		return nil
	}
	s := int(d.Seconds())
	return &s
}

func newRequest(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}
