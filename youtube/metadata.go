package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type MetadataResult struct {
	Info    VideoInfo
	Outcome Outcome
	Err     error
}

// DetailsSource supplies fields oEmbed does not carry.
type DetailsSource interface {
	Details(ctx context.Context, id string) (Details, error)
}

type MetadataFetcher struct {
	client  *http.Client
	cfg     config.YouTubeConfig
	details DetailsSource
	group   singleflight.Group
	logger  *logrus.Logger
}

type MetadataOption func(*MetadataFetcher)

func WithDetails(src DetailsSource) MetadataOption {
	return func(f *MetadataFetcher) {
		f.details = src
	}
}

func WithMetadataLogger(logger *logrus.Logger) MetadataOption {
	return func(f *MetadataFetcher) {
		f.logger = logger
	}
}

func NewMetadataFetcher(client *http.Client, cfg config.YouTubeConfig, opts ...MetadataOption) *MetadataFetcher {
	f := &MetadataFetcher{
		client: client,
		cfg:    cfg,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch never fails. On any oEmbed problem it returns placeholder values
// with OutcomeDegraded and the cause in Err.
func (f *MetadataFetcher) Fetch(ctx context.Context, id string) MetadataResult {
	// Concurrent lookups for one ID share a single request. The shared call
	// is detached from any one caller's cancellation.
	v, _, _ := f.group.Do(id, func() (interface{}, error) {
		return f.fetch(context.WithoutCancel(ctx), id), nil
	})
	return v.(MetadataResult)
}

func (f *MetadataFetcher) fetch(ctx context.Context, id string) MetadataResult {
	logger := f.logger.WithField("video_id", id)
	result := MetadataResult{Info: PlaceholderInfo(f.cfg, id), Outcome: OutcomeOK}

	oembed, err := f.fetchOEmbed(ctx, id)
	if err != nil {
		logger.WithError(err).Warn("oEmbed lookup failed, using placeholder metadata")
		result.Outcome = OutcomeDegraded
		result.Err = err
	} else {
		if title := strings.TrimSpace(oembed.Title); title != "" {
			result.Info.Title = title
		}
		if author := strings.TrimSpace(oembed.AuthorName); author != "" {
			result.Info.Author = author
		}
		if oembed.ThumbnailURL != "" {
			result.Info.Thumbnail = oembed.ThumbnailURL
		}
	}

	if f.details != nil {
		dctx, cancel := context.WithTimeout(ctx, f.timeout())
		details, err := f.details.Details(dctx, id)
		cancel()
		if err != nil {
			logger.WithError(err).Debug("Video details unavailable")
		} else {
			result.Info.Duration = seconds(details.Duration)
			result.Info.Description = details.Description
			if result.Outcome == OutcomeDegraded && details.Thumbnail != "" {
				result.Info.Thumbnail = details.Thumbnail
			}
		}
	}

	return result
}

func (f *MetadataFetcher) fetchOEmbed(ctx context.Context, id string) (oEmbedResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	q := url.Values{}
	q.Set("url", fmt.Sprintf(f.cfg.WatchURLTemplate, id))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.OEmbedURL+"?"+q.Encode(), nil)
	if err != nil {
		return oEmbedResponse{}, errors.Wrap(err, "build oEmbed request")
	}

	resp, err := f.client.Do(newRequest(req))
	if err != nil {
		return oEmbedResponse{}, errors.Wrap(err, "oEmbed request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return oEmbedResponse{}, errors.Errorf("oEmbed returned status %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return oEmbedResponse{}, errors.Wrap(err, "read oEmbed body")
	}

	var payload oEmbedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return oEmbedResponse{}, errors.Wrap(err, "decode oEmbed body")
	}
	return payload, nil
}

func (f *MetadataFetcher) timeout() time.Duration {
	if f.cfg.FetchTimeout > 0 {
		return f.cfg.FetchTimeout
	}
	return 10 * time.Second
}
