package youtube

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/pkg/errors"
)

type Details struct {
	Duration    time.Duration
	Description string
	Thumbnail   string
}

type videoGetter interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
}

// DetailsFetcher reads duration and description from the player API.
type DetailsFetcher struct {
	client videoGetter
}

func NewDetailsFetcher(httpClient *http.Client) *DetailsFetcher {
	return &DetailsFetcher{client: &youtube.Client{HTTPClient: httpClient}}
}

func (d *DetailsFetcher) Details(ctx context.Context, id string) (Details, error) {
	video, err := d.client.GetVideoContext(ctx, id)
	if err != nil {
		return Details{}, errors.Wrap(err, "player lookup")
	}
	return detailsFromVideo(video), nil
}

func detailsFromVideo(video *youtube.Video) Details {
	if video == nil {
		return Details{}
	}
	return Details{
		Duration:    video.Duration,
		Description: strings.TrimSpace(video.Description),
		Thumbnail:   bestThumbnail(video.Thumbnails),
	}
}

func bestThumbnail(thumbs youtube.Thumbnails) string {
	best := ""
	var bestArea uint
	for _, t := range thumbs {
		if area := t.Width * t.Height; t.URL != "" && (best == "" || area > bestArea) {
			best = t.URL
			bestArea = area
		}
	}
	return best
}
