package summary

import (
	"context"
	"time"

	"github.com/nijaru/yt-summary/gemini"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/youtube"
)

type MetadataSource interface {
	Fetch(ctx context.Context, id string) youtube.MetadataResult
}

type CaptionSource interface {
	Fetch(ctx context.Context, id string) youtube.CaptionResult
}

type Completer interface {
	Generate(ctx context.Context, prompt string) (*gemini.Response, error)
	Forward(ctx context.Context, body []byte) (*gemini.Response, error)
	Model() string
}

// Store is the primary summary archive.
type Store interface {
	Save(ctx context.Context, sum *models.Summary) error
	Get(ctx context.Context, videoID string) (*models.Summary, error)
	Delete(ctx context.Context, videoID string) error
}

// Mirror is a secondary copy of the archive, read when Store misses.
type Mirror interface {
	SaveSummary(ctx context.Context, sum *models.Summary) error
	GetSummary(ctx context.Context, videoID string) (*models.Summary, error)
	DeleteSummary(ctx context.Context, videoID string) error
}

// Material is everything gathered about a video before prompting.
type Material struct {
	Info            youtube.VideoInfo
	Transcript      string
	Source          models.Source
	CaptionLanguage string
	MetadataOutcome youtube.Outcome
	CaptionOutcome  youtube.Outcome
}

type RelayResult struct {
	StatusCode int
	Body       []byte
	Material   *Material
}

type ChunkSummary struct {
	Index   int    `json:"index"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Digest struct {
	VideoInfo       youtube.VideoInfo `json:"videoInfo"`
	Summary         string            `json:"summary"`
	Chunks          []ChunkSummary    `json:"chunks"`
	Source          models.Source     `json:"source"`
	CaptionLanguage string            `json:"captionLanguage,omitempty"`
	Model           string            `json:"model"`
	CreatedAt       time.Time         `json:"createdAt"`
}
