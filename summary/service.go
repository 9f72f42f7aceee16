package summary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/prompt"
	"github.com/nijaru/yt-summary/validation"
	"github.com/nijaru/yt-summary/youtube"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	metadata  MetadataSource
	captions  CaptionSource
	composer  *prompt.Composer
	completer Completer
	store     Store
	mirror    Mirror
	config    config.PromptConfig
	logger    *logrus.Logger
}

type Option func(*Service)

func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithMirror(mirror Mirror) Option {
	return func(s *Service) {
		s.mirror = mirror
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(
	cfg config.PromptConfig,
	metadata MetadataSource,
	captions CaptionSource,
	completer Completer,
	opts ...Option,
) *Service {
	s := &Service{
		metadata:  metadata,
		captions:  captions,
		composer:  prompt.NewComposer(cfg),
		completer: completer,
		config:    cfg,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Relay runs the single-prompt pipeline and returns the upstream reply,
// optionally merged with the video's metadata.
func (s *Service) Relay(ctx context.Context, input string) (*RelayResult, error) {
	const op = "SummaryService.Relay"

	id, err := resolve(op, input)
	if err != nil {
		return nil, err
	}

	material := s.Gather(ctx, id)
	logger := s.logger.WithFields(logrus.Fields{
		"video_id": id,
		"source":   material.Source,
		"metadata": material.MetadataOutcome,
		"captions": material.CaptionOutcome,
	})

	resp, err := s.completer.Generate(ctx, s.composer.Compose(material.Info, material.Transcript))
	if err != nil {
		logger.WithError(err).Error("Completion request failed")
		return nil, errors.Internal(op, err, fmt.Sprintf("completion request failed: %v", err))
	}
	if !resp.OK() {
		logger.WithField("status", resp.StatusCode).Warn("Completion API rejected request")
		return nil, errors.Upstream(op, resp.StatusCode, resp.Body)
	}

	if text, err := resp.Text(); err == nil {
		s.archive(ctx, newRecord(material, text, s.completer.Model()))
	}

	body := resp.Body
	if s.config.MergeVideoInfo {
		body = mergeVideoInfo(resp.Body, material.Info)
	}

	logger.Info("Relayed completion")
	return &RelayResult{StatusCode: resp.StatusCode, Body: body, Material: material}, nil
}

// Forward relays a client-built completion request untouched.
func (s *Service) Forward(ctx context.Context, body []byte) (*RelayResult, error) {
	const op = "SummaryService.Forward"

	if len(body) == 0 || !json.Valid(body) {
		body = []byte("{}")
	}

	resp, err := s.completer.Forward(ctx, body)
	if err != nil {
		return nil, errors.Internal(op, err, fmt.Sprintf("completion request failed: %v", err))
	}
	return &RelayResult{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// Gather fetches metadata and captions concurrently and substitutes a
// synthetic transcript when no captions are usable.
func (s *Service) Gather(ctx context.Context, id string) *Material {
	var (
		meta youtube.MetadataResult
		caps youtube.CaptionResult
		g    errgroup.Group
	)

	// Both fetchers report failure through their Outcome, never an error.
	g.Go(func() error {
		meta = s.metadata.Fetch(ctx, id)
		return nil
	})
	g.Go(func() error {
		caps = s.captions.Fetch(ctx, id)
		return nil
	})
	_ = g.Wait()

	m := &Material{
		Info:            meta.Info,
		MetadataOutcome: meta.Outcome,
		CaptionOutcome:  caps.Outcome,
	}

	if caps.Outcome == youtube.OutcomeOK {
		m.Transcript = caps.Text
		m.Source = models.SourceCaptions
		m.CaptionLanguage = caps.Language
		return m
	}

	m.Transcript = youtube.SyntheticTranscript(meta.Info)
	m.Source = models.SourceMetadata
	m.CaptionOutcome = youtube.OutcomeDegraded
	return m
}

// mergeVideoInfo adds a videoInfo field to a JSON object body. Anything that
// is not a JSON object is returned verbatim.
func mergeVideoInfo(body []byte, info youtube.VideoInfo) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body
	}

	raw, err := json.Marshal(struct {
		VideoID   string `json:"videoId"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		Thumbnail string `json:"thumbnail"`
		Duration  *int   `json:"duration"`
		URL       string `json:"url"`
	}{info.VideoID, info.Title, info.Author, info.Thumbnail, info.Duration, info.URL})
	if err != nil {
		return body
	}
	obj["videoInfo"] = raw

	merged, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return merged
}

func resolve(op, input string) (string, error) {
	id, err := validation.ResolveVideoID(input)
	if err != nil {
		return "", errors.InvalidInput(op, err, "Could not find a YouTube video ID in the request")
	}
	return id, nil
}
