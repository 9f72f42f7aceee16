package summary

import (
	"context"
	"time"

	"github.com/nijaru/yt-summary/db"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/storage"
)

const archiveTimeout = 10 * time.Second

func newRecord(m *Material, text, model string) *models.Summary {
	return &models.Summary{
		VideoID:   m.Info.VideoID,
		Title:     m.Info.Title,
		Author:    m.Info.Author,
		Thumbnail: m.Info.Thumbnail,
		URL:       m.Info.URL,
		Summary:   text,
		Model:     model,
		Source:    m.Source,
		Language:  m.CaptionLanguage,
	}
}

// archive stores a summary in the configured archives. Failures are logged
// and never reach the caller.
func (s *Service) archive(ctx context.Context, sum *models.Summary) {
	if s.store == nil && s.mirror == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	logger := s.logger.WithField("video_id", sum.VideoID)
	if s.store != nil {
		if err := s.store.Save(ctx, sum); err != nil {
			logger.WithError(err).Error("Failed to archive summary")
		}
	}
	if s.mirror != nil {
		if err := s.mirror.SaveSummary(ctx, sum); err != nil {
			logger.WithError(err).Error("Failed to mirror summary")
		}
	}
}

// GetSummary returns an archived summary by video ID or URL.
func (s *Service) GetSummary(ctx context.Context, input string) (*models.Summary, error) {
	const op = "SummaryService.GetSummary"

	id, err := resolve(op, input)
	if err != nil {
		return nil, err
	}
	if s.store == nil && s.mirror == nil {
		return nil, errors.NotFound(op, nil, "Summary archive is not enabled")
	}

	if s.store != nil {
		sum, err := s.store.Get(ctx, id)
		switch {
		case err == nil:
			return sum, nil
		case !errors.Is(err, db.ErrNotFound):
			return nil, errors.Internal(op, err, "Failed to read summary archive")
		}
	}

	if s.mirror != nil {
		sum, err := s.mirror.GetSummary(ctx, id)
		switch {
		case err == nil:
			return sum, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, errors.Internal(op, err, "Failed to read summary mirror")
		}
	}

	return nil, errors.NotFound(op, nil, "Summary not found")
}

// DeleteSummary removes a video's summary from every configured archive and
// returns the resolved video ID. Deleting an absent summary is not an error.
func (s *Service) DeleteSummary(ctx context.Context, input string) (string, error) {
	const op = "SummaryService.DeleteSummary"

	id, err := resolve(op, input)
	if err != nil {
		return "", err
	}
	if s.store == nil && s.mirror == nil {
		return "", errors.NotFound(op, nil, "Summary archive is not enabled")
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			return "", errors.Internal(op, err, "Failed to delete archived summary")
		}
	}
	if s.mirror != nil {
		if err := s.mirror.DeleteSummary(ctx, id); err != nil {
			return "", errors.Internal(op, err, "Failed to delete mirrored summary")
		}
	}

	s.logger.WithField("video_id", id).Info("Summary deleted")
	return id, nil
}
