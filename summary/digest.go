package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/utils"
	"github.com/nijaru/yt-summary/youtube"
	"github.com/sirupsen/logrus"
)

// Digest summarizes a video server side. Long transcripts are split into
// chunks, summarized one by one, then combined with an overall summary.
func (s *Service) Digest(ctx context.Context, input string) (*Digest, error) {
	const op = "SummaryService.Digest"

	id, err := resolve(op, input)
	if err != nil {
		return nil, err
	}

	material := s.Gather(ctx, id)
	logger := s.logger.WithFields(logrus.Fields{
		"video_id": id,
		"source":   material.Source,
	})

	chunks := utils.SplitText(material.Transcript, s.config.ChunkSize)
	results := make([]ChunkSummary, 0, len(chunks))
	var (
		summaries []string
		lastErr   error
	)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, errors.Internal(op, err, "Summary creation cancelled")
		}

		logger.WithFields(logrus.Fields{
			"chunk": i + 1,
			"total": len(chunks),
		}).Debug("Processing chunk")

		var p string
		if len(chunks) == 1 {
			p = s.composer.Compose(material.Info, chunk)
		} else {
			p = s.composer.ComposeChunk(material.Info, chunk, i+1, len(chunks))
		}

		text, err := s.complete(ctx, op, p)
		if err != nil {
			logger.WithError(err).WithField("chunk", i+1).Warn("Chunk summary failed")
			results = append(results, ChunkSummary{Index: i + 1, Error: err.Error()})
			lastErr = err
			continue
		}
		results = append(results, ChunkSummary{Index: i + 1, Summary: text})
		summaries = append(summaries, text)
	}

	if len(summaries) == 0 {
		if lastErr == nil {
			lastErr = errors.Internal(op, nil, "Transcript was empty")
		}
		return nil, lastErr
	}

	final := s.combine(ctx, op, material.Info, summaries, logger)

	digest := &Digest{
		VideoInfo:       material.Info,
		Summary:         final,
		Chunks:          results,
		Source:          material.Source,
		CaptionLanguage: material.CaptionLanguage,
		Model:           s.completer.Model(),
		CreatedAt:       time.Now().UTC(),
	}

	s.archive(ctx, newRecord(material, final, digest.Model))

	logger.WithField("chunks", len(chunks)).Info("Digest created")
	return digest, nil
}

// combine asks for an overall summary when there is more than one chunk.
// If that request fails the chunk summaries are returned joined.
func (s *Service) combine(
	ctx context.Context,
	op string,
	info youtube.VideoInfo,
	summaries []string,
	logger *logrus.Entry,
) string {
	if len(summaries) == 1 {
		return summaries[0]
	}

	overall, err := s.complete(ctx, op, s.composer.ComposeOverall(info, summaries))
	if err != nil {
		logger.WithError(err).Warn("Overall summary failed, returning chunk summaries")
		return joinSummaries(summaries)
	}
	return overall
}

// complete sends one prompt and returns the candidate text.
func (s *Service) complete(ctx context.Context, op, p string) (string, error) {
	resp, err := s.completer.Generate(ctx, p)
	if err != nil {
		return "", errors.Internal(op, err, fmt.Sprintf("completion request failed: %v", err))
	}
	if !resp.OK() {
		return "", errors.Upstream(op, resp.StatusCode, resp.Body)
	}
	text, err := resp.Text()
	if err != nil {
		return "", errors.Internal(op, err, "Completion response contained no summary")
	}
	return text, nil
}

func joinSummaries(summaries []string) string {
	parts := make([]string, len(summaries))
	for i, s := range summaries {
		parts[i] = strings.TrimSpace(s)
	}
	return strings.Join(parts, "\n\n")
}
