package summary

import (
	"context"
	"net/http"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/db"
	"github.com/nijaru/yt-summary/gemini"
	"github.com/nijaru/yt-summary/storage"
	"github.com/nijaru/yt-summary/youtube"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewFromConfig wires the fetchers, the completion client and whichever
// archives are configured. cleanup closes the archive database.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Service, func() error, error) {
	client := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}

	metaOpts := []youtube.MetadataOption{youtube.WithMetadataLogger(logger)}
	if cfg.YouTube.EnableDetails {
		metaOpts = append(metaOpts, youtube.WithDetails(youtube.NewDetailsFetcher(client)))
	}

	opts := []Option{WithLogger(logger)}
	cleanup := func() error { return nil }

	if cfg.Archive.DBPath != "" {
		store, err := db.Open(cfg.Archive.DBPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open summary archive")
		}
		opts = append(opts, WithStore(store))
		cleanup = store.Close
		logger.WithField("path", cfg.Archive.DBPath).Info("Summary archive enabled")
	}

	if cfg.Archive.Spaces.Enabled() {
		mirror, err := storage.NewSpacesClient(ctx, cfg.Archive.Spaces)
		if err != nil {
			cleanup()
			return nil, nil, errors.Wrap(err, "create spaces client")
		}
		opts = append(opts, WithMirror(mirror))
		logger.WithField("bucket", cfg.Archive.Spaces.Bucket).Info("Summary mirror enabled")
	}

	svc := NewService(
		cfg.Prompt,
		youtube.NewMetadataFetcher(client, cfg.YouTube, metaOpts...),
		youtube.NewCaptionFetcher(client, cfg.YouTube, logger),
		gemini.NewClient(client, cfg.Gemini, logger),
		opts...,
	)
	return svc, cleanup, nil
}
