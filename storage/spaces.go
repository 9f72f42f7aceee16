package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appconfig "github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/models"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("object not found")

// SpacesClient mirrors archived summaries to an S3 compatible bucket.
type SpacesClient struct {
	client *s3.Client
	bucket string
}

func NewSpacesClient(ctx context.Context, cfg appconfig.SpacesConfig) (*SpacesClient, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &SpacesClient{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func summaryKey(videoID string) string {
	return fmt.Sprintf("summaries/%s.json", videoID)
}

func (s *SpacesClient) SaveSummary(ctx context.Context, sum *models.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return errors.Wrap(err, "failed to marshal summary")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(summaryKey(sum.VideoID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to save to Spaces")
	}
	return nil
}

func (s *SpacesClient) GetSummary(ctx context.Context, videoID string) (*models.Summary, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(summaryKey(videoID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get from Spaces")
	}
	defer result.Body.Close()

	var sum models.Summary
	if err := json.NewDecoder(result.Body).Decode(&sum); err != nil {
		return nil, errors.Wrap(err, "failed to decode summary")
	}
	return &sum, nil
}

func (s *SpacesClient) DeleteSummary(ctx context.Context, videoID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(summaryKey(videoID)),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete from Spaces")
	}
	return nil
}
