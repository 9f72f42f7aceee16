package models

import (
	"time"
)

// Source records where the summarized text came from.
type Source string

const (
	SourceCaptions Source = "captions"
	SourceMetadata Source = "metadata"
)

type Summary struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Thumbnail string    `json:"thumbnail"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model"`
	Source    Source    `json:"source"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
