package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/youtube"
)

func TestWriteSummary(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		title    string
		wantFile string
	}{
		{"titled", `What is "Go"? A tour: part 1/2`, "What is _Go__ A tour_ part 1_2.txt"},
		{"untitled", "  ", "summary_dQw4w9WgXcQ.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			d := &summary.Digest{
				VideoInfo: youtube.VideoInfo{VideoID: "dQw4w9WgXcQ", Title: tt.title},
				Summary:   "## Overview\nA summary.",
				Model:     "gemini-2.0-flash",
				Source:    models.SourceCaptions,
			}

			path, err := writeSummary(dir, d, now)
			if err != nil {
				t.Fatalf("writeSummary() error = %v", err)
			}
			if filepath.Base(path) != tt.wantFile {
				t.Errorf("got file %q, want %q", filepath.Base(path), tt.wantFile)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			content := string(data)
			for _, want := range []string{
				"Video ID: dQw4w9WgXcQ\n",
				"Generated: 2024-03-01 14:30:00\n",
				"Model: gemini-2.0-flash\n",
				strings.Repeat("=", 80) + "\n\n## Overview\nA summary.\n",
			} {
				if !strings.Contains(content, want) {
					t.Errorf("file missing %q:\n%s", want, content)
				}
			}
		})
	}
}

func TestWriteSummaryMissingDir(t *testing.T) {
	d := &summary.Digest{VideoInfo: youtube.VideoInfo{VideoID: "dQw4w9WgXcQ", Title: "x"}}
	if _, err := writeSummary(filepath.Join(t.TempDir(), "missing"), d, time.Now()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" zh-TW, ,en ,")
	if want := []string{"zh-TW", "en"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}
