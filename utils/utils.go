package utils

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize = 30000
	// Sentence boundaries are only searched this far back from a cut.
	boundaryWindow  = 200
	maxFilenameSize = 100
)

// Checked in this order; the first terminator found in the window wins.
var sentenceTerminators = []rune{'。', '.', '！', '？'}

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// SplitText cuts text into chunks of at most size runes, preferring to end
// each chunk just after a sentence terminator near the cut.
func SplitText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	if len(runes) <= size {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end < len(runes) {
			if cut := lastTerminator(runes, max(start, end-boundaryWindow), end); cut > start {
				end = cut + 1
			}
		} else {
			end = len(runes)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}

func lastTerminator(runes []rune, from, to int) int {
	for _, term := range sentenceTerminators {
		for i := to - 1; i >= from; i-- {
			if runes[i] == term {
				return i
			}
		}
	}
	return -1
}

// SanitizeFilename makes a video title safe to use as a file name.
func SanitizeFilename(title string) string {
	title = invalidFilenameChars.ReplaceAllString(title, "_")
	title = strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))
	if runes := []rune(title); len(runes) > maxFilenameSize {
		title = strings.TrimSpace(string(runes[:maxFilenameSize]))
	}
	return title
}
