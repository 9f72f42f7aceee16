// Package prompt renders the text sent to the completion API.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/youtube"
)

const DefaultLabelThreshold = 100

type template struct {
	header       string // title, channel
	partLabel    string // index, total
	partialLabel string
	summaryLabel string // index
	overall      string
	instructions string
}

const enInstructions = `Please provide:
1. An overview of the video's main content
2. Key points (at least 3-5)
3. Important conclusions or takeaways

The summary should:
- Be written in English
- Be clearly structured and easy to read
- Include concrete information and details
- Be about 200-500 words long`

const zhInstructions = `請提供：
1. 影片主要內容概述
2. 關鍵要點（至少 3-5 個）
3. 重要結論或建議

摘要應該：
- 使用繁體中文
- 結構清晰，易於閱讀
- 包含具體的資訊和細節
- 長度適中（約 200-500 字）`

const markdownInstructions = `Respond in Markdown using exactly these sections:

## Overview
A short paragraph describing what the video is about.

## Key Points
3-5 bullet points with concrete information and details.

## Takeaways
The most important conclusions or recommendations.

Keep the whole summary between 200 and 500 words.`

var templates = map[string]template{
	config.StyleEnglish: {
		header:       "Summarize the following YouTube video.\n\nTitle: %s\nChannel: %s",
		partLabel:    "This is part %d of %d of the transcript.",
		partialLabel: "Transcript (may be partial):",
		summaryLabel: "Part %d summary:",
		overall:      "Combine the following partial summaries into one overall summary of the video.",
		instructions: enInstructions,
	},
	config.StyleTraditional: {
		header:       "請為以下 YouTube 影片生成一個詳細的中文摘要。\n\n影片標題：%s\n頻道：%s",
		partLabel:    "以下是字幕的第 %d 部分（共 %d 部分）。",
		partialLabel: "字幕內容（可能不完整）：",
		summaryLabel: "區塊 %d 摘要：",
		overall:      "請將以下各區塊摘要整合為一份完整的影片整體摘要。",
		instructions: zhInstructions,
	},
	config.StyleMarkdown: {
		header:       "You are summarizing a YouTube video.\n\n**Title:** %s\n**Channel:** %s",
		partLabel:    "This is part %d of %d of the transcript.",
		partialLabel: "Transcript (may be partial):",
		summaryLabel: "### Part %d summary",
		overall:      "Merge the following partial summaries into a single summary of the whole video.",
		instructions: markdownInstructions,
	},
}

// Composer is a pure function of its inputs; it holds no state besides the
// selected template.
type Composer struct {
	tmpl      template
	threshold int
}

func NewComposer(cfg config.PromptConfig) *Composer {
	tmpl, ok := templates[cfg.Style]
	if !ok {
		tmpl = templates[config.StyleMarkdown]
	}
	threshold := cfg.LabelThreshold
	if threshold <= 0 {
		threshold = DefaultLabelThreshold
	}
	return &Composer{tmpl: tmpl, threshold: threshold}
}

// Compose renders the single-turn prompt for one video.
func (c *Composer) Compose(info youtube.VideoInfo, transcript string) string {
	var b strings.Builder
	c.writeHeader(&b, info)
	c.writeTranscript(&b, transcript)
	b.WriteString(c.tmpl.instructions)
	return b.String()
}

// ComposeChunk renders the prompt for one slice of a long transcript.
func (c *Composer) ComposeChunk(info youtube.VideoInfo, chunk string, index, total int) string {
	var b strings.Builder
	c.writeHeader(&b, info)
	fmt.Fprintf(&b, c.tmpl.partLabel, index, total)
	b.WriteString("\n\n")
	c.writeTranscript(&b, chunk)
	b.WriteString(c.tmpl.instructions)
	return b.String()
}

// ComposeOverall asks for one summary built from per-chunk summaries.
func (c *Composer) ComposeOverall(info youtube.VideoInfo, summaries []string) string {
	var b strings.Builder
	c.writeHeader(&b, info)
	b.WriteString(c.tmpl.overall)
	b.WriteString("\n\n")
	for i, s := range summaries {
		fmt.Fprintf(&b, c.tmpl.summaryLabel, i+1)
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(s))
		b.WriteString("\n\n")
	}
	b.WriteString(c.tmpl.instructions)
	return b.String()
}

func (c *Composer) writeHeader(b *strings.Builder, info youtube.VideoInfo) {
	fmt.Fprintf(b, c.tmpl.header, info.Title, info.Author)
	b.WriteString("\n\n")
}

func (c *Composer) writeTranscript(b *strings.Builder, transcript string) {
	if utf8.RuneCountInString(transcript) > c.threshold {
		b.WriteString(c.tmpl.partialLabel)
		b.WriteString("\n")
	}
	b.WriteString(transcript)
	b.WriteString("\n\n")
}
