// Command summarize writes a summary of one YouTube video to a text file.
//
//	summarize [-out dir] [-style en|zh-TW|markdown] [-lang zh-TW,en] <url or video id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/logger"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const separatorWidth = 80

func main() {
	outDir := flag.String("out", ".", "directory to write the summary file to")
	style := flag.String("style", "", "prompt style (en, zh-TW, markdown); defaults to PROMPT_STYLE")
	langs := flag.String("lang", "", "comma separated caption languages in preference order")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <youtube url or video id>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *outDir, *style, *langs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, outDir, style, langs string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if style != "" {
		cfg.Prompt.Style = style
	}
	if langs != "" {
		cfg.YouTube.Languages = splitList(langs)
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	// stdout carries the summary itself.
	log, closer, err := logger.NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "initialize logger")
	}
	defer closer.Close()
	if !cfg.Debug {
		log.SetLevel(logrus.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := summary.NewFromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.WithError(err).Warn("Failed to close summary archive")
		}
	}()

	digest, err := service.Digest(ctx, input)
	if err != nil {
		return err
	}

	filename, err := writeSummary(outDir, digest, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Summary saved to: %s\n\n", filename)
	fmt.Println(strings.Repeat("=", separatorWidth/2))
	fmt.Println(digest.Summary)
	return nil
}

// writeSummary writes the digest under a name derived from the video title,
// falling back to the video ID when the title sanitizes to nothing.
func writeSummary(dir string, d *summary.Digest, now time.Time) (string, error) {
	name := utils.SanitizeFilename(d.VideoInfo.Title)
	if name == "" {
		name = "summary_" + d.VideoInfo.VideoID
	}
	path := filepath.Join(dir, name+".txt")

	var b strings.Builder
	fmt.Fprintln(&b, "YouTube Video Summary")
	fmt.Fprintf(&b, "Title: %s\n", d.VideoInfo.Title)
	fmt.Fprintf(&b, "Video ID: %s\n", d.VideoInfo.VideoID)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Model: %s\n", d.Model)
	fmt.Fprintf(&b, "Source: %s\n\n", d.Source)
	fmt.Fprintln(&b, strings.Repeat("=", separatorWidth))
	fmt.Fprintln(&b)
	b.WriteString(d.Summary)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.Wrapf(err, "write summary file %s", path)
	}
	return path, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
