package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger writing to stdout.
func New(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a logger writing to out. When LogDir is set, output is
// also written to a rotated app.log inside it.
func NewWithWriter(cfg *config.Config, out io.Writer) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.LogDir == "" {
		log.SetOutput(out)
		return log, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.LogDir, os.ModePerm); err != nil {
		return nil, nil, errors.Wrap(err, "create log directory")
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	log.SetOutput(io.MultiWriter(out, logFile))
	return log, logFile, nil
}
