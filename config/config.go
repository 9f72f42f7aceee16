package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
	Version         string

	// Logging
	LogDir    string
	LogLevel  string
	LogFormat string

	CORS      CORSConfig
	RateLimit RateLimitConfig
	YouTube   YouTubeConfig
	Gemini    GeminiConfig
	Prompt    PromptConfig
	Archive   ArchiveConfig
}

type CORSConfig struct {
	// AllowedOrigin is either "*" or an origin prefix. A request Origin that
	// starts with the prefix is echoed back, anything else gets the prefix.
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
}

type YouTubeConfig struct {
	OEmbedURL         string
	TimedTextURL      string
	ThumbnailTemplate string
	WatchURLTemplate  string
	Languages         []string
	MinCaptionLength  int
	FetchTimeout      time.Duration
	EnableDetails     bool
}

type GeminiConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

type PromptConfig struct {
	Style          string
	LabelThreshold int
	MergeVideoInfo bool
	ChunkSize      int
}

type ArchiveConfig struct {
	DBPath string
	Spaces SpacesConfig
}

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

// Enabled reports whether enough credentials are present to mirror summaries.
func (s SpacesConfig) Enabled() bool {
	return s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

const (
	StyleEnglish     = "en"
	StyleTraditional = "zh-TW"
	StyleMarkdown    = "markdown"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 90*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Debug:           getEnvAsBool("DEBUG", false),
		Version:         getEnv("VERSION", "1.0.0"),

		LogDir:    getEnv("LOG_DIR", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORS: CORSConfig{
			AllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
			AllowedMethods: getEnvAsStringSlice("CORS_ALLOWED_METHODS", []string{"POST", "OPTIONS"}),
			AllowedHeaders: getEnvAsStringSlice(
				"CORS_ALLOWED_HEADERS",
				[]string{"Content-Type", "Accept", "X-Requested-With"},
			),
			MaxAge: getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		YouTube: YouTubeConfig{
			OEmbedURL:         getEnv("YOUTUBE_OEMBED_URL", "https://www.youtube.com/oembed"),
			TimedTextURL:      getEnv("YOUTUBE_TIMEDTEXT_URL", "https://www.youtube.com/api/timedtext"),
			ThumbnailTemplate: getEnv("YOUTUBE_THUMBNAIL_TEMPLATE", "https://i.ytimg.com/vi/%s/hqdefault.jpg"),
			WatchURLTemplate:  getEnv("YOUTUBE_WATCH_TEMPLATE", "https://www.youtube.com/watch?v=%s"),
			Languages: getEnvAsStringSlice(
				"YOUTUBE_CAPTION_LANGUAGES",
				[]string{"zh-TW", "zh-Hant", "zh-CN", "zh", "en"},
			),
			MinCaptionLength: getEnvAsInt("YOUTUBE_MIN_CAPTION_LENGTH", 50),
			FetchTimeout:     getEnvAsDuration("YOUTUBE_FETCH_TIMEOUT", 10*time.Second),
			EnableDetails:    getEnvAsBool("YOUTUBE_DETAILS_ENABLED", false),
		},

		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			BaseURL:           getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:           getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			RequestsPerMinute: getEnvAsInt("GEMINI_RPM", 0),
		},

		Prompt: PromptConfig{
			Style:          getEnv("PROMPT_STYLE", StyleMarkdown),
			LabelThreshold: getEnvAsInt("PROMPT_LABEL_THRESHOLD", 100),
			MergeVideoInfo: getEnvAsBool("MERGE_VIDEO_INFO", true),
			ChunkSize:      getEnvAsInt("DIGEST_CHUNK_SIZE", 30000),
		},

		Archive: ArchiveConfig{
			DBPath: getEnv("ARCHIVE_DB_PATH", ""),
			Spaces: SpacesConfig{
				AccessKey: getEnv("SPACES_ACCESS_KEY", ""),
				SecretKey: getEnv("SPACES_SECRET_KEY", ""),
				Region:    getEnv("SPACES_REGION", "us-east-1"),
				Endpoint:  getEnv("SPACES_ENDPOINT", ""),
				Bucket:    getEnv("SPACES_BUCKET", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("read and write timeouts must be positive")
	}
	if c.YouTube.FetchTimeout <= 0 {
		return errors.New("youtube fetch timeout must be positive")
	}
	if c.Gemini.Timeout <= 0 {
		return errors.New("gemini timeout must be positive")
	}
	if len(c.YouTube.Languages) == 0 {
		return errors.New("at least one caption language is required")
	}
	if c.Prompt.ChunkSize < 1000 {
		return errors.Errorf("digest chunk size %d is too small", c.Prompt.ChunkSize)
	}

	switch c.Prompt.Style {
	case StyleEnglish, StyleTraditional, StyleMarkdown:
	default:
		return errors.Errorf("unknown prompt style %q", c.Prompt.Style)
	}

	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{filepath.Dir(c.Archive.DBPath), "archive directory"},
	}
	for _, p := range paths {
		if p.path == "" || p.path == "." {
			continue
		}
		if err := os.MkdirAll(p.path, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", p.name)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		warnInvalid(key, value, defaultValue, "Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		warnInvalid(key, value, defaultValue, "Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue, "Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func warnInvalid(key, value string, defaultValue interface{}, msg string) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warn(msg)
}
