package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Web    WebConfig
	Face   FaceConfig
	Enroll EnrollConfig
}

type WebConfig struct {
	Port          int
	Host          string
	SessionSecret string // secret for signing session cookies
}

type FaceConfig struct {
	CascadePath string // path to the frontal face Haar cascade XML file
}

type EnrollConfig struct {
	MaxUploadBytes int64         // multipart upload limit for capture submissions
	MaxImageSize   int           // maximum dimension (width or height) kept for processing
	SessionTTL     time.Duration // idle expiry for wizard sessions
}

const (
	// DefaultCascadePath is where the frontal face cascade is expected
	// when FACE_CASCADE_PATH is not set.
	DefaultCascadePath = "models/haarcascade_frontalface_default.xml"

	// DefaultMaxImageSize caps the larger dimension of a stored capture.
	DefaultMaxImageSize = 1920

	// DefaultMaxUploadBytes limits a single capture upload (16 MB).
	DefaultMaxUploadBytes = 16 << 20
)

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Port:          envInt("WEB_PORT", 8080),
			Host:          envString("WEB_HOST", "0.0.0.0"),
			SessionSecret: os.Getenv("WEB_SESSION_SECRET"),
		},
		Face: FaceConfig{
			CascadePath: envString("FACE_CASCADE_PATH", DefaultCascadePath),
		},
		Enroll: EnrollConfig{
			MaxUploadBytes: int64(envInt("ENROLL_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
			MaxImageSize:   envInt("ENROLL_MAX_IMAGE_SIZE", DefaultMaxImageSize),
			SessionTTL:     time.Duration(envInt("ENROLL_SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
	}
}
