package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Login response modes supported by the deployment.
const (
	LoginModeToken  = "token"
	LoginModeDirect = "direct"
)

const (
	defaultTokenTTLMinutes  = 60
	defaultDirectoryURL     = "http://localhost:8096"
	defaultDirectoryTimeout = 10 * time.Second
	defaultHTTPAddr         = ":8080"

	// minSecretBytes is the smallest acceptable signing key after base64
	// decoding (256 bits).
	minSecretBytes = 32
)

// Config holds the full startup configuration of the auth service.
// It is read once from the environment and treated as immutable afterwards.
type Config struct {
	// Token signing
	SigningSecret []byte
	TokenTTL      time.Duration

	// Login response strategy: LoginModeToken or LoginModeDirect.
	LoginMode string

	// Supervisors directory
	DirectoryBaseURL string
	DirectoryToken   string
	DirectoryTimeout time.Duration

	// Storage. Empty DSN selects the in-memory store.
	PostgresDSN string

	// Server
	HTTPAddr string
}

// Load reads configuration from environment variables. The signing secret is
// mandatory and must decode to at least 256 bits; everything else has a
// working local default.
func Load() (*Config, error) {
	cfg := &Config{
		TokenTTL:         defaultTokenTTLMinutes * time.Minute,
		LoginMode:        LoginModeToken,
		DirectoryBaseURL: defaultDirectoryURL,
		DirectoryTimeout: defaultDirectoryTimeout,
		HTTPAddr:         defaultHTTPAddr,
	}

	rawSecret := strings.TrimSpace(os.Getenv("OPS_AUTH_SECRET"))
	if rawSecret == "" {
		return nil, fmt.Errorf("missing required environment variable OPS_AUTH_SECRET")
	}
	secret, err := base64.StdEncoding.DecodeString(rawSecret)
	if err != nil {
		return nil, fmt.Errorf("OPS_AUTH_SECRET must be base64-encoded: %w", err)
	}
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("OPS_AUTH_SECRET decodes to %d bytes, need at least %d", len(secret), minSecretBytes)
	}
	cfg.SigningSecret = secret

	if v := os.Getenv("OPS_TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("OPS_TOKEN_TTL_MINUTES must be a positive integer, got %q", v)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if v := strings.TrimSpace(strings.ToLower(os.Getenv("OPS_LOGIN_MODE"))); v != "" {
		if v != LoginModeToken && v != LoginModeDirect {
			return nil, fmt.Errorf("OPS_LOGIN_MODE must be %q or %q, got %q", LoginModeToken, LoginModeDirect, v)
		}
		cfg.LoginMode = v
	}

	if v := strings.TrimSpace(os.Getenv("SUPERVISORS_SVC_URL")); v != "" {
		cfg.DirectoryBaseURL = strings.TrimRight(v, "/")
	}
	cfg.DirectoryToken = strings.TrimSpace(os.Getenv("SUPERVISORS_SVC_TOKEN"))

	if v := os.Getenv("SUPERVISORS_SVC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SUPERVISORS_SVC_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.DirectoryTimeout = d
	}

	cfg.PostgresDSN = os.Getenv("OPS_PG_DSN")

	if v := os.Getenv("OPS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	return cfg, nil
}
