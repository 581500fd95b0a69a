package client

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blacktop/lipost/internal/linkedin"
)

const (
	envAccessToken = "LINKEDIN_ACCESS_TOKEN"
	envVersion     = "LINKEDIN_VERSION"
	envAPIURL      = "LINKEDIN_API_URL"
	envTimeout     = "LINKEDIN_TIMEOUT"

	providerName = "linkedin"

	// DefaultBaseURL is the root of LinkedIn's versioned REST API.
	DefaultBaseURL = "https://api.linkedin.com/rest"
	// DefaultVersion is sent as LinkedIn-Version when none is configured.
	DefaultVersion = "202410"

	defaultTimeout = 30 * time.Second
)

var versionPattern = regexp.MustCompile(`^\d{6}(\.\d{2})?$`)

// Config holds what the versioned client needs to reach the API.
type Config struct {
	AccessToken string
	Version     string
	BaseURL     string
	Timeout     time.Duration
}

// LoadConfig overlays environment variables on base and fills in defaults.
func LoadConfig(base Config) (Config, error) {
	cfg := Config{
		AccessToken: strings.TrimSpace(os.Getenv(envAccessToken)),
		Version:     strings.TrimSpace(os.Getenv(envVersion)),
		BaseURL:     strings.TrimSpace(os.Getenv(envAPIURL)),
	}

	if cfg.AccessToken == "" {
		cfg.AccessToken = strings.TrimSpace(base.AccessToken)
	}
	if cfg.Version == "" {
		cfg.Version = strings.TrimSpace(base.Version)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = strings.TrimSpace(base.BaseURL)
	}

	if raw := strings.TrimSpace(os.Getenv(envTimeout)); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envTimeout, err)
		}
		cfg.Timeout = timeout
	} else {
		cfg.Timeout = base.Timeout
	}

	if cfg.AccessToken == "" {
		return Config{}, linkedin.MissingEnvError{Provider: providerName, Variables: []string{envAccessToken}}
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Validate checks a fully populated config.
func (c Config) Validate() error {
	if c.AccessToken == "" {
		return linkedin.ValidationError{Provider: providerName, Reason: "access token is required"}
	}
	if !versionPattern.MatchString(c.Version) {
		return linkedin.ValidationError{Provider: providerName, Reason: fmt.Sprintf("version %q must be YYYYMM", c.Version)}
	}
	if !strings.HasPrefix(c.BaseURL, "https://") && !strings.HasPrefix(c.BaseURL, "http://") {
		return linkedin.ValidationError{Provider: providerName, Reason: fmt.Sprintf("base url %q must be http(s)", c.BaseURL)}
	}
	return nil
}
