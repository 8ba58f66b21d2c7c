package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/cone-expert/internal/config"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address      string               `yaml:"address"`
	MaxBodySize  string               `yaml:"maxBodySize"`
	SessionTTL   string               `yaml:"sessionTTL"`
	DefaultUnit  string               `yaml:"defaultUnit"`
	HistoryLimit int                  `yaml:"historyLimit"`
	Logging      config.LoggingConfig `yaml:"logging"`
	bodySize     int64
	sessionTTL   time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:      constants.DefaultServerAddress,
		MaxBodySize:  fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		SessionTTL:   constants.DefaultSessionTTL.String(),
		DefaultUnit:  constants.CanonicalUnit,
		HistoryLimit: constants.DefaultHistoryDisplayLimit,
		bodySize:     constants.DefaultMaxBodySizeBytes,
		sessionTTL:   constants.DefaultSessionTTL,
	}
}

// FromConfiguration derives the server settings from the application configuration.
func FromConfiguration(conf *config.Configuration) (*Config, error) {
	cfg := DefaultConfig()
	if conf == nil {
		return cfg, nil
	}

	cfg.Address = conf.Server.Address
	cfg.MaxBodySize = conf.Server.MaxBodySize
	if conf.Server.SessionTTL > 0 {
		cfg.SessionTTL = conf.Server.SessionTTL.String()
	}
	cfg.DefaultUnit = string(conf.DefaultUnit())
	cfg.HistoryLimit = conf.HistoryLimit()
	cfg.Logging = conf.Logging

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySize
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySize = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// SessionTimeout returns how long an idle session is kept.
func (c *Config) SessionTimeout() time.Duration {
	return c.sessionTTL
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = constants.DefaultHistoryDisplayLimit
	}
	if strings.TrimSpace(c.DefaultUnit) == "" {
		c.DefaultUnit = constants.CanonicalUnit
	}

	ttlStr := strings.TrimSpace(c.SessionTTL)
	if ttlStr == "" {
		c.sessionTTL = constants.DefaultSessionTTL
		c.SessionTTL = constants.DefaultSessionTTL.String()
	} else {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return fmt.Errorf("invalid session TTL %q: %w", c.SessionTTL, err)
		}
		if ttl <= 0 {
			ttl = constants.DefaultSessionTTL
		}
		c.sessionTTL = ttl
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySize = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySize = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
