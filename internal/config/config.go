// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/i18n"
	"github.com/iwvelando/cone-expert/pkg/units"
	"github.com/iwvelando/cone-expert/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for cone-expert.
type Configuration struct {
	Logging  LoggingConfig `yaml:"logging,omitempty"`
	Output   OutputConfig  `yaml:"output,omitempty"`
	Units    UnitsConfig   `yaml:"units,omitempty"`
	History  HistoryConfig `yaml:"history,omitempty"`
	Language string        `yaml:"language,omitempty"`
	Server   ServerConfig  `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// UnitsConfig selects the unit inputs are read in and results shown in.
type UnitsConfig struct {
	Default string `yaml:"default,omitempty"` // mm, in
}

// HistoryConfig controls the history display window.
type HistoryConfig struct {
	DisplayLimit int `yaml:"displayLimit,omitempty"`
}

// ServerConfig holds the HTTP API settings used by the serve command.
type ServerConfig struct {
	Address     string        `yaml:"address,omitempty"`
	MaxBodySize string        `yaml:"maxBodySize,omitempty"`
	SessionTTL  time.Duration `yaml:"sessionTTL,omitempty"`
}

// NewViper returns a viper instance with every key defaulted and environment
// overrides enabled (CONE_LOGGING_LEVEL, CONE_UNITS_DEFAULT, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("units.default", string(units.Millimeter))
	v.SetDefault("history.displayLimit", constants.DefaultHistoryDisplayLimit)
	v.SetDefault("language", constants.DefaultLanguage)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("server.sessionTTL", constants.DefaultSessionTTL)
	return v
}

// LoadConfiguration reads the YAML file at configPath into v and decodes the
// result. A missing file is not an error: defaults, environment and any flags
// already bound to v still apply.
func LoadConfiguration(v *viper.Viper, configPath string) (*Configuration, error) {
	if v == nil {
		v = NewViper()
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r on top of the defaults.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := NewViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// DefaultUnit returns the configured unit, falling back to millimeters.
func (c *Configuration) DefaultUnit() units.Unit {
	u, err := units.Parse(c.Units.Default)
	if err != nil {
		return units.Millimeter
	}
	return u
}

// HistoryLimit returns the configured display window, falling back to the default.
func (c *Configuration) HistoryLimit() int {
	if c.History.DisplayLimit <= 0 {
		return constants.DefaultHistoryDisplayLimit
	}
	return c.History.DisplayLimit
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if _, err := units.Parse(c.Units.Default); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v; using %s", err, units.Millimeter))
	}
	if c.History.DisplayLimit <= 0 {
		warnings = append(warnings, fmt.Sprintf("history display limit %d is not positive; using %d",
			c.History.DisplayLimit, constants.DefaultHistoryDisplayLimit))
	}
	if c.Language != "" && !i18n.Supported(c.Language) {
		warnings = append(warnings, fmt.Sprintf("language %q is not supported; using %s",
			c.Language, constants.DefaultLanguage))
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Server.SessionTTL < 0 {
		warnings = append(warnings, fmt.Sprintf("server session TTL %s is negative; using %s",
			c.Server.SessionTTL, constants.DefaultSessionTTL))
	}

	return warnings
}
