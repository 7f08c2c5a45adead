// Package config loads tool configuration from file, environment and
// defaults. Environment variables override the file; both override defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/grovevc/grove/pkg/logging"
)

const (
	ConfigName      = ".grove"
	EnvPrefix       = "GROVE"
	DefaultRevset   = "::"
	DefaultUserName = "(no name configured)"

	defaultRepositoryPath = ".grove"
	defaultLoggingFormat  = "text"
	defaultLoggingLevel   = "none"
	defaultLoggingOutput  = "-"
)

// Config is the resolved tool configuration
type Config struct {
	User struct {
		Name  string `mapstructure:"name"`
		Email string `mapstructure:"email"`
	} `mapstructure:"user"`
	UI struct {
		DefaultRevset string `mapstructure:"default_revset"`
	} `mapstructure:"ui"`
	Repository struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"repository"`
	Logging struct {
		Format        string   `mapstructure:"format"`
		Level         string   `mapstructure:"level"`
		Output        []string `mapstructure:"output"`
		FileMaxSizeMB int      `mapstructure:"file_max_size_mb"`
		FilesKeep     int      `mapstructure:"files_keep"`
	} `mapstructure:"logging"`
}

func setDefaults() {
	viper.SetDefault("user.name", DefaultUserName)
	viper.SetDefault("user.email", "")
	viper.SetDefault("ui.default_revset", DefaultRevset)
	viper.SetDefault("repository.path", defaultRepositoryPath)
	viper.SetDefault("logging.format", defaultLoggingFormat)
	viper.SetDefault("logging.level", defaultLoggingLevel)
	viper.SetDefault("logging.output", []string{defaultLoggingOutput})
}

// Load reads configuration. An explicit file path must exist; the implicit
// home-directory file is optional.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		viper.SetConfigName(ConfigName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// SetupLogging applies the logging section to the process-wide logger
func (c *Config) SetupLogging() {
	logging.SetOutputFormat(c.Logging.Format)
	logging.SetOutputs(c.Logging.Output, c.Logging.FileMaxSizeMB, c.Logging.FilesKeep)
	logging.SetLevel(c.Logging.Level)
}
