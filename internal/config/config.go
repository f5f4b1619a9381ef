package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings shared by the importer and the API server.
// Values are read from app.env and can be overridden by environment variables.
type Config struct {
	DBSource      string `mapstructure:"DB_SOURCE"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	// ImportTrim strips whitespace from every cell before decoding.
	ImportTrim bool `mapstructure:"IMPORT_TRIM"`
	// ImportBaseDir restricts HTTP-triggered imports to files below it.
	// Empty means no restriction; the server logs a warning at startup.
	ImportBaseDir string `mapstructure:"IMPORT_BASE_DIR"`
}

// LoadConfig reads app.env from path. A missing file is not an error; the
// defaults and the environment are used instead.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("IMPORT_TRIM", true)
	v.SetDefault("IMPORT_BASE_DIR", "imports")

	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}

	return config, nil
}
