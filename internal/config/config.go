package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Debug           bool
	GeminiAPIKey    string
	GeminiModel     string
	LogLevel        string
	LogFormat       string
	LogFile         string
	MediaPipeScript string
	PythonBin       string
	MaxUploadMB     int64
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("MEDIAPIPE_SCRIPT", "")
	v.SetDefault("PYTHON_BIN", "")
	v.SetDefault("MAX_UPLOAD_MB", 64)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads the environment, and the YAML file named by CONFIG_FILE when
// set. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if f := v.GetString("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", f, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:            v.GetString("PORT"),
		Debug:           v.GetBool("DEBUG"),
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		LogFile:         v.GetString("LOG_FILE"),
		MediaPipeScript: v.GetString("MEDIAPIPE_SCRIPT"),
		PythonBin:       v.GetString("PYTHON_BIN"),
		MaxUploadMB:     v.GetInt64("MAX_UPLOAD_MB"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	if cfg.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}
