// Package config loads service settings from the environment, with an
// optional .env file for local development. All values have working defaults
// so the service starts with nothing but an inference endpoint configured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	// Host and Port form the HTTP listen address.
	Host string
	Port int

	// InferenceURL is the base URL of the detection runtime sidecar.
	InferenceURL string
	// InferenceTimeout bounds one end-to-end inference call.
	InferenceTimeout time.Duration

	// Device and ImgSize are reported through /api/info; they describe the
	// runtime the sidecar was launched with.
	Device  string
	ImgSize int

	// EngineSlots caps concurrent inference calls. The default of 1
	// serializes access for runtimes that are not reentrant.
	EngineSlots int

	// MinRadiusRatio is the cropper's plausibility floor, as a fraction of
	// the smaller image dimension.
	MinRadiusRatio float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:         envStr("OTOSIGHT_HOST", "0.0.0.0"),
		InferenceURL: envStr("OTOSIGHT_INFERENCE_URL", "http://127.0.0.1:9000"),
		Device:       envStr("OTOSIGHT_DEVICE", "cpu"),
	}

	var err error
	if cfg.Port, err = envInt("OTOSIGHT_PORT", 8500); err != nil {
		return nil, err
	}
	if cfg.ImgSize, err = envInt("OTOSIGHT_IMG_SIZE", 640); err != nil {
		return nil, err
	}
	if cfg.EngineSlots, err = envInt("OTOSIGHT_ENGINE_SLOTS", 1); err != nil {
		return nil, err
	}
	if cfg.MinRadiusRatio, err = envFloat("OTOSIGHT_MIN_RADIUS_RATIO", 0.15); err != nil {
		return nil, err
	}
	if cfg.InferenceTimeout, err = envDuration("OTOSIGHT_INFERENCE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("OTOSIGHT_PORT out of range: %d", cfg.Port)
	}
	if cfg.EngineSlots < 1 {
		return nil, fmt.Errorf("OTOSIGHT_ENGINE_SLOTS must be at least 1, got %d", cfg.EngineSlots)
	}
	if cfg.MinRadiusRatio <= 0 || cfg.MinRadiusRatio >= 1 {
		return nil, fmt.Errorf("OTOSIGHT_MIN_RADIUS_RATIO must be in (0,1), got %g", cfg.MinRadiusRatio)
	}

	return cfg, nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
