package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8500 {
		t.Errorf("default port: got %d", cfg.Port)
	}
	if cfg.EngineSlots != 1 {
		t.Errorf("default engine slots: got %d", cfg.EngineSlots)
	}
	if cfg.InferenceTimeout != 60*time.Second {
		t.Errorf("default inference timeout: got %v", cfg.InferenceTimeout)
	}
	if cfg.MinRadiusRatio != 0.15 {
		t.Errorf("default min radius ratio: got %g", cfg.MinRadiusRatio)
	}
	if cfg.Addr() != "0.0.0.0:8500" {
		t.Errorf("default addr: got %s", cfg.Addr())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OTOSIGHT_HOST", "127.0.0.1")
	t.Setenv("OTOSIGHT_PORT", "9100")
	t.Setenv("OTOSIGHT_INFERENCE_URL", "http://model:9000")
	t.Setenv("OTOSIGHT_INFERENCE_TIMEOUT", "30s")
	t.Setenv("OTOSIGHT_ENGINE_SLOTS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9100" {
		t.Errorf("addr: got %s", cfg.Addr())
	}
	if cfg.InferenceURL != "http://model:9000" {
		t.Errorf("inference URL: got %s", cfg.InferenceURL)
	}
	if cfg.InferenceTimeout != 30*time.Second {
		t.Errorf("timeout: got %v", cfg.InferenceTimeout)
	}
	if cfg.EngineSlots != 4 {
		t.Errorf("engine slots: got %d", cfg.EngineSlots)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"OTOSIGHT_PORT", "not-a-number"},
		{"OTOSIGHT_PORT", "70000"},
		{"OTOSIGHT_ENGINE_SLOTS", "0"},
		{"OTOSIGHT_MIN_RADIUS_RATIO", "1.5"},
		{"OTOSIGHT_INFERENCE_TIMEOUT", "sixty"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s must be rejected", tc.key, tc.value)
			}
		})
	}
}
