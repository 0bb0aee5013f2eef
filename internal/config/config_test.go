package config

import (
	"strconv"
	"testing"
)

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend struct {
	data map[string]any
}

func (b *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	if s, ok := v.(string); ok {
		return s, true, nil
	}
	return "", false, nil
}

func (b *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	switch val := v.(type) {
	case int:
		return val, true, nil
	case string:
		i, err := strconv.Atoi(val)
		return i, true, err
	}
	return 0, false, nil
}

func (b *mapBackend) SetString(key, val string) error {
	b.data[key] = val
	return nil
}

func (b *mapBackend) SetInt(key string, val int) error {
	b.data[key] = val
	return nil
}

func (b *mapBackend) Delete(key string) error {
	delete(b.data, key)
	return nil
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.API.BaseURL != "https://universa-api.onrender.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeoutSecs != 10 || cfg.API.ProbeTimeoutSecs != 5 {
		t.Errorf("timeouts = %d/%d, want 10/5", cfg.API.RequestTimeoutSecs, cfg.API.ProbeTimeoutSecs)
	}
	if cfg.API.ForceSimulated {
		t.Error("ForceSimulated default = true, want false")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "" {
		t.Errorf("DataDir = %q, want in-memory default", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoad_BackendValues(t *testing.T) {
	cfg, err := loadWith(&mapBackend{data: map[string]any{
		"api.base_url":             "http://localhost:9000",
		"api.request_timeout_secs": 30,
		"api.force_simulated":      "true",
		"server.port":              8080,
	}})
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeoutSecs != 30 {
		t.Errorf("RequestTimeoutSecs = %d", cfg.API.RequestTimeoutSecs)
	}
	if !cfg.API.ForceSimulated {
		t.Error("ForceSimulated = false, want true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.API.ProbeTimeoutSecs != 5 {
		t.Errorf("ProbeTimeoutSecs = %d, want default 5", cfg.API.ProbeTimeoutSecs)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	t.Setenv("UNIVERSA_API_URL", "http://env-wins:1234")
	t.Setenv("UNIVERSA_API_REQUEST_TIMEOUT_SECS", "7")
	t.Setenv("UNIVERSA_USE_MOCK_API", "1")

	cfg, err := loadWith(&mapBackend{data: map[string]any{
		"api.base_url":             "http://backend-loses:9000",
		"api.request_timeout_secs": 30,
	}})
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.API.BaseURL != "http://env-wins:1234" {
		t.Errorf("BaseURL = %q, env must win", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeoutSecs != 7 {
		t.Errorf("RequestTimeoutSecs = %d, env must win", cfg.API.RequestTimeoutSecs)
	}
	if !cfg.API.ForceSimulated {
		t.Error("ForceSimulated = false, UNIVERSA_USE_MOCK_API=1 must enable it")
	}
}

func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	t.Setenv("UNIVERSA_SERVER_PORT", "not-a-port")
	t.Setenv("UNIVERSA_USE_MOCK_API", "maybe")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, unparseable env must fall back to default", cfg.Server.Port)
	}
	if cfg.API.ForceSimulated {
		t.Error("ForceSimulated = true, unparseable env must fall back to default")
	}
}

func TestShowAll(t *testing.T) {
	cfg, _ := loadWith(&mapBackend{data: map[string]any{}})

	infos := ShowAll(cfg)
	if len(infos) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(ValidKeys()))
	}
	byKey := map[string]KeyInfo{}
	for _, info := range infos {
		byKey[info.Key] = info
	}
	if got := byKey["api.base_url"]; got.Value != "https://universa-api.onrender.com" || got.EnvVar != "UNIVERSA_API_URL" {
		t.Errorf("api.base_url info = %+v", got)
	}
	if got := byKey["server.port"]; got.Value != "8000" {
		t.Errorf("server.port info = %+v", got)
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	want := map[string]bool{
		"api.base_url":             true,
		"api.request_timeout_secs": true,
		"api.probe_timeout_secs":   true,
		"api.force_simulated":      true,
		"server.port":              true,
		"storage.data_dir":         true,
		"log.level":                true,
	}
	if len(keys) != len(want) {
		t.Fatalf("ValidKeys() = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}
