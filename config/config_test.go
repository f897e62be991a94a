package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/pipekit/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		var cfg ServiceConfig
		cfg.ApplyDefaults()
		if cfg.Name != "pipekit" {
			t.Errorf("expected 'pipekit', got %q", cfg.Name)
		}
		if cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("expected development with debug, got %q debug=%v", cfg.Environment, cfg.Debug)
		}
		if cfg.Pipeline.Name != "pipekit" {
			t.Errorf("expected pipeline name from service name, got %q", cfg.Pipeline.Name)
		}
		if cfg.Pipeline.CancelBehaviour != "uncancellable" {
			t.Errorf("expected uncancellable, got %q", cfg.Pipeline.CancelBehaviour)
		}
		if cfg.Logging.ServiceName != "pipekit" || cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got %+v", cfg.Logging)
		}
		if cfg.Telemetry.Endpoint != "localhost:4318" {
			t.Errorf("expected telemetry defaults, got %+v", cfg.Telemetry)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func() ServiceConfig {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		errMsg string
	}{
		{"valid", func(*ServiceConfig) {}, ""},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, "environment: must be one of"},
		{"invalid behaviour", func(c *ServiceConfig) { c.Pipeline.CancelBehaviour = "abort" }, "pipeline.cancel_behaviour"},
		{"invalid sample rate", func(c *ServiceConfig) { c.Telemetry.SampleRate = 2 }, "telemetry.sample_rate"},
		{"invalid log level", func(c *ServiceConfig) { c.Logging.Level = "loud" }, "logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestLoadWithYAML(t *testing.T) {
	path := writeConfig(t, `
name: orders
environment: staging
logging:
  level: debug
  format: json
pipeline:
  name: order-pipeline
  cancel_behaviour: Convert
  cancellable: true
telemetry:
  enabled: false
  sample_rate: 0.25
`)

	cfg, err := Load("orders", WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected staging, got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("expected debug json logging, got %+v", cfg.Logging)
	}
	if cfg.Pipeline.Name != "order-pipeline" || cfg.Pipeline.CancelBehaviour != "convert" || !cfg.Pipeline.Cancellable {
		t.Errorf("unexpected pipeline section: %+v", cfg.Pipeline)
	}
	if cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("expected sample rate 0.25, got %v", cfg.Telemetry.SampleRate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  cancel_behaviour: discard
`)
	t.Setenv("PIPEKIT_PIPELINE_CANCEL_BEHAVIOUR", "return")
	t.Setenv("PIPEKIT_LOGGING_LEVEL", "warn")
	t.Setenv("LOGGING_LEVEL", "trace")

	cfg, err := Load("pipekit", WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.CancelBehaviour != "return" {
		t.Errorf("expected env override 'return', got %q", cfg.Pipeline.CancelBehaviour)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected only prefixed variables to apply, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PIPEKIT_PIPELINE_NAME=from-env-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PIPEKIT_PIPELINE_NAME") })

	cfg, err := Load("pipekit", WithConfigFile(filepath.Join(dir, "missing.yml")), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.Name != "from-env-file" {
		t.Errorf("expected name from .env, got %q", cfg.Pipeline.Name)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  cancel_behaviour: sometimes
`)
	_, err := Load("pipekit", WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeConfig(t, "pipeline: [unclosed")

	var cfg ServiceConfig
	if err := LoadConfig("pipekit", &cfg, WithConfigFile(path)); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg ServiceConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]bool
		wantCfg   string
		wantEnv   string
		overrides LoaderConfig
	}{
		{
			name:    "service file in working directory",
			files:   map[string]bool{"./pipekit.yml": true, "./config.yml": true, ".env": true},
			wantCfg: "./pipekit.yml",
			wantEnv: ".env",
		},
		{
			name:    "cmd directory",
			files:   map[string]bool{"./cmd/pipekit/config.yml": true, "./cmd/pipekit/.env.pipekit": true},
			wantCfg: "./cmd/pipekit/config.yml",
			wantEnv: "./cmd/pipekit/.env.pipekit",
		},
		{
			name:      "explicit paths win",
			files:     map[string]bool{"./pipekit.yml": true},
			wantCfg:   "/etc/pipekit.yml",
			wantEnv:   "/etc/pipekit.env",
			overrides: LoaderConfig{ConfigFile: "/etc/pipekit.yml", EnvFile: "/etc/pipekit.env"},
		},
		{
			name:  "nothing found",
			files: map[string]bool{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: tc.files}}
			files := resolver.ResolveFiles("pipekit", tc.overrides)
			if files.ConfigFile != tc.wantCfg {
				t.Errorf("expected config file %q, got %q", tc.wantCfg, files.ConfigFile)
			}
			if files.EnvFile != tc.wantEnv {
				t.Errorf("expected env file %q, got %q", tc.wantEnv, files.EnvFile)
			}
		})
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("PIPELINE_CANCEL_BEHAVIOUR")
	want := map[string]bool{
		"pipeline_cancel_behaviour": true,
		"pipeline.cancel.behaviour": true,
		"pipeline.cancel_behaviour": true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %v", len(want), got)
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
	}

	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("expected [name], got %v", got)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getwd() (string, error)    { return "/mock", nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
