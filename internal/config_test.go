package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestExportConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExportConfig)
		ok     bool
	}{
		{"defaults", func(*ExportConfig) {}, true},
		{"hex background", func(c *ExportConfig) { c.Background = "#fff" }, true},
		{"named background", func(c *ExportConfig) { c.Background = "white" }, false},
		{"tiny canvas", func(c *ExportConfig) { c.Width = 10 }, false},
		{"zero ratio", func(c *ExportConfig) { c.PixelRatio = 0 }, false},
		{"huge ratio", func(c *ExportConfig) { c.PixelRatio = 8 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Export
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAnalysisConfig_Validation(t *testing.T) {
	cfg := NewDefaultConfig().Analysis
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty model should fail")
	}

	cfg = NewDefaultConfig().Analysis
	cfg.Timeout = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("sub-second timeout should fail")
	}
}

func TestFullConfig_StoragePathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty storage path should fail")
	}
}
