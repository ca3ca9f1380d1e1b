package config

import (
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.DefaultLanguage)
	}
	if cfg.SessionCap != 25 {
		t.Errorf("SessionCap = %d, want 25", cfg.SessionCap)
	}
	if cfg.EmergencyMultiplier != 3 {
		t.Errorf("EmergencyMultiplier = %d, want 3", cfg.EmergencyMultiplier)
	}
	if cfg.PanicTimeoutMs >= cfg.ThreatTimeoutMs {
		t.Errorf("panic timeout %d should be shorter than threat timeout %d",
			cfg.PanicTimeoutMs, cfg.ThreatTimeoutMs)
	}
	if cfg.AlertSeverityThreshold != 4 {
		t.Errorf("AlertSeverityThreshold = %d, want 4", cfg.AlertSeverityThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AEGIS_SESSION_CAP", "10")
	t.Setenv("AEGIS_DEFAULT_LANGUAGE", "hi")
	t.Setenv("AEGIS_ENABLE_RECALL", "true")
	t.Setenv("AEGIS_CATEGORY_PRIORITY", "manipulation, violence")

	cfg := NewDefaultConfig()
	if cfg.SessionCap != 10 {
		t.Errorf("SessionCap = %d, want 10", cfg.SessionCap)
	}
	if cfg.DefaultLanguage != "hi" {
		t.Errorf("DefaultLanguage = %q, want hi", cfg.DefaultLanguage)
	}
	if !cfg.EnableRecall {
		t.Error("EnableRecall = false, want true")
	}
	want := []string{"manipulation", "violence"}
	if len(cfg.CategoryPriority) != len(want) {
		t.Fatalf("CategoryPriority = %v, want %v", cfg.CategoryPriority, want)
	}
	for i := range want {
		if cfg.CategoryPriority[i] != want[i] {
			t.Errorf("CategoryPriority[%d] = %q, want %q", i, cfg.CategoryPriority[i], want[i])
		}
	}
}

func TestEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("AEGIS_SESSION_CAP", "not-a-number")
	t.Setenv("AEGIS_ENABLE_LOCAL_MODEL", "maybe")

	cfg := NewDefaultConfig()
	if cfg.SessionCap != 25 {
		t.Errorf("SessionCap = %d, want default 25 on parse failure", cfg.SessionCap)
	}
	if cfg.EnableLocalModel {
		t.Error("EnableLocalModel = true, want default false on parse failure")
	}
}

func TestClampTimeouts(t *testing.T) {
	t.Setenv("AEGIS_PANIC_TIMEOUT_MS", "1")
	cfg := NewDefaultConfig()
	if cfg.PanicTimeoutMs != 50 {
		t.Errorf("PanicTimeoutMs = %d, want clamped to 50", cfg.PanicTimeoutMs)
	}
}

func TestTimeout(t *testing.T) {
	if got := Timeout(1500); got != 1500*time.Millisecond {
		t.Errorf("Timeout(1500) = %v, want 1.5s", got)
	}
}

func TestProviderDetection(t *testing.T) {
	t.Setenv("AEGIS_ORACLE_PROVIDER", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("AEGIS_ORACLE_API_KEY", "")

	if cfg := NewDefaultConfig(); cfg.OracleProvider != ProviderNone {
		t.Errorf("OracleProvider = %q, want none with no keys", cfg.OracleProvider)
	}

	t.Setenv("GROQ_API_KEY", "gsk_test")
	if cfg := NewDefaultConfig(); cfg.OracleProvider != ProviderGroq {
		t.Errorf("OracleProvider = %q, want groq", cfg.OracleProvider)
	}

	t.Setenv("AEGIS_ORACLE_PROVIDER", "gemini")
	if cfg := NewDefaultConfig(); cfg.OracleProvider != ProviderGemini {
		t.Errorf("OracleProvider = %q, want pinned gemini", cfg.OracleProvider)
	}
}

func TestValidateDevIsLenient(t *testing.T) {
	t.Setenv("AEGIS_ENV", "development")
	cfg := NewDefaultConfig()
	cfg.OracleProvider = ProviderGroq
	cfg.OracleAPIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() in dev = %v, want nil", err)
	}
}

func TestValidateProductionIsStrict(t *testing.T) {
	t.Setenv("AEGIS_ENV", "production")
	cfg := NewDefaultConfig()
	cfg.OracleProvider = ProviderGroq
	cfg.OracleAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() in production = nil, want error for missing oracle key")
	}
}
