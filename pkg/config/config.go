package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// OracleProvider defines the backend classification service type
type OracleProvider string

const (
	ProviderNone       OracleProvider = "none"       // No oracle, heuristics only
	ProviderOllama     OracleProvider = "ollama"     // Local Ollama server
	ProviderOpenRouter OracleProvider = "openrouter" // OpenRouter (default, has free tier)
	ProviderGroq       OracleProvider = "groq"       // Groq (high-speed inference)
	ProviderGemini     OracleProvider = "gemini"     // Google Gemini API
	ProviderCustom     OracleProvider = "custom"     // Custom OpenAI-compatible endpoint
)

// Config holds global settings for the Aegis gateway.
// All settings can be configured via environment variables or programmatically
type Config struct {
	// === Core Settings ===
	DefaultLanguage     string // BCP-47 tag used when detection and the event both come up empty (default: "en")
	DefaultJurisdiction string // Jurisdiction used when the event carries none (default: "generic")

	// === Oracle Provider Configuration ===
	OracleProvider OracleProvider // Which classification service to use
	OracleAPIKey   string         // API key for cloud providers (env: AEGIS_ORACLE_API_KEY or provider-specific)
	OracleModel    string         // Model identifier
	OracleBaseURL  string         // Custom base URL for self-hosted or custom providers

	// === Stage Timeouts (milliseconds) ===
	// Panic gets the shortest budget; it gates the emergency branch.
	PanicTimeoutMs       int
	LanguageTimeoutMs    int
	ThreatTimeoutMs      int
	ManipTimeoutMs       int
	RedFlagTimeoutMs     int
	EvidenceTimeoutMs    int
	LegalTimeoutMs       int
	RealityTimeoutMs     int
	EmergencyMultiplier  int // Widens evidence/legal budgets on the emergency branch (default: 3)

	// === Session Store ===
	SessionCap  int           // Max recent events / severity trend entries per session (default: 25)
	SessionTTL  time.Duration // Idle session eviction age (default: 24h)
	RedisAddr   string        // When set, sessions live in Redis instead of process memory
	RedisPrefix string        // Key prefix for Redis session entries

	// === Evidence Store ===
	PostgresDSN     string // When set, evidence records go to Postgres
	EvidenceLogPath string // JSONL fallback store path (default: "evidence_records.jsonl")

	// === Legal Book ===
	LegalSeedPath string // Optional YAML law-book file layered over the embedded defaults

	// === Aggregation ===
	CategoryPriority []string // Category tie-break order override, most urgent first

	// === Concurrency ===
	WorkerPoolSize int // Bound on concurrent analyzer calls across all runs (default: 64)

	// === Feature Flags ===
	EnableLocalModel bool // Enable local ONNX classification backend (opt-in)
	EnableRecall     bool // Enable similar-case vector recall (needs Ollama embeddings)
	OllamaURL        string

	// === Alerting ===
	PubSubProject          string // GCP project for alert publishing (empty = log-only alerts)
	PubSubTopic            string
	AlertSeverityThreshold int // Emit an alert when overall severity reaches this (default: 4)
}

// NewDefaultConfig creates a Config with sensible defaults
// All settings can be overridden via environment variables
func NewDefaultConfig() *Config {
	cfg := &Config{
		// Core
		DefaultLanguage:     GetEnv("AEGIS_DEFAULT_LANGUAGE", "en"),
		DefaultJurisdiction: GetEnv("AEGIS_DEFAULT_JURISDICTION", "generic"),

		// Oracle provider - auto-detected from available keys unless pinned
		OracleProvider: detectOracleProvider(),
		OracleAPIKey:   GetEnv("AEGIS_ORACLE_API_KEY", GetEnv("GROQ_API_KEY", GetEnv("GEMINI_API_KEY", os.Getenv("OPENROUTER_API_KEY")))),
		OracleModel:    GetEnv("AEGIS_ORACLE_MODEL", "llama-3.1-8b-instant"),
		OracleBaseURL:  GetEnv("AEGIS_ORACLE_BASE_URL", ""),

		// Stage timeouts
		PanicTimeoutMs:      clampInt(GetEnvInt("AEGIS_PANIC_TIMEOUT_MS", 800), 50, 60000),
		LanguageTimeoutMs:   clampInt(GetEnvInt("AEGIS_LANGUAGE_TIMEOUT_MS", 1500), 50, 60000),
		ThreatTimeoutMs:     clampInt(GetEnvInt("AEGIS_THREAT_TIMEOUT_MS", 4000), 50, 60000),
		ManipTimeoutMs:      clampInt(GetEnvInt("AEGIS_MANIP_TIMEOUT_MS", 4000), 50, 60000),
		RedFlagTimeoutMs:    clampInt(GetEnvInt("AEGIS_REDFLAG_TIMEOUT_MS", 4000), 50, 60000),
		EvidenceTimeoutMs:   clampInt(GetEnvInt("AEGIS_EVIDENCE_TIMEOUT_MS", 2000), 50, 60000),
		LegalTimeoutMs:      clampInt(GetEnvInt("AEGIS_LEGAL_TIMEOUT_MS", 1000), 50, 60000),
		RealityTimeoutMs:    clampInt(GetEnvInt("AEGIS_REALITY_TIMEOUT_MS", 3000), 50, 60000),
		EmergencyMultiplier: clampInt(GetEnvInt("AEGIS_EMERGENCY_MULTIPLIER", 3), 1, 10),

		// Session store
		SessionCap:  clampInt(GetEnvInt("AEGIS_SESSION_CAP", 25), 1, 1000),
		SessionTTL:  time.Duration(GetEnvInt("AEGIS_SESSION_TTL_SECONDS", 86400)) * time.Second,
		RedisAddr:   GetEnv("AEGIS_REDIS_ADDR", ""),
		RedisPrefix: GetEnv("AEGIS_REDIS_PREFIX", "aegis:session:"),

		// Evidence store
		PostgresDSN:     GetEnv("AEGIS_POSTGRES_DSN", ""),
		EvidenceLogPath: GetEnv("AEGIS_EVIDENCE_LOG", "evidence_records.jsonl"),

		// Legal book
		LegalSeedPath: GetEnv("AEGIS_LEGAL_SEED", ""),

		// Aggregation
		CategoryPriority: GetEnvSlice("AEGIS_CATEGORY_PRIORITY", nil),

		// Concurrency
		WorkerPoolSize: clampInt(GetEnvInt("AEGIS_WORKER_POOL", 64), 1, 4096),

		// Feature flags
		EnableLocalModel: GetEnvBool("AEGIS_ENABLE_LOCAL_MODEL", false),
		EnableRecall:     GetEnvBool("AEGIS_ENABLE_RECALL", false),
		OllamaURL:        GetEnv("AEGIS_OLLAMA_URL", "http://localhost:11434"),

		// Alerting
		PubSubProject:          GetEnv("AEGIS_PUBSUB_PROJECT", ""),
		PubSubTopic:            GetEnv("AEGIS_PUBSUB_TOPIC", "aegis-alerts"),
		AlertSeverityThreshold: clampInt(GetEnvInt("AEGIS_ALERT_THRESHOLD", 4), 1, 5),
	}

	return cfg
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// NewLocalConfig creates a Config optimized for local-only operation (no API calls)
// Use this for development, air-gapped environments, or privacy-first deployments
func NewLocalConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.OracleProvider = ProviderOllama
	cfg.OracleBaseURL = "http://localhost:11434/v1"
	cfg.OracleModel = "qwen2.5:7b"
	cfg.OracleAPIKey = "" // Not needed for Ollama
	return cfg
}

// Helper functions for environment variable parsing
// These are exported for use by other packages (e.g., pkg/oracle)

func detectOracleProvider() OracleProvider {
	// Check explicit provider setting first
	if p := os.Getenv("AEGIS_ORACLE_PROVIDER"); p != "" {
		return OracleProvider(p)
	}
	// Auto-detect based on available keys
	if os.Getenv("GROQ_API_KEY") != "" {
		return ProviderGroq
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		return ProviderGemini
	}
	if os.Getenv("OPENROUTER_API_KEY") != "" || os.Getenv("AEGIS_ORACLE_API_KEY") != "" {
		return ProviderOpenRouter
	}
	// Default to heuristics only; the pipeline stays fully functional offline
	return ProviderNone
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

// Timeout converts a millisecond setting into a duration.
func Timeout(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Validate checks that the configuration is internally consistent.
// In production mode (AEGIS_ENV=production) inconsistencies are errors;
// in development they are logged and startup proceeds.
func (c *Config) Validate() error {
	isProduction := strings.ToLower(os.Getenv("AEGIS_ENV")) == "production" ||
		strings.ToLower(os.Getenv("AEGIS_ENV")) == "prod"

	var problems []string

	if c.OracleProvider != ProviderNone && c.OracleProvider != ProviderOllama && c.OracleAPIKey == "" {
		problems = append(problems, fmt.Sprintf("oracle provider %q requires AEGIS_ORACLE_API_KEY", c.OracleProvider))
	}
	if c.PubSubProject != "" && c.PubSubTopic == "" {
		problems = append(problems, "AEGIS_PUBSUB_TOPIC must be set when AEGIS_PUBSUB_PROJECT is")
	}
	if c.PanicTimeoutMs > c.ThreatTimeoutMs {
		problems = append(problems, "panic timeout must not exceed the analyzer timeouts it gates")
	}

	if len(problems) == 0 {
		return nil
	}
	if isProduction {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	for _, p := range problems {
		log.Printf("[STARTUP] Warning: %s", p)
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}
