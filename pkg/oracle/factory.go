package oracle

import (
	"context"
	"log"

	"github.com/guardline/aegis/pkg/config"
)

// FromConfig builds the oracle stack for the configured provider. The
// heuristic scorer always anchors the chain, so the returned client never
// fails to produce scoring answers. Startup logs follow the availability
// convention: ✓ wired, ○ skipped.
func FromConfig(ctx context.Context, cfg *config.Config) Client {
	heuristic := NewHeuristic()
	var primary Client

	switch cfg.OracleProvider {
	case config.ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.OracleAPIKey, cfg.OracleModel)
		if err != nil {
			log.Printf("[WARN] Gemini oracle unavailable: %v", err)
		} else {
			primary = g
		}
	case config.ProviderOpenRouter, config.ProviderGroq, config.ProviderOllama, config.ProviderCustom:
		primary = NewLLMClient(LLMConfig{
			Provider: Provider(cfg.OracleProvider),
			APIKey:   cfg.OracleAPIKey,
			Model:    cfg.OracleModel,
			BaseURL:  cfg.OracleBaseURL,
		})
	case config.ProviderNone:
		// heuristics only
	}

	if cfg.EnableLocalModel && LocalEnabled() {
		if lc := AutoDetectLocalConfig(); lc != nil {
			local, err := NewLocalClient(*lc)
			if err != nil {
				log.Printf("[WARN] local oracle unavailable: %v", err)
			} else if primary == nil {
				primary = local
			} else {
				// local model answers threat/panic first, remote covers the rest
				primary = NewFallback(local, primary)
			}
		} else {
			log.Printf("[STARTUP] ○ local oracle: no model found on disk")
		}
	}

	if primary == nil {
		log.Printf("[STARTUP] ✓ oracle: heuristic only")
		return heuristic
	}
	log.Printf("[STARTUP] ✓ oracle: %s with heuristic fallback", primary.Name())
	return NewFallback(primary, heuristic)
}
