package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/config"
	"github.com/guardline/aegis/pkg/events"
	"github.com/guardline/aegis/pkg/evidence"
	"github.com/guardline/aegis/pkg/httputil"
	"github.com/guardline/aegis/pkg/legal"
	"github.com/guardline/aegis/pkg/oracle"
	"github.com/guardline/aegis/pkg/pipeline"
	"github.com/guardline/aegis/pkg/recall"
	"github.com/guardline/aegis/pkg/session"
	"github.com/guardline/aegis/pkg/severity"
	"github.com/guardline/aegis/pkg/telemetry"
)

const Version = "0.1.0"

// gateway bundles the running pipeline with the handles main needs for
// endpoints and shutdown.
type gateway struct {
	orchestrator *pipeline.Orchestrator
	evidence     evidence.Store
	metrics      *telemetry.Collector
	config       *config.Config
	closers      []func()
}

func (g *gateway) close() {
	for _, fn := range g.closers {
		fn()
	}
}

// newGateway wires every component from config. Optional backends degrade to
// their local fallbacks with a ○ log line; the pipeline always comes up.
func newGateway(ctx context.Context, cfg *config.Config) (*gateway, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	cfg.MustValidate()

	g := &gateway{metrics: telemetry.NewCollector(), config: cfg}

	// Oracle chain: configured provider backed by heuristics.
	client := oracle.FromConfig(ctx, cfg)

	// Session store: Redis when configured, otherwise process memory.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix, cfg.SessionCap, cfg.SessionTTL)
		if err != nil {
			log.Printf("○ Redis sessions disabled (%v), using in-memory store", err)
		} else {
			log.Printf("✓ Redis sessions enabled (%s)", cfg.RedisAddr)
			sessions = rs
			g.closers = append(g.closers, func() { rs.Close() })
		}
	}
	if sessions == nil {
		ms := session.NewMemoryStore(cfg.SessionCap, session.WithMaxAge(cfg.SessionTTL))
		log.Printf("✓ In-memory sessions (cap %d, ttl %s)", cfg.SessionCap, cfg.SessionTTL)
		sessions = ms
		g.closers = append(g.closers, ms.Close)
	}

	// Evidence store: Postgres when configured, JSONL file otherwise.
	var store evidence.Store
	if cfg.PostgresDSN != "" {
		pg, err := evidence.NewPGStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("○ Postgres evidence disabled (%v), using file store", err)
		} else {
			log.Println("✓ Postgres evidence store enabled")
			store = pg
			g.closers = append(g.closers, pg.Close)
		}
	}
	if store == nil {
		store = evidence.NewFileStore(cfg.EvidenceLogPath)
		log.Printf("✓ File evidence store (%s)", cfg.EvidenceLogPath)
	}
	g.evidence = store

	book, err := legal.NewBook(cfg.LegalSeedPath)
	if err != nil {
		return nil, fmt.Errorf("legal book: %w", err)
	}
	log.Printf("✓ Legal book loaded (%d entries)", book.Len())

	// Alerts: Pub/Sub fans out alongside the process log when configured.
	var emitter events.Emitter = events.NewLogEmitter()
	if cfg.PubSubProject != "" {
		ps, err := events.NewPubSubEmitter(ctx, cfg.PubSubProject, cfg.PubSubTopic)
		if err != nil {
			log.Printf("○ Pub/Sub alerts disabled (%v), log-only", err)
		} else {
			log.Printf("✓ Pub/Sub alerts enabled (%s/%s)", cfg.PubSubProject, cfg.PubSubTopic)
			emitter = events.NewMultiEmitter(emitter, ps)
			g.closers = append(g.closers, func() { ps.Close() })
		}
	}

	// Similar-case recall: opt-in, needs a live embedding endpoint.
	var memory *recall.Memory
	if cfg.EnableRecall {
		m, err := recall.NewWithOllama(ctx, cfg.OllamaURL)
		if err != nil {
			log.Printf("○ Case recall disabled (%v)", err)
		} else {
			log.Println("✓ Case recall enabled (chromem-go + Ollama embeddings)")
			memory = m
		}
	} else {
		log.Println("○ Case recall disabled (AEGIS_ENABLE_RECALL not set)")
	}

	var priority []severity.Category
	for _, c := range cfg.CategoryPriority {
		priority = append(priority, severity.Category(c))
	}

	orch, err := pipeline.New(pipeline.Deps{
		Sessions:     sessions,
		Evidence:     store,
		Legal:        book,
		Threat:       analyzer.NewThreat(client, config.Timeout(cfg.ThreatTimeoutMs)),
		Manipulation: analyzer.NewManipulation(client, config.Timeout(cfg.ManipTimeoutMs)),
		RedFlag:      analyzer.NewRedFlag(client, config.Timeout(cfg.RedFlagTimeoutMs)),
		Panic:        analyzer.NewPanic(client, config.Timeout(cfg.PanicTimeoutMs)),
		Language:     analyzer.NewMultilingual(client, cfg.DefaultLanguage, config.Timeout(cfg.LanguageTimeoutMs)),
		RealityCheck: analyzer.NewRealityCheck(client, config.Timeout(cfg.RealityTimeoutMs)),
		Pool:         httputil.NewSemaphore(cfg.WorkerPoolSize),
		Emitter:      emitter,
		Metrics:      g.metrics,
		Recall:       memory,
		Ranking:      severity.NewRanking(priority),

		EvidenceTimeout:     config.Timeout(cfg.EvidenceTimeoutMs),
		LegalTimeout:        config.Timeout(cfg.LegalTimeoutMs),
		EmergencyMultiplier: cfg.EmergencyMultiplier,
		AlertThreshold:      cfg.AlertSeverityThreshold,
		DefaultJurisdiction: cfg.DefaultJurisdiction,
	})
	if err != nil {
		return nil, err
	}
	g.orchestrator = orch
	return g, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "3000"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "analyze":
		if len(os.Args) < 3 {
			fmt.Println("Usage: aegis analyze <text>")
			os.Exit(1)
		}
		runCLIAnalyze(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Aegis v%s\n", Version)
		fmt.Println("Personal-safety threat analysis gateway")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Aegis v%s - Personal-safety threat analysis gateway\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  aegis serve [port]     Start HTTP server (default: 3000)")
	fmt.Println("  aegis analyze <text>   Analyze one message from the command line")
	fmt.Println("  aegis version          Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  aegis serve 8080")
	fmt.Println("  aegis analyze \"if you leave me you will regret it\"")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  AEGIS_ORACLE_PROVIDER   Classification backend: groq, gemini, openrouter, ollama, none")
	fmt.Println("  AEGIS_ORACLE_API_KEY    API key for cloud providers")
	fmt.Println("  AEGIS_REDIS_ADDR        Redis address for shared session state")
	fmt.Println("  AEGIS_POSTGRES_DSN      Postgres DSN for durable evidence records")
	fmt.Println("  AEGIS_PUBSUB_PROJECT    GCP project for alert publishing")
}

// analyzeRequest is the POST /analyze body.
type analyzeRequest struct {
	EventID      string `json:"event_id"`
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	MediaRef     string `json:"media_ref"`
	Language     string `json:"language"`
	Jurisdiction string `json:"jurisdiction"`
	PanicTrigger bool   `json:"panic_trigger"`
}

func (r *analyzeRequest) toEvent() *analyzer.InputEvent {
	id := r.EventID
	if id == "" {
		id = uuid.NewString()
	}
	sid := r.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}
	return &analyzer.InputEvent{
		ID:               id,
		SessionID:        sid,
		Timestamp:        time.Now().UTC(),
		RawText:          r.Text,
		MediaRef:         r.MediaRef,
		DeclaredLanguage: r.Language,
		Jurisdiction:     r.Jurisdiction,
		PanicTrigger:     r.PanicTrigger,
	}
}

func runHTTPServer(port string) {
	ctx := context.Background()
	g, err := newGateway(ctx, config.NewDefaultConfig())
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}
	defer g.close()

	app := fiber.New(fiber.Config{
		AppName: "Aegis",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Get("/metrics", func(c fiber.Ctx) error {
		return c.JSON(g.metrics.Snapshot())
	})

	// Full pipeline run for one event.
	app.Post("/analyze", func(c fiber.Ctx) error {
		var req analyzeRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		res, err := g.orchestrator.Analyze(c.Context(), req.toEvent())
		if err != nil {
			if errors.Is(err, analyzer.ErrInvalidInput) {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(500).JSON(fiber.Map{"error": "analysis failed"})
		}
		return c.JSON(res)
	})

	// Manual panic trigger; same pipeline, emergency branch forced.
	app.Post("/panic", func(c fiber.Ctx) error {
		var req analyzeRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		req.PanicTrigger = true
		if req.Text == "" {
			req.Text = "panic button"
		}

		res, err := g.orchestrator.Analyze(c.Context(), req.toEvent())
		if err != nil {
			if errors.Is(err, analyzer.ErrInvalidInput) {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(500).JSON(fiber.Map{"error": "analysis failed"})
		}
		return c.JSON(res)
	})

	// Verified evidence retrieval. Corruption is a hard error, never silently
	// repaired data.
	app.Get("/evidence/:eventID", func(c fiber.Ctx) error {
		rec, err := g.evidence.Get(c.Context(), c.Params("eventID"))
		if err != nil {
			switch {
			case errors.Is(err, evidence.ErrNotFound):
				return c.Status(404).JSON(fiber.Map{"error": "no record for event"})
			case errors.Is(err, evidence.ErrCorrupted):
				return c.Status(500).JSON(fiber.Map{"error": "evidence record failed integrity check"})
			default:
				return c.Status(500).JSON(fiber.Map{"error": "evidence store unavailable"})
			}
		}
		return c.JSON(rec)
	})

	log.Printf("Aegis HTTP server starting on :%s", port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health              - Health check")
	log.Printf("  GET  /metrics             - Pipeline metrics snapshot")
	log.Printf("  POST /analyze             - Analyze one event")
	log.Printf("  POST /panic               - Manual panic trigger")
	log.Printf("  GET  /evidence/:eventID   - Verified evidence record")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

func runCLIAnalyze(text string) {
	ctx := context.Background()
	g, err := newGateway(ctx, config.NewDefaultConfig())
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}
	defer g.close()

	req := analyzeRequest{SessionID: "cli", Text: text}
	res, err := g.orchestrator.Analyze(ctx, req.toEvent())
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
