package oracle

// local.go - Local ONNX text classification backend via Hugot.
//
// Runs fully local, no external API calls. The bundled classification models
// only answer binary danger questions, so this backend serves TaskThreat and
// TaskPanic and reports unavailable for everything else; wrap it with
// NewFallback to cover the remaining tasks.
//
// Build:
// - Standard: go build (uses Go backend, slower but no dependencies)
// - With ORT: go build -tags ORT (uses ONNX Runtime, faster)

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// LocalEnabled reports whether the local ONNX backend should be enabled.
// Default is disabled; set AEGIS_ENABLE_LOCAL_MODEL=true to opt-in.
// This keeps default installs quiet unless explicitly enabled.
func LocalEnabled() bool {
	switch os.Getenv("AEGIS_ENABLE_LOCAL_MODEL") {
	case "1", "true", "TRUE", "yes", "YES", "on", "ON":
		return true
	default:
		return false
	}
}

// LocalConfig configures the local backend.
type LocalConfig struct {
	// ModelPath is the local path to the ONNX model directory.
	// If empty and ModelName is set, the model will be downloaded.
	ModelPath string

	// ModelName is the HuggingFace model name, used to download the model
	// when ModelPath is empty.
	ModelName string

	// OnnxLibraryPath is the path to libonnxruntime.so. Empty means the
	// pure Go backend.
	OnnxLibraryPath string
}

// LocalClient wraps a Hugot text-classification pipeline behind the Client
// interface.
type LocalClient struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.RWMutex
	config   LocalConfig
	ready    bool
}

var _ Client = (*LocalClient)(nil)

// AutoDetectLocalConfig looks for a usable model on disk. Returns nil when
// nothing is found.
func AutoDetectLocalConfig() *LocalConfig {
	if envPath := os.Getenv("AEGIS_LOCAL_MODEL_PATH"); envPath != "" {
		if _, err := os.Stat(filepath.Join(envPath, "model.onnx")); err == nil {
			log.Printf("[INFO] Using local model from AEGIS_LOCAL_MODEL_PATH: %s", envPath)
			return &LocalConfig{
				ModelPath:       envPath,
				OnnxLibraryPath: defaultOnnxPath(),
			}
		}
	}
	if _, err := os.Stat(filepath.Join("./models/classifier", "model.onnx")); err == nil {
		return &LocalConfig{
			ModelPath:       "./models/classifier",
			OnnxLibraryPath: defaultOnnxPath(),
		}
	}
	return nil
}

// defaultOnnxPath returns the ONNX Runtime library directory for the current
// platform, or empty when none is installed.
func defaultOnnxPath() string {
	paths := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Dir(p)
		}
	}
	return ""
}

// NewLocalClient creates the local backend. Returns an error if the model or
// runtime cannot be initialized; callers should degrade, not abort.
func NewLocalClient(cfg LocalConfig) (*LocalClient, error) {
	c := &LocalClient{config: cfg}
	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("local oracle initialization failed: %w", err)
	}
	return c, nil
}

func (c *LocalClient) initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.createSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.session = session

	modelPath, err := c.resolveModelPath()
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to resolve model path: %w", err)
	}

	pipeline, err := hugot.NewPipeline(c.session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "danger-classifier",
	})
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	c.pipeline = pipeline
	c.ready = true
	log.Printf("[STARTUP] Local oracle initialized (model: %s)", modelPath)
	return nil
}

// createSession tries the ONNX Runtime backend first, then falls back to the
// pure Go backend.
func (c *LocalClient) createSession() (*hugot.Session, error) {
	if c.config.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(
			options.WithOnnxLibraryPath(c.config.OnnxLibraryPath),
		)
		if err == nil {
			log.Printf("[INFO] Local oracle using ONNX Runtime backend")
			return session, nil
		}
		log.Printf("[WARN] ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	log.Printf("[INFO] Local oracle using pure Go backend (slower)")
	return session, nil
}

func (c *LocalClient) resolveModelPath() (string, error) {
	if c.config.ModelPath != "" {
		if _, err := os.Stat(c.config.ModelPath); err == nil {
			return c.config.ModelPath, nil
		}
	}
	if c.config.ModelName == "" {
		return "", fmt.Errorf("no model path or name specified")
	}

	modelsDir := "./models"
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	log.Printf("[INFO] Downloading model %s...", c.config.ModelName)
	modelPath, err := hugot.DownloadModel(c.config.ModelName, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	return modelPath, nil
}

// IsReady returns true if the backend is initialized.
func (c *LocalClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Close releases the ONNX session.
func (c *LocalClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = false
	if c.session != nil {
		return c.session.Destroy()
	}
	return nil
}

func (c *LocalClient) Name() string { return "local" }

// dangerLabel reports whether a model label means danger. Label conventions
// vary by model.
func dangerLabel(label string) bool {
	switch label {
	case "danger", "threat", "unsafe", "LABEL_1":
		return true
	default:
		return false
	}
}

func (c *LocalClient) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	if task != TaskThreat && task != TaskPanic {
		return nil, fmt.Errorf("%w: local backend does not serve task %q", ErrUnavailable, task)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready || c.pipeline == nil {
		return nil, fmt.Errorf("%w: local backend not ready", ErrUnavailable)
	}

	result, err := c.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: inference failed: %v", ErrUnavailable, err)
	}
	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return nil, fmt.Errorf("%w: empty inference output", ErrUnavailable)
	}

	out := result.ClassificationOutputs[0][0]
	if !dangerLabel(out.Label) {
		return &Result{Severity: 0, Confidence: float64(out.Score), Rationale: "model label: " + out.Label}, nil
	}

	sev := 3
	if float64(out.Score) >= 0.9 {
		sev = 5
	} else if float64(out.Score) >= 0.7 {
		sev = 4
	}
	return &Result{
		Severity:   sev,
		Tags:       []string{"violence"},
		Confidence: float64(out.Score),
		Rationale:  "model label: " + out.Label,
	}, nil
}
