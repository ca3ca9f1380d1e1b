// Package recall keeps an embedded vector memory of past high-severity cases
// and retrieves the ones most similar to a new event. Optional: it needs an
// embedding source (Ollama), and the pipeline runs fine without it.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/guardline/aegis/pkg/httputil"
	"github.com/guardline/aegis/pkg/severity"
)

// Case is one remembered incident.
type Case struct {
	EventID    string
	Text       string
	Category   severity.Category
	Severity   int
	Similarity float32
}

// Memory is the vector store. Safe for concurrent use.
type Memory struct {
	db   *chromem.DB
	coll *chromem.Collection
	mu   sync.RWMutex
}

// newOllamaEmbeddingFunc creates an embedding function against Ollama's
// /api/embeddings endpoint.
func newOllamaEmbeddingFunc(model, baseURL string) chromem.EmbeddingFunc {
	client := httputil.MediumClient()

	return func(ctx context.Context, text string) ([]float32, error) {
		reqBody := map[string]string{
			"model":  model,
			"prompt": text,
		}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/api/embeddings", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer httputil.DrainAndClose(resp.Body)

		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("ollama embedding: status %d", resp.StatusCode)
		}

		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return result.Embedding, nil
	}
}

// NewWithOllama creates a memory backed by Ollama embeddings. Fails fast when
// the embedding endpoint is unreachable so startup can log ○ and move on.
func NewWithOllama(ctx context.Context, ollamaURL string) (*Memory, error) {
	embed := newOllamaEmbeddingFunc("embeddinggemma", ollamaURL)

	// Probe the endpoint once; a dead embedder would fail every Remember.
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := embed(probeCtx, "probe"); err != nil {
		return nil, fmt.Errorf("embedding source unavailable: %w", err)
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection("case_memory", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Memory{db: db, coll: coll}, nil
}

// newWithEmbedder is the test seam: inject any embedding function.
func newWithEmbedder(embed chromem.EmbeddingFunc) (*Memory, error) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection("case_memory", nil, embed)
	if err != nil {
		return nil, err
	}
	return &Memory{db: db, coll: coll}, nil
}

// Remember stores one case. Call for high-severity events only; the memory
// is a similarity index, not an evidence store.
func (m *Memory) Remember(ctx context.Context, eventID, text string, cat severity.Category, sev int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := chromem.Document{
		ID:      eventID,
		Content: text,
		Metadata: map[string]string{
			"category": string(cat),
			"severity": strconv.Itoa(sev),
		},
	}
	if err := m.coll.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("remember case: %w", err)
	}
	return nil
}

// Similar returns up to n cases most similar to text, best first.
func (m *Memory) Similar(ctx context.Context, text string, n int) ([]Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		n = 3
	}
	if count := m.coll.Count(); count < n {
		if count == 0 {
			return nil, nil
		}
		n = count
	}

	results, err := m.coll.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query similar cases: %w", err)
	}

	cases := make([]Case, 0, len(results))
	for _, r := range results {
		sev, _ := strconv.Atoi(r.Metadata["severity"])
		cases = append(cases, Case{
			EventID:    r.ID,
			Text:       r.Content,
			Category:   severity.Category(r.Metadata["category"]),
			Severity:   sev,
			Similarity: r.Similarity,
		})
	}
	return cases, nil
}
