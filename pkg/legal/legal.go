// Package legal maps a jurisdiction and threat category to actionable legal
// guidance: applicable statutes, filing steps, contacts, and rights. The book
// is read-only after load; lookups are informational, never legal advice.
package legal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/guardline/aegis/pkg/severity"
)

// ErrNotFound means no guidance exists for the jurisdiction/category pair,
// even after fallback. Callers treat this as "no guidance", not a failure.
var ErrNotFound = errors.New("no legal guidance found")

// GenericJurisdiction is the fallback jurisdiction key.
const GenericJurisdiction = "generic"

// Guidance is the advice for one jurisdiction/category pair.
type Guidance struct {
	Jurisdiction string   `json:"jurisdiction" yaml:"jurisdiction"`
	Category     string   `json:"category" yaml:"category"`
	Statutes     []string `json:"statutes,omitempty" yaml:"statutes"`
	FilingSteps  []string `json:"filing_steps,omitempty" yaml:"filing_steps"`
	Contact      string   `json:"contact,omitempty" yaml:"contact"`
	Rights       []string `json:"rights,omitempty" yaml:"rights"`
}

// Book holds the loaded guidance, keyed by jurisdiction + "/" + category.
type Book struct {
	entries map[string]*Guidance
}

type seedFile struct {
	Entries []Guidance `yaml:"entries"`
}

// NewBook builds a book from the embedded defaults. seedPath, when non-empty,
// layers a YAML file over the defaults (seed entries win on conflict).
func NewBook(seedPath string) (*Book, error) {
	b := &Book{entries: make(map[string]*Guidance, len(defaultEntries))}
	for i := range defaultEntries {
		g := defaultEntries[i]
		b.entries[key(g.Jurisdiction, g.Category)] = &g
	}

	if seedPath != "" {
		raw, err := os.ReadFile(seedPath)
		if err != nil {
			return nil, fmt.Errorf("read legal seed %s: %w", seedPath, err)
		}
		var seed seedFile
		if err := yaml.Unmarshal(raw, &seed); err != nil {
			return nil, fmt.Errorf("parse legal seed %s: %w", seedPath, err)
		}
		for i := range seed.Entries {
			g := seed.Entries[i]
			if g.Jurisdiction == "" || g.Category == "" {
				return nil, fmt.Errorf("legal seed %s: entry %d missing jurisdiction or category", seedPath, i)
			}
			b.entries[key(g.Jurisdiction, g.Category)] = &g
		}
	}
	return b, nil
}

func key(jurisdiction, category string) string {
	return strings.ToLower(jurisdiction) + "/" + strings.ToLower(category)
}

// Len returns the number of loaded entries.
func (b *Book) Len() int { return len(b.entries) }

// Lookup resolves guidance with a fallback chain:
// (jurisdiction, category) -> (jurisdiction, other) ->
// (generic, category) -> (generic, other).
// ctx bounds the lookup; the embedded book answers from memory, but seeded
// deployments may back entries with a remote source.
func (b *Book) Lookup(ctx context.Context, jurisdiction string, category severity.Category) (*Guidance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if jurisdiction == "" {
		jurisdiction = GenericJurisdiction
	}
	cat := string(category)
	chain := [][2]string{
		{jurisdiction, cat},
		{jurisdiction, string(severity.CategoryOther)},
		{GenericJurisdiction, cat},
		{GenericJurisdiction, string(severity.CategoryOther)},
	}
	for _, k := range chain {
		if g, ok := b.entries[key(k[0], k[1])]; ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, jurisdiction, category)
}
