package recall

import (
	"context"
	"testing"

	"github.com/guardline/aegis/pkg/severity"
)

// fakeEmbed maps known words to fixed unit vectors so similarity is exact.
func fakeEmbed(ctx context.Context, text string) ([]float32, error) {
	switch text {
	case "threat to leak photos", "leak my photos":
		return []float32{1, 0, 0}, nil
	case "someone following me":
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func TestRememberAndSimilar(t *testing.T) {
	m, err := newWithEmbedder(fakeEmbed)
	if err != nil {
		t.Fatalf("newWithEmbedder() error = %v", err)
	}
	ctx := context.Background()

	if err := m.Remember(ctx, "ev-1", "threat to leak photos", severity.CategoryBlackmail, 5); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	if err := m.Remember(ctx, "ev-2", "someone following me", severity.CategoryStalking, 4); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	cases, err := m.Similar(ctx, "leak my photos", 2)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("Similar() returned no cases")
	}
	if cases[0].EventID != "ev-1" {
		t.Errorf("top case = %s, want ev-1", cases[0].EventID)
	}
	if cases[0].Category != severity.CategoryBlackmail || cases[0].Severity != 5 {
		t.Errorf("metadata lost: %+v", cases[0])
	}
}

func TestSimilarEmptyMemory(t *testing.T) {
	m, err := newWithEmbedder(fakeEmbed)
	if err != nil {
		t.Fatalf("newWithEmbedder() error = %v", err)
	}
	cases, err := m.Similar(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Similar() on empty memory error = %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("Similar() on empty memory = %d cases, want 0", len(cases))
	}
}
