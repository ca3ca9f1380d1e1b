package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/severity"
)

func sampleRecord() *Record {
	return &Record{
		EventID:   "ev-1",
		SessionID: "s-1",
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		RawText:   "pay money or I leak your photos",
		Verdicts: []analyzer.Verdict{
			{
				Kind:       analyzer.KindThreat,
				Severity:   5,
				Categories: []severity.Category{severity.CategoryBlackmail},
				Confidence: 0.9,
				ProducedAt: time.Date(2026, 8, 1, 12, 0, 1, 0, time.UTC),
			},
		},
	}
}

func TestSealDeterministic(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	if err := a.Seal(); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if err := b.Seal(); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if a.Hash != b.Hash {
		t.Errorf("equal records hashed differently: %s vs %s", a.Hash, b.Hash)
	}
	if a.Hash == "" {
		t.Error("Seal() produced empty hash")
	}
}

func TestVerifyDetectsTamper(t *testing.T) {
	rec := sampleRecord()
	if err := rec.Seal(); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if err := rec.Verify(); err != nil {
		t.Errorf("Verify() on intact record = %v, want nil", err)
	}

	rec.RawText = "pay money or I leak your photos!" // one byte appended
	if err := rec.Verify(); !errors.Is(err, ErrCorrupted) {
		t.Errorf("Verify() after mutation = %v, want ErrCorrupted", err)
	}
}

func TestVerifyUnsealed(t *testing.T) {
	rec := sampleRecord()
	if err := rec.Verify(); !errors.Is(err, ErrCorrupted) {
		t.Errorf("Verify() on unsealed record = %v, want ErrCorrupted", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	s := NewFileStore(path)
	ctx := context.Background()

	rec := sampleRecord()
	if err := s.Append(ctx, rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Get(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RawText != rec.RawText || got.Hash != rec.Hash {
		t.Errorf("round trip changed record: %+v", got)
	}
	if len(got.Verdicts) != 1 || got.Verdicts[0].Severity != 5 {
		t.Errorf("verdicts lost in round trip: %+v", got.Verdicts)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "evidence.jsonl"))
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on empty store = %v, want ErrNotFound", err)
	}
}

func TestFileStoreDetectsTamperedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Append(ctx, sampleRecord()); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Tamper with the stored payload without touching the hash.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk Record
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &onDisk); err != nil {
		t.Fatal(err)
	}
	onDisk.RawText = "nothing happened"
	tampered, _ := json.Marshal(&onDisk)
	if err := os.WriteFile(path, append(tampered, '\n'), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "ev-1"); !errors.Is(err, ErrCorrupted) {
		t.Errorf("Get() on tampered store = %v, want ErrCorrupted", err)
	}
}

func TestFileStoreLatestRecordWins(t *testing.T) {
	// Append-only storage keeps every write; reads resolve to the newest.
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	s := NewFileStore(path)
	ctx := context.Background()

	first := sampleRecord()
	if err := s.Append(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := sampleRecord()
	second.RawText = "updated snapshot"
	second.Hash = ""
	if err := s.Append(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "ev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RawText != "updated snapshot" {
		t.Errorf("RawText = %q, want newest record", got.RawText)
	}
}
