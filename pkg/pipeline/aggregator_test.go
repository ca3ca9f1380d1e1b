package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/severity"
)

func TestAggregateMaxSeverityWins(t *testing.T) {
	a := NewAggregator(nil)
	verdicts := []analyzer.Verdict{
		{Kind: analyzer.KindThreat, Severity: 5, Categories: []severity.Category{severity.CategoryViolence}, Confidence: 0.9},
		{Kind: analyzer.KindManipulation, Severity: 3, Categories: []severity.Category{severity.CategoryManipulation}, Confidence: 0.8},
		{Kind: analyzer.KindRedFlag, Severity: 2, Categories: []severity.Category{severity.CategoryGrooming}, Confidence: 0.7},
	}

	sev, cat := a.Aggregate(verdicts)
	if sev != 5 {
		t.Errorf("overall severity = %d, want 5", sev)
	}
	if cat != severity.CategoryViolence {
		t.Errorf("dominant category = %q, want %q", cat, severity.CategoryViolence)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := NewAggregator(nil)
	verdicts := []analyzer.Verdict{
		{Kind: analyzer.KindThreat, Severity: 4, Categories: []severity.Category{severity.CategoryStalking}, Confidence: 0.6},
		{Kind: analyzer.KindManipulation, Severity: 4, Categories: []severity.Category{severity.CategoryBlackmail}, Confidence: 0.6},
		{Kind: analyzer.KindRedFlag, Severity: 1, Categories: []severity.Category{severity.CategoryOther}, Confidence: 0.9},
		{Kind: analyzer.KindMultilingual, Severity: 0, Confidence: 0.3},
	}

	wantSev, wantCat := a.Aggregate(verdicts)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 50; i++ {
		shuffled := append([]analyzer.Verdict(nil), verdicts...)
		rng.Shuffle(len(shuffled), func(x, y int) { shuffled[x], shuffled[y] = shuffled[y], shuffled[x] })
		sev, cat := a.Aggregate(shuffled)
		if sev != wantSev || cat != wantCat {
			t.Fatalf("aggregate(%v) = (%d, %q), want (%d, %q)", shuffled, sev, cat, wantSev, wantCat)
		}
	}
}

func TestAggregateTieBreaksOnCategoryPriority(t *testing.T) {
	a := NewAggregator(nil)
	verdicts := []analyzer.Verdict{
		{Kind: analyzer.KindRedFlag, Severity: 4, Categories: []severity.Category{severity.CategoryGrooming}, Confidence: 0.8},
		{Kind: analyzer.KindThreat, Severity: 4, Categories: []severity.Category{severity.CategoryBlackmail}, Confidence: 0.8},
	}

	_, cat := a.Aggregate(verdicts)
	if cat != severity.CategoryBlackmail {
		t.Errorf("dominant category = %q, want %q (blackmail outranks grooming)", cat, severity.CategoryBlackmail)
	}
}

func TestAggregateEmptyAndZeroVerdicts(t *testing.T) {
	a := NewAggregator(nil)

	sev, cat := a.Aggregate(nil)
	if sev != 0 || cat != severity.CategoryUnknown {
		t.Errorf("aggregate(nil) = (%d, %q), want (0, unknown)", sev, cat)
	}

	sev, cat = a.Aggregate([]analyzer.Verdict{
		{Kind: analyzer.KindMultilingual, Severity: 0, Confidence: 0.9},
		{Kind: analyzer.KindLegal, Severity: 0, Confidence: 1},
	})
	if sev != 0 || cat != severity.CategoryUnknown {
		t.Errorf("aggregate(zero-severity) = (%d, %q), want (0, unknown)", sev, cat)
	}
}
