package patterns

import "testing"

func TestGetSingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() returned different registry instances")
	}
	if r1.TotalPatterns() == 0 {
		t.Error("registry has no patterns")
	}
}

func TestEveryCategoryPopulated(t *testing.T) {
	r := Get()
	cats := append([]Category{}, ThreatCategories...)
	cats = append(cats, CategoryPanicTrigger)
	for _, cat := range cats {
		if r.CategoryCount(cat) == 0 {
			t.Errorf("CategoryCount(%q) = 0, want > 0", cat)
		}
	}
}

func TestMatchAnyThreats(t *testing.T) {
	r := Get()
	tests := []struct {
		text string
		cat  Category
	}{
		{"I will kill you if you leave", CategoryViolence},
		{"pay money or else I will leak your photos to everyone", CategoryBlackmail},
		{"I know where you live, saw your light on", CategoryStalking},
		{"send me nudes right now", CategoryHarassment},
		{"this is our little secret, don't tell your parents", CategoryGrooming},
		{"you're crazy, that never happened", CategoryManipulation},
	}
	for _, tt := range tests {
		p := r.MatchAny(tt.text, tt.cat)
		if p == nil {
			t.Errorf("MatchAny(%q, %q) = nil, want match", tt.text, tt.cat)
			continue
		}
		if p.Category != tt.cat {
			t.Errorf("matched category = %q, want %q", p.Category, tt.cat)
		}
		if p.Severity < 1 || p.Severity > 5 {
			t.Errorf("pattern %q severity = %d, want 1-5", p.Name, p.Severity)
		}
	}
}

func TestMatchAnyBenign(t *testing.T) {
	r := Get()
	benign := []string{
		"see you at lunch tomorrow",
		"the meeting moved to 3pm",
		"thanks for the recipe, it was great",
	}
	for _, text := range benign {
		if p := r.MatchAny(text, ThreatCategories...); p != nil {
			t.Errorf("MatchAny(%q) matched %q, want nil", text, p.Name)
		}
	}
}

func TestPanicTriggers(t *testing.T) {
	r := Get()
	triggers := []string{
		"help me please",
		"someone is following me",
		"I don't feel safe here",
		"bachao",
		"ayuda por favor",
	}
	for _, text := range triggers {
		if p := r.MatchAny(text, CategoryPanicTrigger); p == nil {
			t.Errorf("MatchAny(%q, panic_trigger) = nil, want match", text)
		}
	}
}

func TestMatchAllMultipleCategories(t *testing.T) {
	r := Get()
	text := "I will kill you and I know where you live"
	matches := r.MatchAll(text, CategoryViolence, CategoryStalking)
	if len(matches) < 2 {
		t.Errorf("MatchAll returned %d matches, want >= 2", len(matches))
	}
	seen := map[Category]bool{}
	for _, m := range matches {
		seen[m.Category] = true
	}
	if !seen[CategoryViolence] || !seen[CategoryStalking] {
		t.Errorf("MatchAll categories = %v, want violence and stalking", seen)
	}
}

func TestEveryPatternHasAction(t *testing.T) {
	r := Get()
	for _, cat := range append(append([]Category{}, ThreatCategories...), CategoryPanicTrigger) {
		for _, p := range r.GetByCategory(cat) {
			if p.Action == "" {
				t.Errorf("pattern %q has no recommended action", p.Name)
			}
		}
	}
}
