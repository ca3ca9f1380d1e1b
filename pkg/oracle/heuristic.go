package oracle

import (
	"context"
	"fmt"
	"unicode"

	"github.com/guardline/aegis/pkg/patterns"
	"github.com/guardline/aegis/pkg/severity"
)

// Heuristic scores text with the compiled pattern registry. It is fully
// deterministic, needs no network, and never returns ErrUnavailable for
// scoring tasks, which makes it the backup of last resort.
type Heuristic struct {
	registry *patterns.Registry
}

// NewHeuristic creates a scorer backed by the global pattern registry.
func NewHeuristic() *Heuristic {
	return &Heuristic{registry: patterns.Get()}
}

var _ Client = (*Heuristic)(nil)

func (h *Heuristic) Name() string { return "heuristic" }

// taskCategories maps a scoring task to the pattern categories it scans.
var taskCategories = map[Task][]patterns.Category{
	TaskThreat:       {patterns.CategoryViolence, patterns.CategoryBlackmail, patterns.CategoryStalking},
	TaskManipulation: {patterns.CategoryManipulation, patterns.CategoryGrooming},
	TaskRedFlag:      {patterns.CategoryHarassment, patterns.CategoryGrooming, patterns.CategoryManipulation, patterns.CategoryStalking},
	TaskPanic:        {patterns.CategoryPanicTrigger},
}

func (h *Heuristic) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch task {
	case TaskThreat, TaskManipulation, TaskRedFlag, TaskPanic:
		return h.score(text, taskCategories[task]), nil
	case TaskLanguage:
		return h.detectLanguage(text)
	case TaskRealityCheck:
		return h.realityCheck(text), nil
	default:
		return nil, fmt.Errorf("%w: unknown task %q", ErrUnavailable, task)
	}
}

// score runs every pattern in the given categories and folds the matches into
// a single result. Severity is the max matched severity; confidence grows
// with the match count but stays below certainty.
func (h *Heuristic) score(text string, cats []patterns.Category) *Result {
	matches := h.registry.MatchAll(text, cats...)
	if len(matches) == 0 {
		return &Result{Severity: 0, Confidence: 0.6, Rationale: "no known threat patterns matched"}
	}

	top := matches[0]
	tagSet := make(map[string]bool, len(matches))
	var tags []string
	for _, m := range matches {
		if m.Severity > top.Severity {
			top = m
		}
		if !tagSet[string(m.Category)] {
			tagSet[string(m.Category)] = true
			tags = append(tags, string(m.Category))
		}
	}

	confidence := 0.5 + 0.1*float64(len(matches))
	if confidence > 0.95 {
		confidence = 0.95
	}

	return &Result{
		Severity:   top.Severity,
		Tags:       tags,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("matched %d pattern(s), strongest: %s", len(matches), top.Name),
		Action:     top.Action,
	}
}

// detectLanguage answers only when the script is conclusive. Latin-script
// text is ambiguous at this level, so it reports unavailable and lets the
// caller fall back to the declared language.
func (h *Heuristic) detectLanguage(text string) (*Result, error) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			return &Result{Language: "hi", Confidence: 0.9}, nil
		case unicode.Is(unicode.Arabic, r):
			return &Result{Language: "ar", Confidence: 0.9}, nil
		case unicode.Is(unicode.Cyrillic, r):
			return &Result{Language: "ru", Confidence: 0.9}, nil
		case unicode.Is(unicode.Han, r):
			return &Result{Language: "zh", Confidence: 0.9}, nil
		case unicode.Is(unicode.Hangul, r):
			return &Result{Language: "ko", Confidence: 0.9}, nil
		}
	}
	return nil, fmt.Errorf("%w: script not conclusive", ErrUnavailable)
}

// Canned probing messages per dominant category, used to test whether the
// counterpart doubles down when gently challenged.
var realityCheckMessages = map[severity.Category]string{
	severity.CategoryBlackmail:    "Before anything else: have you actually verified they possess what they claim? Ask them to prove it without complying with any demand.",
	severity.CategoryManipulation: "Try replying: 'I need a few days to think about this.' Someone with honest intentions accepts a pause; pressure that escalates is itself the answer.",
	severity.CategoryGrooming:     "Ask yourself: would this person say the same things if your parents or friends could read every message? Suggest moving the conversation somewhere visible.",
	severity.CategoryStalking:     "Ask directly how they knew where you were. A vague or deflecting answer to that question tells you more than anything else in the conversation.",
	severity.CategoryHarassment:   "You do not owe a reply. Note how they react to silence; escalation after no response is worth documenting.",
	severity.CategoryViolence:     "Do not probe or provoke. Preserve this conversation and involve someone you trust or the authorities now.",
}

const realityCheckDefault = "Try asking one concrete, verifiable question about their claims. Evasion, anger, or topic changes in response are strong warning signs."

func (h *Heuristic) realityCheck(text string) *Result {
	matches := h.registry.MatchAll(text, patterns.ThreatCategories...)
	var cats []severity.Category
	for _, m := range matches {
		cats = append(cats, m.Category)
	}
	dominant := severity.NewRanking(nil).Dominant(cats)

	msg, ok := realityCheckMessages[dominant]
	if !ok {
		msg = realityCheckDefault
	}
	return &Result{
		Message:    msg,
		Tags:       []string{string(dominant)},
		Confidence: 0.7,
	}
}
