package analyzer

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"github.com/guardline/aegis/pkg/oracle"
)

// supportedLanguages are the tags downstream guidance is localized for.
// The matcher maps detected tags onto the closest supported one.
var supportedLanguages = []language.Tag{
	language.English, // en, also the fallback of the matcher
	language.Hindi,
	language.Spanish,
	language.Portuguese,
	language.French,
	language.Arabic,
	language.Russian,
	language.Chinese,
	language.Korean,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// MultilingualAnalyzer resolves the working language for the run. Resolution
// order: oracle detection, the event's declared language, the configured
// default. The resolved tag rides on the verdict's Rationale field and is
// read back by the orchestrator.
type MultilingualAnalyzer struct {
	client      oracle.Client
	defaultLang string
	timeout     time.Duration
}

// NewMultilingual creates the language analyzer. defaultLang must be a valid
// BCP-47 tag; invalid defaults degrade to English.
func NewMultilingual(client oracle.Client, defaultLang string, timeout time.Duration) *MultilingualAnalyzer {
	if _, err := language.Parse(defaultLang); err != nil {
		defaultLang = "en"
	}
	return &MultilingualAnalyzer{client: client, defaultLang: defaultLang, timeout: timeout}
}

var _ Analyzer = (*MultilingualAnalyzer)(nil)

func (a *MultilingualAnalyzer) Kind() Kind             { return KindMultilingual }
func (a *MultilingualAnalyzer) Timeout() time.Duration { return a.timeout }

// Resolve returns the working language plus the verdict describing how it was
// chosen. A language always comes back; when detection failed and a fallback
// supplied it, the error is ErrUnavailable so the caller can record the
// degradation.
func (a *MultilingualAnalyzer) Resolve(ctx context.Context, req *Request) (string, *Verdict, error) {
	if res, err := a.client.Classify(ctx, req.Event.RawText, oracle.TaskLanguage); err == nil && res.Language != "" {
		if tag := a.normalize(res.Language); tag != "" {
			return tag, a.verdict(tag, res.Confidence, "detected"), nil
		}
	}
	if req.Event.DeclaredLanguage != "" {
		if tag := a.normalize(req.Event.DeclaredLanguage); tag != "" {
			return tag, a.verdict(tag, 0.5, "declared by client"), ErrUnavailable
		}
	}
	return a.defaultLang, a.verdict(a.defaultLang, 0.3, "configured default"), ErrUnavailable
}

func (a *MultilingualAnalyzer) Analyze(ctx context.Context, req *Request) (*Verdict, error) {
	_, v, err := a.Resolve(ctx, req)
	return v, err
}

// normalize parses a tag and snaps it to the closest supported language.
// Returns empty for unparseable input.
func (a *MultilingualAnalyzer) normalize(raw string) string {
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	_, idx, _ := languageMatcher.Match(tag)
	base, _ := supportedLanguages[idx].Base()
	return base.String()
}

func (a *MultilingualAnalyzer) verdict(lang string, conf float64, how string) *Verdict {
	return &Verdict{
		Kind:       KindMultilingual,
		Severity:   0,
		Confidence: conf,
		Rationale:  lang + " (" + how + ")",
		ProducedAt: time.Now(),
	}
}
