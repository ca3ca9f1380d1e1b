// Package severity defines the shared severity scale, threat categories, and
// the deterministic rules for combining scored findings into a single verdict.
//
// Design principles:
// - PURE: no I/O, no clocks, no globals; Combine is a function of its inputs
// - TOTAL ORDER: every pair of findings compares the same way every time
// - CONFIGURABLE PRIORITY: category tie-break order can be overridden, the
//   default ranks physical danger above psychological harm
package severity

import "fmt"

// Severity levels. Zero means "nothing found"; analyzers report 1-5.
const (
	None     = 0
	Low      = 1
	Moderate = 2
	Elevated = 3
	High     = 4
	Critical = 5
)

// Category labels a threat finding. The zero value is not a valid category;
// CategoryUnknown is the explicit "we could not tell" answer.
type Category string

const (
	CategoryViolence     Category = "violence"
	CategoryBlackmail    Category = "blackmail"
	CategoryStalking     Category = "stalking"
	CategoryHarassment   Category = "harassment"
	CategoryGrooming     Category = "grooming"
	CategoryManipulation Category = "manipulation"
	CategoryOther        Category = "other"
	CategoryUnknown      Category = "unknown"
)

// DefaultPriority is the category tie-break order, most urgent first.
var DefaultPriority = []Category{
	CategoryViolence,
	CategoryBlackmail,
	CategoryStalking,
	CategoryHarassment,
	CategoryGrooming,
	CategoryManipulation,
	CategoryOther,
}

// Valid reports whether s is in the accepted 1-5 range for a finding.
func Valid(s int) bool {
	return s >= Low && s <= Critical
}

// Clamp forces s into [0, 5].
func Clamp(s int) int {
	if s < None {
		return None
	}
	if s > Critical {
		return Critical
	}
	return s
}

// Label returns a human-readable name for a severity level.
func Label(s int) string {
	switch s {
	case None:
		return "none"
	case Low:
		return "low"
	case Moderate:
		return "moderate"
	case Elevated:
		return "elevated"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("invalid(%d)", s)
	}
}

// Scored is one finding to be merged: a severity, the category it belongs to,
// and how confident the producer was.
type Scored struct {
	Severity   int
	Category   Category
	Confidence float64
}

// Ranking holds a category priority table and implements the comparison and
// merge rules. Build one with NewRanking and reuse it; it is read-only after
// construction and safe for concurrent use.
type Ranking struct {
	rank map[Category]int
}

// NewRanking builds a Ranking from a priority list, most urgent first.
// Categories absent from the list rank below every listed one. An empty or
// nil list falls back to DefaultPriority.
func NewRanking(priority []Category) *Ranking {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	r := &Ranking{rank: make(map[Category]int, len(priority))}
	for i, c := range priority {
		if _, dup := r.rank[c]; !dup {
			r.rank[c] = i
		}
	}
	return r
}

// rankOf returns the priority index for c; unlisted categories sort last,
// ties among unlisted categories break lexicographically in Less.
func (r *Ranking) rankOf(c Category) int {
	if i, ok := r.rank[c]; ok {
		return i
	}
	return len(r.rank)
}

// Less reports whether a is strictly more urgent than b.
// Order: higher severity, then higher confidence, then category priority,
// then lexicographic category name so the order is total.
func (r *Ranking) Less(a, b Scored) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	ra, rb := r.rankOf(a.Category), r.rankOf(b.Category)
	if ra != rb {
		return ra < rb
	}
	return a.Category < b.Category
}

// Combine merges findings into an overall severity and a dominant category.
// The overall severity is the maximum severity seen; the dominant category is
// the category of the most urgent finding under Less. Input order never
// changes the result. An empty input yields (None, CategoryUnknown).
func (r *Ranking) Combine(items []Scored) (int, Category) {
	if len(items) == 0 {
		return None, CategoryUnknown
	}
	top := items[0]
	for _, it := range items[1:] {
		if r.Less(it, top) {
			top = it
		}
	}
	if top.Category == "" {
		return Clamp(top.Severity), CategoryUnknown
	}
	return Clamp(top.Severity), top.Category
}

// Dominant picks the highest-priority category from a tag list, or
// CategoryUnknown when the list is empty.
func (r *Ranking) Dominant(tags []Category) Category {
	if len(tags) == 0 {
		return CategoryUnknown
	}
	best := tags[0]
	for _, t := range tags[1:] {
		rb, rt := r.rankOf(best), r.rankOf(t)
		if rt < rb || (rt == rb && t < best) {
			best = t
		}
	}
	return best
}

// ParseCategory maps free-form oracle tags onto the closed category set.
// Unrecognized tags map to CategoryOther so a noisy oracle can never widen
// the category space.
func ParseCategory(tag string) Category {
	switch Category(tag) {
	case CategoryViolence, CategoryBlackmail, CategoryStalking,
		CategoryHarassment, CategoryGrooming, CategoryManipulation,
		CategoryOther, CategoryUnknown:
		return Category(tag)
	}
	switch tag {
	case "threat", "physical_threat", "death_threat":
		return CategoryViolence
	case "extortion", "sextortion", "coercion":
		return CategoryBlackmail
	case "surveillance", "tracking":
		return CategoryStalking
	case "abuse", "sexual_harassment", "cyberbullying":
		return CategoryHarassment
	case "predatory", "minor_targeting":
		return CategoryGrooming
	case "gaslighting", "love_bombing", "guilt_tripping", "scam":
		return CategoryManipulation
	}
	return CategoryOther
}
