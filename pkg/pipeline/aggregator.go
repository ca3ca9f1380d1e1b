package pipeline

import (
	"github.com/guardline/aegis/pkg/analyzer"
	"github.com/guardline/aegis/pkg/severity"
)

// Aggregator merges analyzer verdicts into the run-level severity and
// dominant category. Pure and order-independent: the same verdict set always
// produces the same answer regardless of completion order.
type Aggregator struct {
	ranking *severity.Ranking
}

// NewAggregator builds an aggregator over a category priority ranking.
func NewAggregator(ranking *severity.Ranking) *Aggregator {
	if ranking == nil {
		ranking = severity.NewRanking(nil)
	}
	return &Aggregator{ranking: ranking}
}

// Aggregate folds verdicts into (overallSeverity, dominantCategory).
// Degraded analyzers contribute nothing; when no verdict carries a severity
// the answer is (0, unknown).
func (a *Aggregator) Aggregate(verdicts []analyzer.Verdict) (int, severity.Category) {
	scored := make([]severity.Scored, 0, len(verdicts))
	for _, v := range verdicts {
		cat := severity.CategoryUnknown
		if v.Severity > 0 {
			cat = a.ranking.Dominant(v.Categories)
		}
		scored = append(scored, severity.Scored{
			Severity:   v.Severity,
			Category:   cat,
			Confidence: v.Confidence,
		})
	}
	return a.ranking.Combine(scored)
}
