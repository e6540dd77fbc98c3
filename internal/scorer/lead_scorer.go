// Package scorer computes composite lead scores and recalibrates
// externally supplied classification confidence.
package scorer

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/model"
)

// LeadScore holds the scoring result for a single record.
type LeadScore struct {
	RecordID        string             `json:"record_id"`
	Score           int                `json:"score"`
	ComponentScores map[string]float64 `json:"component_scores"`
}

// Scorer computes the 0-100 composite lead score.
type Scorer struct {
	cfg config.ScorerConfig
}

// NewScorer creates a Scorer with the given config.
func NewScorer(cfg config.ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// DefaultScorerConfig returns the production weights. Weights sum to 100.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		ValuationWeight:      40,
		ConfidenceWeight:     40,
		RecencyWeight:        15,
		EnrichmentBonus:      5,
		ValuationCeiling:     1_000_000,
		RecencyThresholdDays: 90,
	}
}

// dateLayouts are tried in order when parsing an applied date. Sources
// disagree on formats; an unparseable date is treated as maximally stale,
// never as an error.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Score computes the composite score for a record at the given time.
// Each component is clamped independently, then the sum is clamped to
// [0, 100] and rounded.
func (s *Scorer) Score(rec *model.Record, now time.Time) LeadScore {
	components := map[string]float64{
		"valuation":  s.scoreValuation(rec.Valuation),
		"confidence": s.scoreConfidence(rec.Class),
		"recency":    s.scoreRecency(rec.AppliedDate, now),
		"enrichment": s.scoreEnrichment(rec.Enrichment),
	}

	var total float64
	for _, c := range components {
		total += c
	}
	final := int(math.Round(clamp(total, 0, 100)))

	zap.L().Debug("scorer: scored record",
		zap.String("record_id", rec.ID),
		zap.Int("score", final),
	)

	return LeadScore{
		RecordID:        rec.ID,
		Score:           final,
		ComponentScores: components,
	}
}

// scoreValuation saturates at the configured ceiling.
func (s *Scorer) scoreValuation(valuation float64) float64 {
	v := clamp(valuation, 0, s.cfg.ValuationCeiling)
	return v / s.cfg.ValuationCeiling * s.cfg.ValuationWeight
}

// scoreConfidence scales the (possibly recalibrated) classification
// confidence. A missing classification contributes nothing.
func (s *Scorer) scoreConfidence(class *model.Classification) float64 {
	if class == nil {
		return 0
	}
	c := clamp(float64(class.ConfidenceScore), 0, 100)
	return c / 100 * s.cfg.ConfidenceWeight
}

// scoreRecency decays linearly to zero over the recency threshold. An
// unparseable date counts as twice the threshold, the stalest possible;
// a future date counts as today so the component never exceeds its
// weight.
func (s *Scorer) scoreRecency(appliedDate string, now time.Time) float64 {
	threshold := float64(s.cfg.RecencyThresholdDays)
	days := 2 * threshold
	if d, ok := parseDate(appliedDate); ok {
		days = math.Max(0, math.Floor(now.Sub(d).Hours()/24))
	}
	recency := (threshold - days) / threshold * s.cfg.RecencyWeight
	return math.Max(0, recency)
}

func (s *Scorer) scoreEnrichment(e *model.Enrichment) float64 {
	if e != nil && e.Verified {
		return s.cfg.EnrichmentBonus
	}
	return 0
}

// parseDate tries each known layout against the raw date string.
func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
