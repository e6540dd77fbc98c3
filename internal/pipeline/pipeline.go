// Package pipeline wires deduplication, confidence recalibration, and
// lead scoring into a single batch transform.
package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/dedupe"
	"github.com/sells-group/permit-leads/internal/model"
	"github.com/sells-group/permit-leads/internal/scorer"
)

// Summary aggregates batch-level counters for reporting.
type Summary struct {
	Input        int     `json:"input"`
	Output       int     `json:"output"`
	MergedAway   int     `json:"merged_away"`
	UnknownCity  int     `json:"unknown_city"`
	HighQuality  int     `json:"high_quality"`
	Triggers     int     `json:"commercial_triggers"`
	AverageScore float64 `json:"average_score"`
}

// Result is the full outcome of one pipeline run.
type Result struct {
	Records []*model.Record                       `json:"records"`
	Scores  []scorer.LeadScore                    `json:"scores"`
	Recal   map[string]scorer.RecalibrationResult `json:"recalibration,omitempty"`
	Summary Summary                               `json:"summary"`
}

// Pipeline runs the dedup-and-score batch transform. It is stateless
// between invocations; each Run takes a full record set and returns a
// full result set.
type Pipeline struct {
	resolver     *dedupe.Resolver
	scorer       *scorer.Scorer
	recalibrator *scorer.Recalibrator
	knownCities  []string
}

// New creates a Pipeline from application config.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		resolver:     dedupe.NewResolver(cfg.Dedupe),
		scorer:       scorer.NewScorer(cfg.Scorer),
		recalibrator: scorer.NewRecalibrator(cfg.Recalibrate),
		knownCities:  cfg.Dedupe.KnownCities,
	}
}

// Run executes dedupe, recalibration, and scoring over a record batch.
// Records from outside the known municipality set skip matching but are
// still recalibrated and scored. Run never fails: every malformed field
// has a defined numeric fallback.
func (p *Pipeline) Run(records []*model.Record, now time.Time) Result {
	matchable, passthrough := dedupe.PartitionByCity(records, p.knownCities)

	resolved := p.resolver.Resolve(matchable)
	resolved = append(resolved, passthrough...)

	result := Result{
		Records: resolved,
		Recal:   make(map[string]scorer.RecalibrationResult),
	}

	var scoreSum int
	for _, rec := range resolved {
		if rec.Class != nil {
			recal := p.recalibrator.Recalibrate(rec.Class, rec.Description, rec.PermitType, rec.Valuation)
			rec.Class.ConfidenceScore = recal.Score
			rec.Class.IsCommercialTrigger = recal.IsCommercialTrigger
			result.Recal[rec.ID] = recal
			if recal.IsCommercialTrigger {
				result.Summary.Triggers++
			}
		}

		ls := p.scorer.Score(rec, now)
		score := ls.Score
		rec.Score = &score
		result.Scores = append(result.Scores, ls)
		scoreSum += score

		if rec.HighQuality {
			result.Summary.HighQuality++
		}
	}

	result.Summary.Input = len(records)
	result.Summary.Output = len(resolved)
	result.Summary.MergedAway = len(records) - len(resolved)
	result.Summary.UnknownCity = len(passthrough)
	if len(resolved) > 0 {
		result.Summary.AverageScore = float64(scoreSum) / float64(len(resolved))
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("input", result.Summary.Input),
		zap.Int("output", result.Summary.Output),
		zap.Int("merged_away", result.Summary.MergedAway),
		zap.Int("unknown_city", result.Summary.UnknownCity),
		zap.Int("commercial_triggers", result.Summary.Triggers),
		zap.Float64("average_score", result.Summary.AverageScore),
	)

	return result
}
