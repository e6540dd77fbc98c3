package scorer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/model"
)

// RecalibrationResult is the adjusted confidence plus the step trace
// explaining how the raw score became the final one.
type RecalibrationResult struct {
	Score               int      `json:"score"`
	IsCommercialTrigger bool     `json:"is_commercial_trigger"`
	Trace               []string `json:"trace,omitempty"`
}

// Recalibrator adjusts externally supplied classification confidence
// using tiered floors, signal-balance penalties, trade bonuses,
// valuation adjustments, and a maintenance hard cap.
type Recalibrator struct {
	cfg config.RecalibrateConfig
}

// NewRecalibrator creates a Recalibrator with the given config.
func NewRecalibrator(cfg config.RecalibrateConfig) *Recalibrator {
	return &Recalibrator{cfg: cfg}
}

// DefaultRecalibrateConfig returns the production adjustment constants.
func DefaultRecalibrateConfig() config.RecalibrateConfig {
	return config.RecalibrateConfig{
		SignalPenalty:      12,
		TradeBonus:         5,
		LowValuation:       5_000,
		LowValuationCap:    40,
		MidValuation:       50_000,
		MidValuationBonus:  5,
		HighValuation:      100_000,
		HighValuationBonus: 12,
		MaintenanceCap:     30,
		TriggerFloor:       35,
	}
}

// signalFloors maps qualitative strength labels to minimum confidence
// floors. Unknown labels leave the score untouched.
var signalFloors = map[model.SignalStrength]int{
	model.SignalTier1:      85,
	model.SignalVeryStrong: 85,
	model.SignalTier2:      72,
	model.SignalStrong:     72,
	model.SignalTier3:      50,
	model.SignalModerate:   50,
	model.SignalWeak:       25,
	model.SignalNone:       5,
}

// Recalibrate runs the ordered adjustment pipeline over a raw
// classification. A nil classification starts from zero with no signals
// and no trigger. The result is always within [0, 100].
func (r *Recalibrator) Recalibrate(raw *model.Classification, description, permitType string, valuation float64) RecalibrationResult {
	var trace []string

	score := 0
	rawTrigger := false
	if raw != nil {
		score = clampInt(raw.ConfidenceScore, 0, 100)
		rawTrigger = raw.IsCommercialTrigger
	}
	trace = append(trace, fmt.Sprintf("raw %d", score))

	// Signal-strength floor.
	if raw != nil {
		if floor, ok := signalFloors[raw.SignalStrength]; ok && score < floor {
			score = floor
			trace = append(trace, fmt.Sprintf("floor %q -> %d", raw.SignalStrength, score))
		}
	}

	// Signal-balance penalty.
	if raw != nil {
		excess := len(raw.NegativeSignals) - len(raw.PositiveSignals)
		if excess > 0 {
			score -= r.cfg.SignalPenalty * excess
			if score < 0 {
				score = 0
			}
			trace = append(trace, fmt.Sprintf("signal penalty x%d -> %d", excess, score))
		}
	}

	// Trade-opportunity bonus.
	if raw != nil {
		if n := raw.TradeOpportunityCount(); n > 0 {
			score += r.cfg.TradeBonus * n
			trace = append(trace, fmt.Sprintf("trade bonus x%d -> %d", n, score))
		}
	}

	// Valuation tiebreak.
	switch {
	case valuation < r.cfg.LowValuation:
		if score > r.cfg.LowValuationCap {
			score = r.cfg.LowValuationCap
			trace = append(trace, fmt.Sprintf("low valuation cap -> %d", score))
		}
	case valuation >= r.cfg.HighValuation:
		score += r.cfg.HighValuationBonus
		trace = append(trace, fmt.Sprintf("high valuation bonus -> %d", score))
	case valuation >= r.cfg.MidValuation:
		score += r.cfg.MidValuationBonus
		trace = append(trace, fmt.Sprintf("mid valuation bonus -> %d", score))
	}

	// Maintenance hard cap.
	if IsMaintenanceLike(description, permitType) && score > r.cfg.MaintenanceCap {
		score = r.cfg.MaintenanceCap
		trace = append(trace, fmt.Sprintf("maintenance cap -> %d", score))
	}

	score = clampInt(score, 0, 100)

	// A confidence this low never registers as an actionable trigger,
	// whatever the upstream classifier said.
	trigger := rawTrigger
	if score < r.cfg.TriggerFloor {
		trigger = false
	}

	zap.L().Debug("scorer: recalibrated confidence",
		zap.Int("score", score),
		zap.Bool("commercial_trigger", trigger),
	)

	return RecalibrationResult{
		Score:               score,
		IsCommercialTrigger: trigger,
		Trace:               trace,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
