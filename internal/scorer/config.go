package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/permit-leads/internal/config"
)

// WeightSum returns the sum of all score component weights.
func WeightSum(c config.ScorerConfig) float64 {
	return c.ValuationWeight + c.ConfidenceWeight + c.RecencyWeight + c.EnrichmentBonus
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := map[string]float64{
		"valuation_weight":  c.ValuationWeight,
		"confidence_weight": c.ConfidenceWeight,
		"recency_weight":    c.RecencyWeight,
		"enrichment_bonus":  c.EnrichmentBonus,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// The final score is clamped to [0, 100]; weights above 100 would
	// silently saturate every record.
	if sum := WeightSum(c); sum <= 0 || sum > 100 {
		errs = append(errs, fmt.Sprintf("weights must sum to (0, 100], got %.1f", sum))
	}

	if c.ValuationCeiling <= 0 {
		errs = append(errs, "valuation_ceiling must be > 0")
	}
	if c.RecencyThresholdDays <= 0 {
		errs = append(errs, "recency_threshold_days must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateRecalibrateConfig checks recalibration constants.
func ValidateRecalibrateConfig(c config.RecalibrateConfig) error {
	var errs []string

	if c.SignalPenalty < 0 {
		errs = append(errs, "signal_penalty must be >= 0")
	}
	if c.TradeBonus < 0 {
		errs = append(errs, "trade_bonus must be >= 0")
	}
	if c.LowValuation > c.MidValuation || c.MidValuation > c.HighValuation {
		errs = append(errs, "valuation tiers must be ordered low <= mid <= high")
	}
	for name, v := range map[string]int{
		"low_valuation_cap": c.LowValuationCap,
		"maintenance_cap":   c.MaintenanceCap,
		"trigger_floor":     c.TriggerFloor,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 100", name))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: recalibrate config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
