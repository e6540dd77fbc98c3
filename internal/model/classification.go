package model

// SignalStrength is the qualitative confidence label produced by the
// upstream classification call.
type SignalStrength string

const (
	SignalTier1      SignalStrength = "Tier 1"
	SignalVeryStrong SignalStrength = "Very Strong"
	SignalTier2      SignalStrength = "Tier 2"
	SignalStrong     SignalStrength = "Strong"
	SignalTier3      SignalStrength = "Tier 3"
	SignalModerate   SignalStrength = "Moderate"
	SignalWeak       SignalStrength = "Weak"
	SignalNone       SignalStrength = "None"
)

// Classification is the externally produced per-record classification
// consumed by the recalibrator. ConfidenceScore may arrive out of range;
// it is clamped downstream, never rejected.
type Classification struct {
	ConfidenceScore     int            `json:"confidence_score"`
	SignalStrength      SignalStrength `json:"signal_strength,omitempty"`
	PositiveSignals     []string       `json:"positive_signals,omitempty"`
	NegativeSignals     []string       `json:"negative_signals,omitempty"`
	RoofOpportunity     bool           `json:"roof_opportunity,omitempty"`
	HVACOpportunity     bool           `json:"hvac_opportunity,omitempty"`
	SolarOpportunity    bool           `json:"solar_opportunity,omitempty"`
	IsCommercialTrigger bool           `json:"is_commercial_trigger"`
}

// TradeOpportunityCount returns how many trade-opportunity flags are set.
func (c *Classification) TradeOpportunityCount() int {
	n := 0
	for _, flag := range []bool{c.RoofOpportunity, c.HVACOpportunity, c.SolarOpportunity} {
		if flag {
			n++
		}
	}
	return n
}
