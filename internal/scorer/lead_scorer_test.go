package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/permit-leads/internal/model"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return testNow.AddDate(0, 0, -n).Format("2006-01-02")
}

func TestScoreValuation(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name      string
		valuation float64
		want      float64
	}{
		{"zero", 0, 0},
		{"half ceiling", 500_000, 20},
		{"at ceiling", 1_000_000, 40},
		{"above ceiling saturates", 5_000_000, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.scoreValuation(tt.valuation), 0.01)
		})
	}
}

func TestScoreConfidence(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name  string
		class *model.Classification
		want  float64
	}{
		{"missing classification", nil, 0},
		{"zero confidence", &model.Classification{ConfidenceScore: 0}, 0},
		{"half confidence", &model.Classification{ConfidenceScore: 50}, 20},
		{"full confidence", &model.Classification{ConfidenceScore: 100}, 40},
		{"out of range clamps", &model.Classification{ConfidenceScore: 150}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.scoreConfidence(tt.class), 0.01)
		})
	}
}

func TestScoreRecency(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name string
		date string
		want float64
	}{
		{"today", daysAgo(0), 15},
		{"half threshold", daysAgo(45), 7.5},
		{"at threshold", daysAgo(90), 0},
		{"past threshold", daysAgo(100), 0},
		{"future date counts as today", daysAgo(-30), 15},
		{"far future stays at the weight", daysAgo(-90), 15},
		{"unparseable is maximally stale", "not-a-date", 0},
		{"empty is maximally stale", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.scoreRecency(tt.date, testNow), 0.01)
		})
	}
}

func TestScore(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	t.Run("perfect record scores 100", func(t *testing.T) {
		rec := &model.Record{
			ID:          "permits:1",
			Valuation:   1_000_000,
			AppliedDate: daysAgo(0),
			Class:       &model.Classification{ConfidenceScore: 100},
			Enrichment:  &model.Enrichment{Verified: true},
		}
		got := s.Score(rec, testNow)
		assert.Equal(t, 100, got.Score)
	})

	t.Run("empty record scores 0", func(t *testing.T) {
		rec := &model.Record{
			ID:          "permits:2",
			Valuation:   0,
			AppliedDate: daysAgo(100),
		}
		got := s.Score(rec, testNow)
		assert.Equal(t, 0, got.Score)
	})

	t.Run("score is always within bounds", func(t *testing.T) {
		records := []*model.Record{
			{Valuation: -50, AppliedDate: "garbage"},
			{Valuation: 1e12, AppliedDate: daysAgo(0), Class: &model.Classification{ConfidenceScore: 500}, Enrichment: &model.Enrichment{Verified: true}},
		}
		for _, rec := range records {
			got := s.Score(rec, testNow)
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, 100)
		}
	})

	t.Run("components reported per dimension", func(t *testing.T) {
		rec := &model.Record{
			ID:          "permits:3",
			Valuation:   500_000,
			AppliedDate: daysAgo(45),
			Enrichment:  &model.Enrichment{Verified: true},
		}
		got := s.Score(rec, testNow)
		assert.InDelta(t, 20, got.ComponentScores["valuation"], 0.01)
		assert.InDelta(t, 7.5, got.ComponentScores["recency"], 0.01)
		assert.InDelta(t, 5, got.ComponentScores["enrichment"], 0.01)
		assert.InDelta(t, 0, got.ComponentScores["confidence"], 0.01)
		assert.Equal(t, 33, got.Score)
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(DefaultScorerConfig()))
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		cfg := DefaultScorerConfig()
		cfg.RecencyWeight = -1
		assert.Error(t, ValidateConfig(cfg))
	})

	t.Run("zero ceiling rejected", func(t *testing.T) {
		cfg := DefaultScorerConfig()
		cfg.ValuationCeiling = 0
		assert.Error(t, ValidateConfig(cfg))
	})

	t.Run("oversubscribed weights rejected", func(t *testing.T) {
		cfg := DefaultScorerConfig()
		cfg.ValuationWeight = 90
		assert.Error(t, ValidateConfig(cfg))
	})
}
