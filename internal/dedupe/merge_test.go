package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestMergeHigherValuationWins(t *testing.T) {
	low := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
	high := rec("b", "zoning", "123 Main Street", "Kirkland", 200_000)

	survivor := Merge(low, high, 15)
	assert.Equal(t, "b", survivor.ID)
	assert.Equal(t, float64(200_000), survivor.Valuation)
	assert.Equal(t, "zoning + permits", survivor.DataSource)

	// Same pair, either argument order.
	survivor = Merge(high, low, 15)
	assert.Equal(t, "b", survivor.ID)
}

func TestMergeTieKeepsPrimary(t *testing.T) {
	a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
	b := rec("b", "zoning", "123 Main Street", "Kirkland", 10_000)

	survivor := Merge(a, b, 15)
	assert.Equal(t, "a", survivor.ID)
}

func TestMergeScoreBonus(t *testing.T) {
	t.Run("boosts and reclamps", func(t *testing.T) {
		a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
		a.Score = intPtr(92)
		b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

		survivor := Merge(a, b, 15)
		assert.Equal(t, 100, *survivor.Score)
	})

	t.Run("boosts below cap", func(t *testing.T) {
		a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
		a.Score = intPtr(60)
		b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

		survivor := Merge(a, b, 15)
		assert.Equal(t, 75, *survivor.Score)
	})

	t.Run("no score stays unset", func(t *testing.T) {
		a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
		b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

		survivor := Merge(a, b, 15)
		assert.Nil(t, survivor.Score)
	})
}

func TestMergeDescriptionMarker(t *testing.T) {
	a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
	a.Description = "Commercial remodel"
	b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

	survivor := Merge(a, b, 15)
	assert.Equal(t, "Commercial remodel [Also found in zoning]", survivor.Description)
}

func TestMergeEmptySources(t *testing.T) {
	t.Run("empty lower source", func(t *testing.T) {
		a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
		b := rec("b", "", "123 Main Street", "Kirkland", 5_000)

		survivor := Merge(a, b, 15)
		assert.Equal(t, "permits", survivor.DataSource)
		assert.Contains(t, survivor.Description, "[Also found in b]")
	})

	t.Run("empty higher source", func(t *testing.T) {
		a := rec("a", "", "123 Main St", "Kirkland", 10_000)
		b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

		survivor := Merge(a, b, 15)
		assert.Equal(t, "zoning", survivor.DataSource)
	})
}

func TestMergeLineageAccumulates(t *testing.T) {
	a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
	a.MergedWith = []string{"x"}
	b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)
	b.MergedWith = []string{"y"}

	survivor := Merge(a, b, 15)
	assert.Equal(t, []string{"x", "b", "y"}, survivor.MergedWith)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := rec("a", "permits", "123 Main St", "Kirkland", 10_000)
	b := rec("b", "zoning", "123 Main Street", "Kirkland", 5_000)

	_ = Merge(a, b, 15)
	assert.Equal(t, "permits", a.DataSource)
	assert.Empty(t, a.MergedWith)
	assert.False(t, a.HighQuality)
	assert.Empty(t, b.MergedWith)
}
