package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/permit-leads/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{250000, "250,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in))
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"Seattle", "Tacoma"}, splitAndTrim("Seattle, Tacoma"))
	assert.Equal(t, []string{"Seattle"}, splitAndTrim(" Seattle ,, "))
	assert.Nil(t, splitAndTrim(""))
}

func TestWriteRecordsCSV(t *testing.T) {
	score := 84
	records := []*model.Record{
		{
			ID:          "permits:1",
			Address:     "123 Main St, Ste 4",
			City:        "Seattle",
			PermitType:  "Commercial Alteration",
			Valuation:   250000,
			AppliedDate: "2026-02-01",
			DataSource:  "permits + zoning",
			Score:       &score,
			HighQuality: true,
			Class:       &model.Classification{IsCommercialTrigger: true},
			MergedWith:  []string{"zoning:9"},
		},
		{ID: "permits:2", Address: "700 Harbor Ave", City: "Tacoma"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRecordsCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "id,address,city")
	assert.Contains(t, lines[1], `"123 Main St, Ste 4"`)
	assert.Contains(t, lines[1], "250000")
	assert.Contains(t, lines[1], "84")
	assert.Contains(t, lines[1], "zoning:9")
	// Unscored record has an empty score column.
	assert.Contains(t, lines[2], "permits:2,700 Harbor Ave,Tacoma")
}

func TestWriteRecordsTable(t *testing.T) {
	score := 91
	records := []*model.Record{
		{ID: "r1", Address: "123 Main St", City: "Seattle", Valuation: 1000000, Score: &score},
		{ID: "r2", Address: strings.Repeat("x", 60), City: "Tacoma"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRecordsTable(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "1,000,000")
	assert.Contains(t, out, "91")
	// Long addresses truncate.
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("x", 60))
}

func TestWriteRecordsTableTruncatesOnRunes(t *testing.T) {
	records := []*model.Record{
		{ID: "r1", Address: strings.Repeat("é", 45), City: "Tacoma"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRecordsTable(&buf, records))

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("é", 37)+"...")
	assert.NotContains(t, out, strings.Repeat("é", 38))
	assert.True(t, utf8.ValidString(out))
}

func TestOutputRecordsBadFormat(t *testing.T) {
	err := outputRecords(nil, "yaml", "")
	require.Error(t, err)
}
