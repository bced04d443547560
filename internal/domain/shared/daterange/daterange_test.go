package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, start, end string) DateRange {
	t.Helper()
	dr, err := Parse(start, end)
	require.NoError(t, err)
	return dr
}

func TestParseRejectsStartAfterEnd(t *testing.T) {
	_, err := Parse("2024-04-10", "2024-04-05")
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseAcceptsSingleDay(t *testing.T) {
	dr := mustParse(t, "2024-04-10", "2024-04-10")
	assert.Equal(t, 1, dr.Days())
}

func TestParseMissingDate(t *testing.T) {
	_, err := Parse("", "2024-04-10")
	require.ErrorIs(t, err, ErrMissingDate)
}

func TestParseMalformedDate(t *testing.T) {
	_, err := Parse("2024/04/10", "2024-04-12")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDate)
	assert.NotErrorIs(t, err, ErrInvalidRange)
}

func TestNewNormalisesToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	dr, err := New(time.Date(2024, 2, 1, 1, 30, 0, 0, loc), time.Date(2024, 2, 3, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), dr.Start)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), dr.End)
}

func TestOverlaps(t *testing.T) {
	base := mustParse(t, "2024-02-01", "2024-02-05")
	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"touching end", mustParse(t, "2024-02-05", "2024-02-10"), true},
		{"touching start", mustParse(t, "2024-01-28", "2024-02-01"), true},
		{"inside", mustParse(t, "2024-02-02", "2024-02-03"), true},
		{"covering", mustParse(t, "2024-01-01", "2024-03-01"), true},
		{"day after", mustParse(t, "2024-02-06", "2024-02-10"), false},
		{"day before", mustParse(t, "2024-01-20", "2024-01-31"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestMergeAdjacentRanges(t *testing.T) {
	a := mustParse(t, "2024-02-01", "2024-02-05")
	b := mustParse(t, "2024-02-06", "2024-02-08")
	merged, ok := a.Merge(b)
	require.True(t, ok)
	assert.Equal(t, "2024-02-01..2024-02-08", merged.String())

	_, ok = a.Merge(mustParse(t, "2024-02-07", "2024-02-08"))
	assert.False(t, ok)
}

func TestContainsDate(t *testing.T) {
	dr := mustParse(t, "2024-02-01", "2024-02-05")
	assert.True(t, dr.ContainsDate(time.Date(2024, 2, 5, 18, 0, 0, 0, time.UTC)))
	assert.False(t, dr.ContainsDate(time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)))
}

func TestJSONUsesCalendarDates(t *testing.T) {
	dr := mustParse(t, "2024-02-01", "2024-02-05")
	data, err := dr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-02-01","end":"2024-02-05"}`, string(data))

	var decoded DateRange
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, dr, decoded)
}
