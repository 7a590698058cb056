package numerology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssues(t *testing.T) {
	m := Matrix{2, 0, 6, 1, 1, 1, 1, 1, 7}
	got := Issues(m)
	want := []Issue{
		{Kind: IssueDeficiency, Digit: 2, Count: 0, Severity: SeverityHigh},
		{Kind: IssueExcess, Digit: 3, Count: 6, Severity: SeverityMedium},
		{Kind: IssueExcess, Digit: 9, Count: 7, Severity: SeverityMedium},
	}
	assert.Equal(t, want, got)

	assert.Empty(t, Issues(Matrix{1, 2, 3, 4, 5, 1, 2, 3, 4}))
}

func TestKarmicDebts(t *testing.T) {
	tests := []struct {
		date BirthDate
		want []int
	}{
		{date: MustBirthDate(13, 4, 1985), want: []int{13, 19}},
		{date: MustBirthDate(14, 6, 1990), want: []int{14, 19}},
		{date: MustBirthDate(16, 1, 2013), want: []int{13, 16}},
		{date: MustBirthDate(22, 2, 2022), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KarmicDebts(tt.date))
		})
	}
}

func TestBirthPrograms(t *testing.T) {
	assert.Equal(t, []int{1, 5, 5, 1, 9, 9, 2}, BirthPrograms(MustBirthDate(15, 5, 1992)))
	assert.Equal(t, []int{1, 1, 2, 5}, BirthPrograms(MustBirthDate(1, 1, 2005)))
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		high, medium int
		want         SeverityLevel
	}{
		{0, 0, LevelLight},
		{0, 1, LevelMedium},
		{1, 0, LevelMedium},
		{1, 1, LevelHeavy},
		{0, 4, LevelHeavy},
		{2, 1, LevelCritical},
		{0, 5, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(Score(tt.high, tt.medium)), "high=%d medium=%d", tt.high, tt.medium)
	}
}

func TestAnalyze(t *testing.T) {
	r, err := Calculate(MustBirthDate(15, 5, 1992))
	require.NoError(t, err)

	a := Analyze(r)
	require.Len(t, a.Issues, 4) // 4, 6, 7, 8 are empty
	for i, digit := range []int{4, 6, 7, 8} {
		assert.Equal(t, digit, a.Issues[i].Digit)
		assert.Equal(t, IssueDeficiency, a.Issues[i].Kind)
	}
	assert.Equal(t, []int{19}, a.KarmicDebts)
	assert.Equal(t, 10, a.Score)
	assert.Equal(t, LevelCritical, a.Level)
}
