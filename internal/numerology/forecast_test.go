package numerology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalYear(t *testing.T) {
	tests := []struct {
		name string
		date BirthDate
		year int
		want int
	}{
		// 15 + 5 + (2026 -> 10 -> 1) = 21 -> 3
		{name: "regular", date: MustBirthDate(15, 5, 1992), year: 2026, want: 3},
		// 11 + 10 + 1 = 22 stays a master number
		{name: "master number kept", date: MustBirthDate(11, 10, 1980), year: 2026, want: 22},
		// 29 + 11 + 1 = 41 -> 5
		{name: "two step reduction", date: MustBirthDate(29, 11, 1985), year: 2026, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PersonalYear(tt.date, tt.year))
		})
	}
}

func TestPersonalMonth(t *testing.T) {
	d := MustBirthDate(15, 5, 1992)
	// 3 + 10 = 13 -> 4
	assert.Equal(t, 4, PersonalMonth(d, 2026, 10))
	// 3 + 8 = 11 is a master number
	assert.Equal(t, 11, PersonalMonth(d, 2026, 8))
}

func TestFavorableMonths(t *testing.T) {
	got := FavorableMonths(3)
	want := []MonthEnergy{
		{Month: 2, Energy: 5},
		{Month: 3, Energy: 6},
		{Month: 6, Energy: 9},
		{Month: 7, Energy: 1},
		{Month: 9, Energy: 3},
		{Month: 11, Energy: 5},
		{Month: 12, Energy: 6},
	}
	assert.Equal(t, want, got)

	for _, m := range got {
		assert.True(t, IsFavorable(m.Energy))
	}
}

func TestKeyDates(t *testing.T) {
	got := KeyDates(4, 2026, 10)
	want := []KeyDate{
		{Day: 9, Kind: KeyDatePeak},
		{Day: 11, Kind: KeyDateMaster},
		{Day: 22, Kind: KeyDateMaster},
		{Day: 27, Kind: KeyDatePeak},
	}
	assert.Equal(t, want, got)
}

func TestKeyDates_FullMonth(t *testing.T) {
	got := KeyDates(1, 2026, 1)
	require.Len(t, got, MaxKeyDates)
	assert.Equal(t, KeyDate{Day: 9, Kind: KeyDatePeak}, got[0])
	assert.Equal(t, KeyDate{Day: 27, Kind: KeyDatePeak}, got[4])
}

func TestFavorableDays(t *testing.T) {
	from := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	got := FavorableDays(4, from, FavorableSpan)

	var days, energies []int
	for _, d := range got {
		days = append(days, d.Date.Day())
		energies = append(energies, d.Energy)
		assert.Equal(t, time.October, d.Date.Month())
	}
	assert.Equal(t, []int{20, 23, 24, 26, 28}, days)
	assert.Equal(t, []int{6, 9, 1, 3, 5}, energies)
}

func TestFavorableDays_StopsAtMonthEnd(t *testing.T) {
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	for _, d := range FavorableDays(1, from, FavorableSpan) {
		assert.Equal(t, time.February, d.Date.Month())
		assert.LessOrEqual(t, d.Date.Day(), 28)
	}
}

func TestNewForecast(t *testing.T) {
	at := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	f := NewForecast(MustBirthDate(15, 5, 1992), at)

	assert.Equal(t, 2026, f.Year)
	assert.Equal(t, 10, f.Month)
	assert.Equal(t, 3, f.PersonalYear)
	assert.Equal(t, 4, f.PersonalMonth)
	assert.Equal(t, FavorableMonths(3), f.FavorableMonths)
	assert.Equal(t, KeyDates(4, 2026, 10), f.KeyDates)
	assert.Len(t, f.FavorableDays, 5)
}
