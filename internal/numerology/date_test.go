package numerology

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func TestParseBirthDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "regular date", input: "15.05.1992"},
		{name: "leap day in leap year", input: "29.02.2020"},
		{name: "leap day in 2000", input: "29.02.2000"},
		{name: "31 days in january", input: "31.01.2020"},
		{name: "28 february non leap", input: "28.02.2021"},
		{name: "30 april", input: "30.04.2020"},
		{name: "minimum year", input: "01.01.1900"},
		{name: "today", input: "19.10.2026"},

		{name: "iso layout", input: "1992-05-15", wantErr: ErrInvalidFormat},
		{name: "unpadded day", input: "5.05.1992", wantErr: ErrInvalidFormat},
		{name: "two digit year", input: "15.05.92", wantErr: ErrInvalidFormat},
		{name: "slashes", input: "15/05/1992", wantErr: ErrInvalidFormat},
		{name: "trailing space", input: "15.05.1992 ", wantErr: ErrInvalidFormat},
		{name: "empty", input: "", wantErr: ErrInvalidFormat},
		{name: "letters", input: "aa.bb.cccc", wantErr: ErrInvalidFormat},

		{name: "day above 31", input: "32.01.2020", wantErr: ErrOutOfRange},
		{name: "day zero", input: "00.05.2020", wantErr: ErrOutOfRange},
		{name: "month above 12", input: "15.13.2020", wantErr: ErrOutOfRange},
		{name: "month zero", input: "15.00.2020", wantErr: ErrOutOfRange},
		{name: "year below range", input: "15.05.1899", wantErr: ErrOutOfRange},
		{name: "year above range", input: "15.05.2101", wantErr: ErrOutOfRange},

		{name: "leap day in non leap year", input: "29.02.2021", wantErr: ErrImpossibleDate},
		{name: "leap day in 1900", input: "29.02.1900", wantErr: ErrImpossibleDate},
		{name: "31 april", input: "31.04.2020", wantErr: ErrImpossibleDate},
		{name: "31 february", input: "31.02.2020", wantErr: ErrImpossibleDate},

		{name: "tomorrow", input: "20.10.2026", wantErr: ErrFutureDate},
		{name: "next year", input: "01.01.2027", wantErr: ErrFutureDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseBirthDate(tt.input, testNow)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.input, d.String())
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, d.IsZero())

			var de *DateError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.input, de.Input)
		})
	}
}

func TestParseBirthDate_YearBoundaries(t *testing.T) {
	farFuture := time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ParseBirthDate("01.01.1900", farFuture)
	assert.NoError(t, err)
	_, err = ParseBirthDate("31.12.2100", farFuture)
	assert.NoError(t, err)

	_, err = ParseBirthDate("31.12.1899", farFuture)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ParseBirthDate("01.01.2101", farFuture)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseBirthDate_FutureUsesCalendarDay(t *testing.T) {
	// Late in the evening of the 19th, the 19th is still accepted.
	late := time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC)
	_, err := ParseBirthDate("19.10.2026", late)
	assert.NoError(t, err)

	early := time.Date(2026, 10, 18, 0, 0, 1, 0, time.UTC)
	_, err = ParseBirthDate("19.10.2026", early)
	assert.ErrorIs(t, err, ErrFutureDate)
}

func TestNewBirthDate(t *testing.T) {
	d, err := NewBirthDate(1, 1, 2005, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Day())
	assert.Equal(t, 1, d.Month())
	assert.Equal(t, 2005, d.Year())
	assert.Equal(t, "01.01.2005", d.String())
	assert.Equal(t, time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), d.Time())

	_, err = NewBirthDate(31, 4, 2020, testNow)
	assert.ErrorIs(t, err, ErrImpossibleDate)

	_, err = NewBirthDate(1, 1, 1899, testNow)
	var de *DateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "year", de.Field)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDateError_Message(t *testing.T) {
	_, err := ParseBirthDate("15.13.2020", testNow)
	require.Error(t, err)
	assert.Equal(t, "date out of range: month: must be 1-12, got 13", err.Error())

	_, err = ParseBirthDate("nope", testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date format")
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2020))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2100))
	assert.False(t, IsLeapYear(2021))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2020, 2))
	assert.Equal(t, 28, DaysInMonth(2021, 2))
	assert.Equal(t, 30, DaysInMonth(2020, 4))
	assert.Equal(t, 31, DaysInMonth(2020, 12))
}

func TestBirthDate_Digits(t *testing.T) {
	d := MustBirthDate(15, 5, 1992)
	assert.Equal(t, DigitSequence{1, 5, 0, 5, 1, 9, 9, 2}, d.Digits())

	d = MustBirthDate(1, 1, 2005)
	assert.Equal(t, DigitSequence{0, 1, 0, 1, 2, 0, 0, 5}, d.Digits())
}

func TestBirthDate_TextRoundTrip(t *testing.T) {
	d := MustBirthDate(29, 2, 2020)
	text, err := d.MarshalText()
	require.NoError(t, err)

	var back BirthDate
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)

	assert.ErrorIs(t, back.UnmarshalText([]byte("29.02.2021")), ErrImpossibleDate)
}

func TestMustBirthDate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustBirthDate(30, 2, 2000) })
}
