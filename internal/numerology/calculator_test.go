package numerology

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		n      int
		full   int
		master int
	}{
		{n: 0, full: 0, master: 0},
		{n: 7, full: 7, master: 7},
		{n: 10, full: 1, master: 1},
		{n: 11, full: 2, master: 11},
		{n: 22, full: 4, master: 22},
		{n: 28, full: 1, master: 1},
		{n: 29, full: 2, master: 11},
		{n: 33, full: 6, master: 33},
		{n: 38, full: 2, master: 11},
		{n: 99, full: 9, master: 9},
		{n: 2026, full: 1, master: 1},
		{n: 1992, full: 3, master: 3},
		{n: -28, full: 1, master: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.full, Reduce(tt.n, ReduceFull), "Reduce(%d, full)", tt.n)
		assert.Equal(t, tt.master, Reduce(tt.n, ReduceMaster), "Reduce(%d, master)", tt.n)
	}
}

func TestReduceFull_Idempotent(t *testing.T) {
	for n := 0; n <= 10000; n++ {
		once := Reduce(n, ReduceFull)
		require.LessOrEqual(t, once, 9)
		require.Equal(t, once, Reduce(once, ReduceFull), "n=%d", n)
	}
}

func TestDecimalDigits(t *testing.T) {
	assert.Equal(t, []int{0}, DecimalDigits(0))
	assert.Equal(t, []int{3, 2}, DecimalDigits(32))
	assert.Equal(t, []int{1, 9}, DecimalDigits(19))
	assert.Equal(t, []int{1, 0, 0}, DecimalDigits(-100))
	assert.Equal(t, 26, DigitSum(1997))
}

func TestReduction_String(t *testing.T) {
	assert.Equal(t, "full", ReduceFull.String())
	assert.Equal(t, "master", ReduceMaster.String())
	assert.Equal(t, "Reduction(7)", Reduction(7).String())
}

func TestDeriveCore(t *testing.T) {
	tests := []struct {
		date       BirthDate
		want       CoreNumbers
		wantValues []int
	}{
		{
			date:       MustBirthDate(15, 5, 1992),
			want:       CoreNumbers{First: 32, Second: 5, Third: 30, Fourth: 3},
			wantValues: []int{32, 5, 30, 3},
		},
		{
			// 28 -> 10 -> 1: reduction must iterate to a single digit.
			date:       MustBirthDate(1, 1, 2005),
			want:       CoreNumbers{First: 9, Second: 9, Third: 28, Fourth: 1, Millennium: true},
			wantValues: []int{9, 9, 19, 28, 1},
		},
		{
			date:       MustBirthDate(10, 3, 2021),
			want:       CoreNumbers{First: 9, Second: 9, Third: 28, Fourth: 1, Millennium: true},
			wantValues: []int{9, 9, 19, 28, 1},
		},
		{
			date:       MustBirthDate(29, 2, 2020),
			want:       CoreNumbers{First: 17, Second: 8, Third: 36, Fourth: 9, Millennium: true},
			wantValues: []int{17, 8, 19, 36, 9},
		},
		{
			date:       MustBirthDate(29, 12, 1999),
			want:       CoreNumbers{First: 42, Second: 6, Third: 38, Fourth: 2},
			wantValues: []int{42, 6, 38, 2},
		},
		{
			// Leading zero day: the first non-zero digit is the day's unit.
			date:       MustBirthDate(7, 1, 1900),
			want:       CoreNumbers{First: 18, Second: 9, Third: 4, Fourth: 4},
			wantValues: []int{18, 9, 4, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			got, err := DeriveCore(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantValues, got.Values())
		})
	}
}

func TestDeriveCore_ZeroDateViolatesInvariant(t *testing.T) {
	_, err := DeriveCore(BirthDate{})
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestCalculate_Example1992(t *testing.T) {
	r, err := Calculate(MustBirthDate(15, 5, 1992))
	require.NoError(t, err)

	assert.Equal(t, DigitSequence{1, 5, 0, 5, 1, 9, 9, 2}, r.Digits)
	assert.Equal(t, []int{32, 5, 30, 3}, r.Numbers)
	assert.Equal(t, DigitPool{1, 5, 0, 5, 1, 9, 9, 2, 3, 2, 5, 3, 0, 3}, r.Pool)
	assert.False(t, r.ExtraNine)
	assert.Equal(t, Matrix{2, 2, 3, 0, 3, 0, 0, 0, 2}, r.Matrix)
	assert.Equal(t, 2, r.ZeroCount)
}

func TestCalculate_Example2005(t *testing.T) {
	r, err := Calculate(MustBirthDate(1, 1, 2005))
	require.NoError(t, err)

	assert.Equal(t, DigitPool{0, 1, 0, 1, 2, 0, 0, 5, 9, 9, 1, 9, 2, 8, 1}, r.Pool)
	assert.Equal(t, 4, r.Matrix.Count(1))
	assert.Equal(t, 2, r.Matrix.Count(2))
	assert.Equal(t, 1, r.Matrix.Count(5))
	assert.Equal(t, 1, r.Matrix.Count(8))
	assert.Equal(t, 3, r.Matrix.Count(9))
	assert.Equal(t, 4, r.ZeroCount)
}

func TestCalculate_ExtraNine(t *testing.T) {
	r, err := Calculate(MustBirthDate(10, 3, 2021))
	require.NoError(t, err)
	require.True(t, r.ExtraNine)

	withoutExtra := r.Pool[:len(r.Pool)-1]
	assert.Equal(t, 9, r.Pool[len(r.Pool)-1])
	assert.Equal(t, withoutExtra.Count(9)+1, r.Matrix.Count(9))

	r, err = Calculate(MustBirthDate(31, 12, 2019))
	require.NoError(t, err)
	assert.False(t, r.ExtraNine)
}

// Walks every date in range and checks the structural properties.
func TestCalculate_Properties(t *testing.T) {
	if testing.Short() {
		t.Skip("walks every date from 1900 to 2100")
	}

	start := time.Date(MinYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(MaxYear, 12, 31, 0, 0, 0, 0, time.UTC)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		d := MustBirthDate(day.Day(), int(day.Month()), day.Year())
		r, err := Calculate(d)
		require.NoError(t, err, d.String())

		if d.Year() < MillenniumYear {
			require.Len(t, r.Numbers, 4, d.String())
			require.Equal(t, r.Core.First-2*r.Digits.FirstNonZero(), r.Core.Third, d.String())
		} else {
			require.Len(t, r.Numbers, 5, d.String())
			require.Equal(t, MillenniumOffset, r.Numbers[2], d.String())
		}

		require.GreaterOrEqual(t, r.Core.Third, 0, d.String())
		require.LessOrEqual(t, r.Core.Second, 9, d.String())
		require.LessOrEqual(t, r.Core.Fourth, 9, d.String())
		require.Equal(t, len(r.Pool), r.Matrix.Total()+r.ZeroCount, d.String())

		if d.Year() >= ExtraNineYear {
			base := r.Pool[:len(r.Pool)-1]
			require.Equal(t, base.Count(9)+1, r.Matrix.Count(9), d.String())
		}
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	d := MustBirthDate(29, 2, 2020)
	a, err := Calculate(d)
	require.NoError(t, err)
	b, err := Calculate(d)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCalculator(t *testing.T) {
	c := NewCalculator(WithClock(func() time.Time { return testNow }))

	r, err := c.CalculateString("15.05.1992")
	require.NoError(t, err)
	assert.Equal(t, 32, r.Core.First)

	r, err = c.CalculateDate(29, 2, 2020)
	require.NoError(t, err)
	assert.Equal(t, []int{17, 8, 19, 36, 9}, r.Numbers)

	_, err = c.CalculateString("29.02.2021")
	assert.ErrorIs(t, err, ErrImpossibleDate)

	_, err = c.CalculateDate(20, 10, 2026)
	assert.ErrorIs(t, err, ErrFutureDate)

	assert.Equal(t, testNow, c.Now())
}

func TestMatrix_JSON(t *testing.T) {
	m := Matrix{2, 2, 3, 0, 3, 0, 0, 0, 2}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":2,"2":2,"3":3,"4":0,"5":3,"6":0,"7":0,"8":0,"9":2}`, string(data))

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestMatrix_CountOutsideRange(t *testing.T) {
	m := Matrix{1, 1, 1, 1, 1, 1, 1, 1, 1}
	assert.Equal(t, 0, m.Count(0))
	assert.Equal(t, 0, m.Count(10))
	assert.Equal(t, 9, m.Total())
	assert.Len(t, m.Cells(), 9)
	assert.Equal(t, Cell{Digit: 9, Count: 1}, m.Cells()[8])
}
