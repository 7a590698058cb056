package numerology

import (
	"time"
)

// Reading is the full matrix computation for one birth date.
type Reading struct {
	Date      BirthDate     `json:"date"`
	Digits    DigitSequence `json:"digits"`
	Core      CoreNumbers   `json:"core"`
	Numbers   []int         `json:"numbers"` // Core.Values()
	Pool      DigitPool     `json:"pool"`
	ExtraNine bool          `json:"extraNine"`
	Matrix    Matrix        `json:"matrix"`
	ZeroCount int           `json:"zeroCount"`
}

// Calculate derives the core numbers, digit pool and matrix of d.
func Calculate(d BirthDate) (Reading, error) {
	core, err := DeriveCore(d)
	if err != nil {
		return Reading{}, err
	}

	pool := BuildPool(d, core)
	return Reading{
		Date:      d,
		Digits:    d.Digits(),
		Core:      core,
		Numbers:   core.Values(),
		Pool:      pool,
		ExtraNine: HasExtraNine(d),
		Matrix:    BuildMatrix(pool),
		ZeroCount: pool.Count(0),
	}, nil
}

// Calculator validates raw input against a clock and calculates readings.
type Calculator struct {
	now func() time.Time
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithClock sets the clock used for the future-date check.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) {
		c.now = now
	}
}

// NewCalculator returns a Calculator using time.Now unless overridden.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the calculator's current time.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// Parse validates a DD.MM.YYYY string.
func (c *Calculator) Parse(s string) (BirthDate, error) {
	return ParseBirthDate(s, c.now())
}

// CalculateString validates s and calculates its reading.
func (c *Calculator) CalculateString(s string) (Reading, error) {
	d, err := c.Parse(s)
	if err != nil {
		return Reading{}, err
	}
	return Calculate(d)
}

// CalculateDate validates the triple and calculates its reading.
func (c *Calculator) CalculateDate(day, month, year int) (Reading, error) {
	d, err := NewBirthDate(day, month, year, c.now())
	if err != nil {
		return Reading{}, err
	}
	return Calculate(d)
}
