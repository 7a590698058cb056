package numerology

import "fmt"

// Rule constants of the core number derivation.
const (
	MillenniumYear   = 2000 // from this year on third = first + MillenniumOffset
	MillenniumOffset = 19   // also emitted as a core number of its own
	ExtraNineYear    = 2020 // from this year on the pool gets one extra 9
)

// DigitSequence is the ordered DD MM YYYY digits of a date.
type DigitSequence []int

// Sum returns the sum of all digits.
func (s DigitSequence) Sum() int {
	total := 0
	for _, d := range s {
		total += d
	}
	return total
}

// FirstNonZero returns the first digit that is not 0, or 0 if none exists.
func (s DigitSequence) FirstNonZero() int {
	for _, d := range s {
		if d != 0 {
			return d
		}
	}
	return 0
}

// CoreNumbers are the summary numbers derived from a birth date.
type CoreNumbers struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
	Fourth int `json:"fourth"`

	// Millennium is true for years >= 2000; the literal 19 is then emitted
	// between Second and Third.
	Millennium bool `json:"millennium"`
}

// Values returns the core numbers in emission order:
// [first, second, third, fourth] or [first, second, 19, third, fourth].
func (c CoreNumbers) Values() []int {
	if c.Millennium {
		return []int{c.First, c.Second, MillenniumOffset, c.Third, c.Fourth}
	}
	return []int{c.First, c.Second, c.Third, c.Fourth}
}

// DeriveCore computes the core numbers of a validated date.
func DeriveCore(d BirthDate) (CoreNumbers, error) {
	digits := d.Digits()

	c := CoreNumbers{
		First:      digits.Sum(),
		Millennium: d.Year() >= MillenniumYear,
	}
	c.Second = Reduce(c.First, ReduceFull)

	if c.Millennium {
		c.Third = c.First + MillenniumOffset
	} else {
		// day >= 1 guarantees a non-zero digit within the first two.
		lead := digits.FirstNonZero()
		if lead == 0 {
			return CoreNumbers{}, fmt.Errorf("%w: no non-zero digit in %s", ErrInvariantViolation, d)
		}
		c.Third = c.First - lead*2
	}

	if c.Third < 0 {
		return CoreNumbers{}, fmt.Errorf("%w: third number %d is negative for %s", ErrInvariantViolation, c.Third, d)
	}

	c.Fourth = Reduce(c.Third, ReduceFull)
	return c, nil
}
