package numerology

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Documented input bounds.
const (
	MinYear = 1900
	MaxYear = 2100
)

var datePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// endOfRange is a clock value after every accepted date.
var endOfRange = time.Date(MaxYear+1, 1, 1, 0, 0, 0, 0, time.UTC)

// BirthDate is a validated calendar date. The zero value is not valid; build
// one with ParseBirthDate or NewBirthDate.
type BirthDate struct {
	day   int
	month int
	year  int
}

// ParseBirthDate validates s in DD.MM.YYYY form. Dates after the calendar day
// of now are rejected.
func ParseBirthDate(s string, now time.Time) (BirthDate, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return BirthDate{}, dateErr(ErrInvalidFormat, s, "", "want DD.MM.YYYY, got %q", s)
	}

	// The pattern guarantees the groups are ASCII digits.
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	return validate(s, day, month, year, now)
}

// NewBirthDate validates a day, month, year triple.
func NewBirthDate(day, month, year int, now time.Time) (BirthDate, error) {
	input := fmt.Sprintf("%02d.%02d.%04d", day, month, year)
	return validate(input, day, month, year, now)
}

// MustBirthDate is NewBirthDate for fixtures; it panics on invalid input and
// skips the future check.
func MustBirthDate(day, month, year int) BirthDate {
	d, err := NewBirthDate(day, month, year, endOfRange)
	if err != nil {
		panic(err)
	}
	return d
}

func validate(input string, day, month, year int, now time.Time) (BirthDate, error) {
	if day < 1 || day > 31 {
		return BirthDate{}, dateErr(ErrOutOfRange, input, "day", "must be 1-31, got %d", day)
	}
	if month < 1 || month > 12 {
		return BirthDate{}, dateErr(ErrOutOfRange, input, "month", "must be 1-12, got %d", month)
	}
	if year < MinYear || year > MaxYear {
		return BirthDate{}, dateErr(ErrOutOfRange, input, "year", "must be %d-%d, got %d", MinYear, MaxYear, year)
	}

	if limit := DaysInMonth(year, month); day > limit {
		return BirthDate{}, dateErr(ErrImpossibleDate, input, "day",
			"%s %d has %d days, got %d", time.Month(month), year, limit, day)
	}

	ny, nm, nd := now.Date()
	if compareDate(year, month, day, ny, int(nm), nd) > 0 {
		return BirthDate{}, dateErr(ErrFutureDate, input, "",
			"%s is after %02d.%02d.%04d", input, nd, nm, ny)
	}

	return BirthDate{day: day, month: month, year: year}, nil
}

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

func compareDate(y1, m1, d1, y2, m2, d2 int) int {
	switch {
	case y1 != y2:
		return sign(y1 - y2)
	case m1 != m2:
		return sign(m1 - m2)
	default:
		return sign(d1 - d2)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func (d BirthDate) Day() int   { return d.day }
func (d BirthDate) Month() int { return d.month }
func (d BirthDate) Year() int  { return d.year }

// IsZero reports whether d was never validated.
func (d BirthDate) IsZero() bool {
	return d.day == 0
}

// String returns the date as DD.MM.YYYY.
func (d BirthDate) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.day, d.month, d.year)
}

// Time returns midnight UTC of the date.
func (d BirthDate) Time() time.Time {
	return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
}

// Digits returns the DD MM YYYY digits in order, zero padded, 8 entries.
func (d BirthDate) Digits() DigitSequence {
	return DigitSequence{
		d.day / 10, d.day % 10,
		d.month / 10, d.month % 10,
		d.year / 1000, d.year / 100 % 10, d.year / 10 % 10, d.year % 10,
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d BirthDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Format, range and
// calendar rules are enforced; the future check is not, since stored dates
// were already checked when first accepted.
func (d *BirthDate) UnmarshalText(text []byte) error {
	parsed, err := ParseBirthDate(string(text), endOfRange)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
