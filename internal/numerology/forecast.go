package numerology

import "time"

// Forecast numbers keep master numbers: every reduction here uses ReduceMaster.

// FavorableSpan is how many days ahead FavorableDays looks by default.
const FavorableSpan = 14

// MaxKeyDates caps the key dates reported per month.
const MaxKeyDates = 5

// IsFavorable reports whether an energy number is one of 1, 3, 5, 6, 9.
func IsFavorable(energy int) bool {
	switch energy {
	case 1, 3, 5, 6, 9:
		return true
	}
	return false
}

// PersonalYear returns the personal year number of d for the calendar year.
func PersonalYear(d BirthDate, year int) int {
	return Reduce(d.Day()+d.Month()+Reduce(year, ReduceMaster), ReduceMaster)
}

// PersonalMonth returns the personal month number of d for year and month.
func PersonalMonth(d BirthDate, year, month int) int {
	return Reduce(PersonalYear(d, year)+month, ReduceMaster)
}

// MonthEnergy is the energy of a calendar month within a personal year.
type MonthEnergy struct {
	Month  int `json:"month"`
	Energy int `json:"energy"`
}

// FavorableMonths lists the months whose energy is favorable in personalYear.
func FavorableMonths(personalYear int) []MonthEnergy {
	var months []MonthEnergy
	for m := 1; m <= 12; m++ {
		if e := Reduce(m+personalYear, ReduceMaster); IsFavorable(e) {
			months = append(months, MonthEnergy{Month: m, Energy: e})
		}
	}
	return months
}

// KeyDateKind classifies a key date.
type KeyDateKind string

const (
	KeyDatePeak   KeyDateKind = "peak"   // day energy equals the personal month
	KeyDateMaster KeyDateKind = "master" // the day of month is a master number
)

// KeyDate is a notable day of a month.
type KeyDate struct {
	Day  int         `json:"day"`
	Kind KeyDateKind `json:"kind"`
}

// KeyDates returns at most MaxKeyDates notable days of year/month, in day
// order. A day can appear twice, once per kind.
func KeyDates(personalMonth, year, month int) []KeyDate {
	var dates []KeyDate
	for day := 1; day <= DaysInMonth(year, month); day++ {
		if Reduce(day+personalMonth, ReduceMaster) == personalMonth {
			dates = append(dates, KeyDate{Day: day, Kind: KeyDatePeak})
		}
		if IsMaster(day) {
			dates = append(dates, KeyDate{Day: day, Kind: KeyDateMaster})
		}
	}
	if len(dates) > MaxKeyDates {
		dates = dates[:MaxKeyDates]
	}
	return dates
}

// FavorableDay is a favorable day within the current month.
type FavorableDay struct {
	Date   time.Time `json:"date"`
	Energy int       `json:"energy"`
}

// FavorableDays scans from the day of from up to span days ahead, never
// past the end of that month.
func FavorableDays(personalMonth int, from time.Time, span int) []FavorableDay {
	y, m, d := from.Date()
	last := min(d+span, DaysInMonth(y, int(m)))

	var days []FavorableDay
	for day := d; day <= last; day++ {
		if e := Reduce(day+personalMonth, ReduceMaster); IsFavorable(e) {
			days = append(days, FavorableDay{
				Date:   time.Date(y, m, day, 0, 0, 0, 0, from.Location()),
				Energy: e,
			})
		}
	}
	return days
}

// Forecast aggregates the personal cycles of a birth date at a moment.
type Forecast struct {
	Date            BirthDate      `json:"date"`
	Year            int            `json:"year"`
	Month           int            `json:"month"`
	PersonalYear    int            `json:"personalYear"`
	PersonalMonth   int            `json:"personalMonth"`
	FavorableMonths []MonthEnergy  `json:"favorableMonths"`
	KeyDates        []KeyDate      `json:"keyDates"`
	FavorableDays   []FavorableDay `json:"favorableDays"`
}

// NewForecast computes the forecast of d for the year and month of at.
func NewForecast(d BirthDate, at time.Time) Forecast {
	year, month := at.Year(), int(at.Month())
	py := PersonalYear(d, year)
	pm := Reduce(py+month, ReduceMaster)

	return Forecast{
		Date:            d,
		Year:            year,
		Month:           month,
		PersonalYear:    py,
		PersonalMonth:   pm,
		FavorableMonths: FavorableMonths(py),
		KeyDates:        KeyDates(pm, year, month),
		FavorableDays:   FavorableDays(pm, at, FavorableSpan),
	}
}
