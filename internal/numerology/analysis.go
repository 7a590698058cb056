package numerology

import "strings"

// ExcessThreshold is the count above which a cell is overloaded.
const ExcessThreshold = 5

// KarmicNumbers are searched for in the DD.MM.YYYY text of a date.
var KarmicNumbers = []int{13, 14, 16, 19}

// IssueKind classifies a matrix cell that needs attention.
type IssueKind string

const (
	IssueDeficiency IssueKind = "deficiency" // empty cell
	IssueExcess     IssueKind = "excess"     // more than ExcessThreshold
)

// Severity of a single finding.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is a matrix cell outside the balanced range.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Digit    int       `json:"digit"`
	Count    int       `json:"count"`
	Severity Severity  `json:"severity"`
}

// Issues returns deficient and overloaded cells ordered by digit.
func Issues(m Matrix) []Issue {
	var issues []Issue
	for _, c := range m.Cells() {
		switch {
		case c.Count == 0:
			issues = append(issues, Issue{Kind: IssueDeficiency, Digit: c.Digit, Severity: SeverityHigh})
		case c.Count > ExcessThreshold:
			issues = append(issues, Issue{Kind: IssueExcess, Digit: c.Digit, Count: c.Count, Severity: SeverityMedium})
		}
	}
	return issues
}

// KarmicDebts returns the karmic numbers that appear in the DD.MM.YYYY form
// of d, in KarmicNumbers order.
func KarmicDebts(d BirthDate) []int {
	text := d.String()
	var debts []int
	for _, n := range KarmicNumbers {
		if strings.Contains(text, itoa2(n)) {
			debts = append(debts, n)
		}
	}
	return debts
}

func itoa2(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// BirthPrograms returns the non-zero digits of d in date order. Each one keys
// an inherited program in the catalog.
func BirthPrograms(d BirthDate) []int {
	var out []int
	for _, digit := range d.Digits() {
		if digit != 0 {
			out = append(out, digit)
		}
	}
	return out
}

// SeverityLevel summarizes the weight of all findings.
type SeverityLevel string

const (
	LevelLight    SeverityLevel = "light"
	LevelMedium   SeverityLevel = "medium"
	LevelHeavy    SeverityLevel = "heavy"
	LevelCritical SeverityLevel = "critical"
)

// Score weighs medium findings 1 and high findings 2.
func Score(high, medium int) int {
	return medium + 2*high
}

// LevelFor maps a score to a level: >=5 critical, >=3 heavy, >=1 medium.
func LevelFor(score int) SeverityLevel {
	switch {
	case score >= 5:
		return LevelCritical
	case score >= 3:
		return LevelHeavy
	case score >= 1:
		return LevelMedium
	default:
		return LevelLight
	}
}

// Analysis is the structural interpretation of a reading.
type Analysis struct {
	Issues      []Issue       `json:"issues"`
	KarmicDebts []int         `json:"karmicDebts"`
	Programs    []int         `json:"programs"`
	Score       int           `json:"score"`
	Level       SeverityLevel `json:"level"`
}

// Analyze inspects a reading. Karmic debts count as high severity findings.
func Analyze(r Reading) Analysis {
	a := Analysis{
		Issues:      Issues(r.Matrix),
		KarmicDebts: KarmicDebts(r.Date),
		Programs:    BirthPrograms(r.Date),
	}

	high, medium := len(a.KarmicDebts), 0
	for _, is := range a.Issues {
		if is.Severity == SeverityHigh {
			high++
		} else {
			medium++
		}
	}
	a.Score = Score(high, medium)
	a.Level = LevelFor(a.Score)
	return a
}
