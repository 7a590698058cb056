package numerology

import "sort"

const (
	// IssueAncestral is an inherited program carried by a birth digit.
	IssueAncestral IssueKind = "ancestral"

	SeverityLow Severity = "low"
)

// Plan shape: PlanPhases consecutive phases of PhaseDays days each.
const (
	PhaseDays  = 10
	PlanPhases = 3
)

var severityWeight = map[Severity]int{
	SeverityHigh:   100,
	SeverityMedium: 50,
	SeverityLow:    25,
}

var kindWeight = map[IssueKind]int{
	IssueAncestral:  90,
	IssueDeficiency: 70,
	IssueExcess:     40,
}

// Priority ranks an issue for practice work: its severity weight plus its
// kind weight. An empty cell scores 170, an inherited program 190 and an
// overloaded cell 90.
func Priority(is Issue) int {
	return severityWeight[is.Severity] + kindWeight[is.Kind]
}

// AncestralIssues turns birth programs into one high severity issue per
// distinct digit, in first-seen order. Count is how often the digit occurs.
func AncestralIssues(programs []int) []Issue {
	var issues []Issue
	index := make(map[int]int)
	for _, digit := range programs {
		if i, ok := index[digit]; ok {
			issues[i].Count++
			continue
		}
		index[digit] = len(issues)
		issues = append(issues, Issue{Kind: IssueAncestral, Digit: digit, Count: 1, Severity: SeverityHigh})
	}
	return issues
}

// Recommendation is an issue with its practice priority.
type Recommendation struct {
	Issue
	Priority int `json:"priority"`
}

// Recommend ranks the inherited programs and matrix issues of a, highest
// priority first. Equal priorities keep programs in date order and cells in
// digit order.
func Recommend(a Analysis) []Recommendation {
	issues := append(AncestralIssues(a.Programs), a.Issues...)

	recs := make([]Recommendation, len(issues))
	for i, is := range issues {
		recs[i] = Recommendation{Issue: is, Priority: Priority(is)}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})
	return recs
}

// Phase is one stage of a practice plan. Days are 1-based and inclusive.
type Phase struct {
	Stage    int            `json:"stage"`
	FirstDay int            `json:"firstDay"`
	LastDay  int            `json:"lastDay"`
	Focus    Recommendation `json:"focus"`
}

// PracticePlan works through the top recommendations one phase at a time.
type PracticePlan struct {
	Days   int     `json:"days"`
	Phases []Phase `json:"phases"`
}

// PlanPractice builds up to PlanPhases phases from recs, which must already
// be ranked. Days covers the phases actually planned.
func PlanPractice(recs []Recommendation) PracticePlan {
	n := min(len(recs), PlanPhases)
	plan := PracticePlan{
		Days:   n * PhaseDays,
		Phases: make([]Phase, 0, n),
	}
	for i := 0; i < n; i++ {
		plan.Phases = append(plan.Phases, Phase{
			Stage:    i + 1,
			FirstDay: i*PhaseDays + 1,
			LastDay:  (i + 1) * PhaseDays,
			Focus:    recs[i],
		})
	}
	return plan
}
