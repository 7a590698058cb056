package numerology

import (
	"errors"
	"fmt"
	"sort"
)

// Relation places a family member relative to the tree owner.
type Relation string

const (
	RelationSelf        Relation = "self"
	RelationParent      Relation = "parent"
	RelationChild       Relation = "child"
	RelationSibling     Relation = "sibling"
	RelationGrandparent Relation = "grandparent"
	RelationGrandchild  Relation = "grandchild"
	RelationSpouse      Relation = "spouse"
	RelationAuntUncle   Relation = "aunt_uncle"
	RelationCousin      Relation = "cousin"
)

// ErrUnknownRelation is returned by ParseRelation.
var ErrUnknownRelation = errors.New("unknown family relation")

var generations = map[Relation]int{
	RelationGrandparent: -2,
	RelationParent:      -1,
	RelationAuntUncle:   -1,
	RelationSelf:        0,
	RelationSibling:     0,
	RelationSpouse:      0,
	RelationCousin:      0,
	RelationChild:       1,
	RelationGrandchild:  2,
}

// ParseRelation validates a relation name.
func ParseRelation(s string) (Relation, error) {
	r := Relation(s)
	if _, ok := generations[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelation, s)
	}
	return r, nil
}

// Generation returns the generation of r relative to the owner: negative
// for ancestors, positive for descendants. Unknown relations count as 0.
func (r Relation) Generation() int {
	return generations[r]
}

// Kin is the part of a family member the tree statistics look at.
type Kin struct {
	Generation int
	Alive      bool
	HasDate    bool
	Programs   []int // BirthPrograms of the member's date
}

// ProgramCount is a birth program shared by several members.
type ProgramCount struct {
	Digit   int `json:"digit"`
	Members int `json:"members"`
}

// TreeStats summarizes a family tree.
type TreeStats struct {
	Members           int            `json:"members"`
	Generations       int            `json:"generations"`
	WithMatrix        int            `json:"withMatrix"`
	Alive             int            `json:"alive"`
	RepeatingPrograms []ProgramCount `json:"repeatingPrograms"`
}

// MostCommonProgram returns the program carried by the most members.
func (s TreeStats) MostCommonProgram() (ProgramCount, bool) {
	if len(s.RepeatingPrograms) == 0 {
		return ProgramCount{}, false
	}
	return s.RepeatingPrograms[0], true
}

// TreeStatistics counts members, distinct generations, members with a birth
// date and living members. A program repeats when at least two members carry
// it; repeats are ordered by member count, then digit.
func TreeStatistics(members []Kin) TreeStats {
	stats := TreeStats{Members: len(members), RepeatingPrograms: []ProgramCount{}}

	gens := make(map[int]bool)
	carriers := make(map[int]int)
	for _, m := range members {
		gens[m.Generation] = true
		if m.HasDate {
			stats.WithMatrix++
		}
		if m.Alive {
			stats.Alive++
		}

		seen := make(map[int]bool)
		for _, digit := range m.Programs {
			if !seen[digit] {
				seen[digit] = true
				carriers[digit]++
			}
		}
	}
	stats.Generations = len(gens)

	for digit, n := range carriers {
		if n > 1 {
			stats.RepeatingPrograms = append(stats.RepeatingPrograms, ProgramCount{Digit: digit, Members: n})
		}
	}
	sort.Slice(stats.RepeatingPrograms, func(i, j int) bool {
		a, b := stats.RepeatingPrograms[i], stats.RepeatingPrograms[j]
		if a.Members != b.Members {
			return a.Members > b.Members
		}
		return a.Digit < b.Digit
	})
	return stats
}

// TreeAdviceKind identifies a family tree recommendation.
type TreeAdviceKind string

const (
	AdviceRepeatingProgram TreeAdviceKind = "repeating_program"
	AdviceCollectDates     TreeAdviceKind = "collect_dates"
	AdviceDeepWork         TreeAdviceKind = "deep_work"
)

// DeepWorkGenerations is the generation count from which deep work is advised.
const DeepWorkGenerations = 3

// TreeAdvice is one recommendation for a tree. Only the fields of its kind
// are set.
type TreeAdvice struct {
	Priority    int            `json:"priority"`
	Kind        TreeAdviceKind `json:"kind"`
	Program     *ProgramCount  `json:"program,omitempty"`     // repeating_program
	Missing     int            `json:"missing,omitempty"`     // collect_dates
	Generations int            `json:"generations,omitempty"` // deep_work
}

// TreeRecommendations advises on a tree, most important first:
//  1. work on the most common repeating program, if any
//  2. collect birth dates while fewer than half the members have one
//  3. deep work once the tree spans DeepWorkGenerations generations
func TreeRecommendations(s TreeStats) []TreeAdvice {
	var advice []TreeAdvice
	if top, ok := s.MostCommonProgram(); ok {
		advice = append(advice, TreeAdvice{Priority: 1, Kind: AdviceRepeatingProgram, Program: &top})
	}
	if 2*s.WithMatrix < s.Members {
		advice = append(advice, TreeAdvice{Priority: 2, Kind: AdviceCollectDates, Missing: s.Members - s.WithMatrix})
	}
	if s.Generations >= DeepWorkGenerations {
		advice = append(advice, TreeAdvice{Priority: 3, Kind: AdviceDeepWork, Generations: s.Generations})
	}
	return advice
}
