// Package catalog holds the interpretation texts keyed by computed numbers.
//
// The data is embedded JSON parsed once into an immutable Catalog. Consumers
// receive the *Catalog explicitly; nothing in this package is mutable after
// Load returns.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

//go:embed data/catalog.json
var embedded []byte

// YearTheme describes a personal year or month number.
type YearTheme struct {
	Theme       string   `json:"theme"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Program is an inherited pattern tied to a birth digit.
type Program struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Healing  string `json:"healing"`
}

// KarmicDebt explains one karmic number.
type KarmicDebt struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Practice is an exercise suggested for a matrix issue. Practices with
// Digits serve those digits; Ancestral ones serve inherited programs; the
// rest are matched on the keywords of a digit.
type Practice struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"` // meditation, prayer, ritual or technique
	Digits      []int  `json:"digits,omitempty"`
	Ancestral   bool   `json:"ancestral,omitempty"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
}

// PlanPhase names one stage of a practice plan.
type PlanPhase struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

// Advice is the fixed text of a family tree recommendation.
type Advice struct {
	Title  string `json:"title"`
	Action string `json:"action"`
}

// Catalog is the parsed lookup data.
type Catalog struct {
	emptyCell     string
	months        []string
	qualities     map[int]string
	personalYears map[int]YearTheme
	energyReasons map[int]string
	programs      map[int]Program
	karmicDebts   map[int]KarmicDebt
	keywords      map[int][]string
	planPhases    []PlanPhase
	practices     []Practice
	relations     map[string]string
	generations   map[int]string
	familyAdvice  map[string]Advice
}

type document struct {
	EmptyCell     string                `json:"emptyCell"`
	Months        []string              `json:"months"`
	Qualities     map[string]string     `json:"qualities"`
	PersonalYears map[string]YearTheme  `json:"personalYears"`
	EnergyReasons map[string]string     `json:"energyReasons"`
	Programs      map[string]Program    `json:"programs"`
	KarmicDebts   map[string]KarmicDebt `json:"karmicDebts"`
	Keywords      map[string][]string   `json:"keywords"`
	PlanPhases    []PlanPhase           `json:"planPhases"`
	Practices     []Practice            `json:"practices"`
	Relations     map[string]string     `json:"relations"`
	Generations   map[string]string     `json:"generations"`
	FamilyAdvice  map[string]Advice     `json:"familyAdvice"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// MustLoad is Load for process start-up; it panics on a malformed catalog.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load catalog: %v", err))
	}
	return c
}

// Parse builds a Catalog from JSON data.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Months) != 12 {
		return nil, fmt.Errorf("parse catalog: want 12 month names, got %d", len(doc.Months))
	}

	c := &Catalog{
		emptyCell:    doc.EmptyCell,
		months:       doc.Months,
		planPhases:   doc.PlanPhases,
		practices:    doc.Practices,
		relations:    doc.Relations,
		familyAdvice: doc.FamilyAdvice,
	}

	var err error
	if c.qualities, err = intKeys("qualities", doc.Qualities); err != nil {
		return nil, err
	}
	if c.personalYears, err = intKeys("personalYears", doc.PersonalYears); err != nil {
		return nil, err
	}
	if _, ok := c.personalYears[1]; !ok {
		return nil, fmt.Errorf("parse catalog: personalYears needs an entry for 1")
	}
	if c.energyReasons, err = intKeys("energyReasons", doc.EnergyReasons); err != nil {
		return nil, err
	}
	if c.programs, err = intKeys("programs", doc.Programs); err != nil {
		return nil, err
	}
	if c.karmicDebts, err = intKeys("karmicDebts", doc.KarmicDebts); err != nil {
		return nil, err
	}
	if c.keywords, err = intKeys("keywords", doc.Keywords); err != nil {
		return nil, err
	}
	if c.generations, err = intKeys("generations", doc.Generations); err != nil {
		return nil, err
	}
	return c, nil
}

func intKeys[V any](section string, in map[string]V) (map[int]V, error) {
	out := make(map[int]V, len(in))
	for k, v := range in {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %s key %q: %w", section, k, err)
		}
		out[n] = v
	}
	return out, nil
}

// Quality names the quality of digit, empty if unknown.
func (c *Catalog) Quality(digit int) string {
	return c.qualities[digit]
}

// PersonalYearTheme returns the theme of n. Master numbers and unknown
// values fall back to the theme of 1.
func (c *Catalog) PersonalYearTheme(n int) YearTheme {
	if t, ok := c.personalYears[n]; ok {
		return t
	}
	return c.personalYears[1]
}

// EnergyReason explains why an energy number is favorable.
func (c *Catalog) EnergyReason(energy int) string {
	if r, ok := c.energyReasons[energy]; ok {
		return r
	}
	return "Positive energy"
}

// MonthName returns the name of month 1-12, empty otherwise.
func (c *Catalog) MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return c.months[month-1]
}

// Program returns the inherited program of a birth digit.
func (c *Catalog) Program(digit int) (Program, bool) {
	p, ok := c.programs[digit]
	return p, ok
}

// KarmicDebt returns the explanation of a karmic number.
func (c *Catalog) KarmicDebt(n int) (KarmicDebt, bool) {
	d, ok := c.karmicDebts[n]
	return d, ok
}

// CellLabel renders a matrix cell: the digit repeated count times, or the
// empty-cell sentinel.
func (c *Catalog) CellLabel(digit, count int) string {
	if count <= 0 {
		return c.emptyCell
	}
	b := make([]byte, count)
	for i := range b {
		b[i] = byte('0' + digit)
	}
	return string(b)
}

// Keywords returns the themes of digit used to match practices.
func (c *Catalog) Keywords(digit int) []string {
	return c.keywords[digit]
}

// PlanPhase returns the name and goal of a 1-based plan stage. Stages past
// the catalog are named by number.
func (c *Catalog) PlanPhase(stage int) PlanPhase {
	if stage >= 1 && stage <= len(c.planPhases) {
		return c.planPhases[stage-1]
	}
	return PlanPhase{Name: fmt.Sprintf("Phase %d", stage)}
}

// PracticesFor returns up to limit practices for an issue on digit, in
// catalog order. A non-positive limit returns every match.
func (c *Catalog) PracticesFor(digit int, ancestral bool, limit int) []Practice {
	var out []Practice
	for _, p := range c.practices {
		if limit > 0 && len(out) == limit {
			break
		}
		if p.serves(digit, ancestral, c.keywords[digit]) {
			out = append(out, p)
		}
	}
	return out
}

func (p Practice) serves(digit int, ancestral bool, keywords []string) bool {
	if ancestral != p.Ancestral {
		return false
	}
	if len(p.Digits) > 0 {
		return slices.Contains(p.Digits, digit)
	}
	if ancestral {
		return true
	}
	text := strings.ToLower(p.Description)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// RelationName returns the display name of a family relation, or the
// relation itself when unknown.
func (c *Catalog) RelationName(relation string) string {
	if name, ok := c.relations[relation]; ok {
		return name
	}
	return relation
}

// GenerationName names a generation relative to the tree owner (0).
func (c *Catalog) GenerationName(level int) string {
	if name, ok := c.generations[level]; ok {
		return name
	}
	return fmt.Sprintf("Generation %+d", level)
}

// FamilyAdvice returns the text of a family recommendation kind.
func (c *Catalog) FamilyAdvice(kind string) Advice {
	return c.familyAdvice[kind]
}
