package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// DefaultMaxFamilyMembers bounds a tree unless WithFamily says otherwise.
const DefaultMaxFamilyMembers = 100

// MemberInput describes a family member to add or replace.
type MemberInput struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"` // DD.MM.YYYY, optional except for the owner
	Gender    string `json:"gender,omitempty"`
	Relation  string `json:"relation"` // Ignored for the owner
	Alive     *bool  `json:"alive,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// FamilyAdviceView is a tree recommendation with its text.
type FamilyAdviceView struct {
	numerology.TreeAdvice
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// GenerationView groups the members of one generation.
type GenerationView struct {
	Level   int            `json:"level"`
	Name    string         `json:"name"`
	Members []FamilyMember `json:"members"`
}

// FamilyReport is a tree with its statistics and recommendations.
type FamilyReport struct {
	Tree            FamilyTree           `json:"tree"`
	Statistics      numerology.TreeStats `json:"statistics"`
	Recommendations []FamilyAdviceView   `json:"recommendations"`
	Generations     []GenerationView     `json:"generations"` // Oldest first
}

// WithFamily keeps family trees in store, at most maxMembers per tree.
func WithFamily(store FamilyStore, maxMembers int) Option {
	return func(s *Service) {
		if maxMembers <= 0 {
			maxMembers = DefaultMaxFamilyMembers
		}
		s.family = store
		s.maxMembers = maxMembers
	}
}

// FamilyEnabled reports whether family trees are available.
func (s *Service) FamilyEnabled() bool {
	return s.family != nil
}

// CreateFamilyTree starts a tree around owner, whose birth date is required.
func (s *Service) CreateFamilyTree(ctx context.Context, name string, owner MemberInput) (*FamilyReport, error) {
	if s.family == nil {
		return nil, ErrFamilyDisabled
	}
	if strings.TrimSpace(owner.BirthDate) == "" {
		return nil, ErrMissingDate
	}
	owner.Relation = string(numerology.RelationSelf)

	m, err := s.newMember(ctx, owner)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = m.Name
	}
	t, err := s.family.CreateTree(ctx, FamilyTree{Name: name, Members: []FamilyMember{m}})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "family tree created", "tree_id", t.ID)
	return s.familyReport(t), nil
}

// FamilyTree returns the report of a stored tree.
func (s *Service) FamilyTree(ctx context.Context, id string) (*FamilyReport, error) {
	if s.family == nil {
		return nil, ErrFamilyDisabled
	}
	t, err := s.family.GetTree(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.familyReport(t), nil
}

// DeleteFamilyTree removes a tree with all its members.
func (s *Service) DeleteFamilyTree(ctx context.Context, id string) error {
	if s.family == nil {
		return ErrFamilyDisabled
	}
	return s.family.DeleteTree(ctx, id)
}

// AddFamilyMember adds a relative to a tree. Only the owner is "self".
func (s *Service) AddFamilyMember(ctx context.Context, treeID string, in MemberInput) (*FamilyMember, error) {
	if s.family == nil {
		return nil, ErrFamilyDisabled
	}
	if in.Relation == string(numerology.RelationSelf) {
		return nil, fmt.Errorf("add member: %w", ErrOwnerImmutable)
	}

	t, err := s.family.GetTree(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if len(t.Members) >= s.maxMembers {
		return nil, fmt.Errorf("add member to %s: %w (%d members)", treeID, ErrTreeFull, s.maxMembers)
	}

	m, err := s.newMember(ctx, in)
	if err != nil {
		return nil, err
	}
	added, err := s.family.AddMember(ctx, treeID, m)
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateFamilyMember replaces the details of a member. The owner keeps the
// "self" relation and a birth date.
func (s *Service) UpdateFamilyMember(ctx context.Context, treeID, memberID string, in MemberInput) (*FamilyMember, error) {
	if s.family == nil {
		return nil, ErrFamilyDisabled
	}

	current, err := s.member(ctx, treeID, memberID)
	if err != nil {
		return nil, err
	}
	if current.IsOwner() {
		if in.Relation != "" && in.Relation != string(numerology.RelationSelf) {
			return nil, fmt.Errorf("update member %s: %w", memberID, ErrOwnerImmutable)
		}
		if strings.TrimSpace(in.BirthDate) == "" {
			return nil, ErrMissingDate
		}
		in.Relation = string(numerology.RelationSelf)
	} else if in.Relation == string(numerology.RelationSelf) {
		return nil, fmt.Errorf("update member %s: %w", memberID, ErrOwnerImmutable)
	}

	m, err := s.newMember(ctx, in)
	if err != nil {
		return nil, err
	}
	m.ID = memberID
	updated, err := s.family.UpdateMember(ctx, treeID, m)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveFamilyMember deletes a relative. The owner cannot be removed.
func (s *Service) RemoveFamilyMember(ctx context.Context, treeID, memberID string) error {
	if s.family == nil {
		return ErrFamilyDisabled
	}

	current, err := s.member(ctx, treeID, memberID)
	if err != nil {
		return err
	}
	if current.IsOwner() {
		return fmt.Errorf("remove member %s: %w", memberID, ErrOwnerImmutable)
	}
	return s.family.RemoveMember(ctx, treeID, memberID)
}

func (s *Service) member(ctx context.Context, treeID, memberID string) (FamilyMember, error) {
	t, err := s.family.GetTree(ctx, treeID)
	if err != nil {
		return FamilyMember{}, err
	}
	for _, m := range t.Members {
		if m.ID == memberID {
			return m, nil
		}
	}
	return FamilyMember{}, fmt.Errorf("member %s: %w", memberID, ErrMemberNotFound)
}

// newMember validates in and derives the generation and birth programs.
func (s *Service) newMember(ctx context.Context, in MemberInput) (FamilyMember, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return FamilyMember{}, fmt.Errorf("%w: member name is required", ErrInvalidRequest)
	}
	rel, err := numerology.ParseRelation(strings.TrimSpace(in.Relation))
	if err != nil {
		return FamilyMember{}, err
	}

	m := FamilyMember{
		Name:       name,
		Gender:     strings.TrimSpace(in.Gender),
		Relation:   rel,
		Generation: rel.Generation(),
		Alive:      in.Alive == nil || *in.Alive,
		Notes:      strings.TrimSpace(in.Notes),
		Programs:   []int{},
	}

	if date := strings.TrimSpace(in.BirthDate); date != "" {
		d, err := s.calc.Parse(date)
		if err != nil {
			s.metrics.IncrementRejections(err)
			return FamilyMember{}, err
		}
		r, _, err := s.reading(ctx, d)
		if err != nil {
			return FamilyMember{}, err
		}
		m.BirthDate = d.String()
		m.Programs = numerology.BirthPrograms(r.Date)
	}
	return m, nil
}

// familyReport computes the statistics, advice and generation layout of t.
func (s *Service) familyReport(t FamilyTree) *FamilyReport {
	kin := make([]numerology.Kin, len(t.Members))
	byGen := make(map[int][]FamilyMember)
	for i, m := range t.Members {
		kin[i] = numerology.Kin{
			Generation: m.Generation,
			Alive:      m.Alive,
			HasDate:    m.BirthDate != "",
			Programs:   m.Programs,
		}
		byGen[m.Generation] = append(byGen[m.Generation], m)
	}

	stats := numerology.TreeStatistics(kin)
	report := &FamilyReport{
		Tree:            t,
		Statistics:      stats,
		Recommendations: []FamilyAdviceView{},
		Generations:     make([]GenerationView, 0, len(byGen)),
	}

	for _, a := range numerology.TreeRecommendations(stats) {
		text := s.catalog.FamilyAdvice(string(a.Kind))
		report.Recommendations = append(report.Recommendations, FamilyAdviceView{
			TreeAdvice:  a,
			Title:       text.Title,
			Description: s.adviceDescription(a),
			Action:      text.Action,
		})
	}

	for level, members := range byGen {
		report.Generations = append(report.Generations, GenerationView{
			Level:   level,
			Name:    s.catalog.GenerationName(level),
			Members: members,
		})
	}
	sort.Slice(report.Generations, func(i, j int) bool {
		return report.Generations[i].Level < report.Generations[j].Level
	})
	return report
}

func (s *Service) adviceDescription(a numerology.TreeAdvice) string {
	switch a.Kind {
	case numerology.AdviceRepeatingProgram:
		title := fmt.Sprintf("program %d", a.Program.Digit)
		if p, ok := s.catalog.Program(a.Program.Digit); ok {
			title = p.Title
		}
		return fmt.Sprintf("%q repeats in %d members of the family. It is the key point to work on.", title, a.Program.Members)
	case numerology.AdviceCollectDates:
		return fmt.Sprintf("%d members have no birth date. Add their dates for a full analysis.", a.Missing)
	case numerology.AdviceDeepWork:
		return fmt.Sprintf("The tree spans %d generations, so deeper family programs can be worked with.", a.Generations)
	}
	return ""
}
