package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

func TestMemoryFamily_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFamily(0)

	tree, err := store.CreateTree(ctx, FamilyTree{
		Name:    "Ivanov",
		Members: []FamilyMember{{Name: "Anna", Relation: numerology.RelationSelf, Programs: []int{1, 5}}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, tree.ID)
	require.Len(t, tree.Members, 1)
	owner := tree.Members[0]
	assert.NotEmpty(t, owner.ID)
	assert.False(t, owner.CreatedAt.IsZero())

	// Returned trees do not share memory with the store.
	tree.Members[0].Programs[0] = 9
	got, err := store.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, got.Members[0].Programs)

	child, err := store.AddMember(ctx, tree.ID, FamilyMember{Name: "Ilya", Relation: numerology.RelationChild, Generation: 1, Programs: []int{}})
	require.NoError(t, err)
	assert.NotEqual(t, owner.ID, child.ID)

	child.Notes = "eldest"
	updated, err := store.UpdateMember(ctx, tree.ID, child)
	require.NoError(t, err)
	assert.Equal(t, child.CreatedAt, updated.CreatedAt)

	got, err = store.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "eldest", got.Members[1].Notes)

	require.NoError(t, store.RemoveMember(ctx, tree.ID, child.ID))
	assert.ErrorIs(t, store.RemoveMember(ctx, tree.ID, child.ID), ErrMemberNotFound)
	_, err = store.UpdateMember(ctx, tree.ID, child)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	require.NoError(t, store.DeleteTree(ctx, tree.ID))
	_, err = store.GetTree(ctx, tree.ID)
	assert.ErrorIs(t, err, ErrFamilyNotFound)
	assert.ErrorIs(t, store.DeleteTree(ctx, tree.ID), ErrFamilyNotFound)
	_, err = store.AddMember(ctx, tree.ID, child)
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestMemoryFamily_EvictsLeastRecentlyUpdated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFamily(2)
	clock := testNow
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := store.CreateTree(ctx, FamilyTree{Name: "first"})
	require.NoError(t, err)
	second, err := store.CreateTree(ctx, FamilyTree{Name: "second"})
	require.NoError(t, err)

	// Touching the first tree makes the second the oldest.
	_, err = store.AddMember(ctx, first.ID, FamilyMember{Name: "Oleg", Relation: numerology.RelationSibling})
	require.NoError(t, err)

	_, err = store.CreateTree(ctx, FamilyTree{Name: "third"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	_, err = store.GetTree(ctx, second.ID)
	assert.ErrorIs(t, err, ErrFamilyNotFound)
	_, err = store.GetTree(ctx, first.ID)
	assert.NoError(t, err)
}

// buildFamily creates the tree of 15.05.1992 with a parent, a grandparent
// without a date and a child.
func buildFamily(t *testing.T, svc *Service) (*FamilyReport, map[string]*FamilyMember) {
	t.Helper()
	ctx := context.Background()

	report, err := svc.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna", BirthDate: "15.05.1992"})
	require.NoError(t, err)
	id := report.Tree.ID

	added := make(map[string]*FamilyMember)
	for _, in := range []MemberInput{
		{Name: "Maria", BirthDate: "13.04.1965", Relation: "parent"},
		{Name: "Pyotr", Relation: "grandparent", Alive: new(bool)},
		{Name: "Ilya", BirthDate: "01.01.2005", Relation: "child"},
	} {
		m, err := svc.AddFamilyMember(ctx, id, in)
		require.NoError(t, err, in.Name)
		added[in.Name] = m
	}

	report, err = svc.FamilyTree(ctx, id)
	require.NoError(t, err)
	return report, added
}

func TestService_FamilyTree(t *testing.T) {
	svc := newTestService(t, WithFamily(NewMemoryFamily(0), 0))
	require.True(t, svc.FamilyEnabled())

	report, added := buildFamily(t, svc)

	assert.Equal(t, "Anna", report.Tree.Name, "name defaults to the owner")
	require.Len(t, report.Tree.Members, 4)
	owner := report.Tree.Members[0]
	assert.True(t, owner.IsOwner())
	assert.Equal(t, []int{1, 5, 5, 1, 9, 9, 2}, owner.Programs)

	assert.Equal(t, -1, added["Maria"].Generation)
	assert.Equal(t, -2, added["Pyotr"].Generation)
	assert.False(t, added["Pyotr"].Alive)
	assert.Empty(t, added["Pyotr"].Programs)
	assert.NotNil(t, added["Pyotr"].Programs)
	assert.Equal(t, 1, added["Ilya"].Generation)

	stats := report.Statistics
	assert.Equal(t, 4, stats.Members)
	assert.Equal(t, 4, stats.Generations)
	assert.Equal(t, 3, stats.WithMatrix)
	assert.Equal(t, 3, stats.Alive)
	assert.Equal(t, []numerology.ProgramCount{
		{Digit: 1, Members: 3},
		{Digit: 5, Members: 3},
		{Digit: 2, Members: 2},
		{Digit: 9, Members: 2},
	}, stats.RepeatingPrograms)

	require.Len(t, report.Recommendations, 2)
	top := report.Recommendations[0]
	assert.Equal(t, numerology.AdviceRepeatingProgram, top.Kind)
	assert.Equal(t, 1, top.Program.Digit)
	assert.Equal(t, "Work with a family program", top.Title)
	assert.Contains(t, top.Description, "repeats in 3 members")
	assert.Equal(t, numerology.AdviceDeepWork, report.Recommendations[1].Kind)
	assert.Equal(t, 4, report.Recommendations[1].Generations)

	levels := make([]int, len(report.Generations))
	for i, g := range report.Generations {
		levels[i] = g.Level
	}
	assert.Equal(t, []int{-2, -1, 0, 1}, levels)
	assert.Equal(t, "Grandparents", report.Generations[0].Name)
	assert.Equal(t, "Pyotr", report.Generations[0].Members[0].Name)
}

func TestService_FamilyCollectDates(t *testing.T) {
	svc := newTestService(t, WithFamily(NewMemoryFamily(0), 0))
	ctx := context.Background()

	report, err := svc.CreateFamilyTree(ctx, "Ivanov", MemberInput{Name: "Anna", BirthDate: "15.05.1992"})
	require.NoError(t, err)
	for _, name := range []string{"Oleg", "Vera"} {
		_, err := svc.AddFamilyMember(ctx, report.Tree.ID, MemberInput{Name: name, Relation: "sibling"})
		require.NoError(t, err)
	}

	report, err = svc.FamilyTree(ctx, report.Tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivanov", report.Tree.Name)
	assert.Empty(t, report.Statistics.RepeatingPrograms)
	require.Len(t, report.Recommendations, 1)
	advice := report.Recommendations[0]
	assert.Equal(t, numerology.AdviceCollectDates, advice.Kind)
	assert.Equal(t, 2, advice.Missing)
	assert.Equal(t, "2 members have no birth date. Add their dates for a full analysis.", advice.Description)
}

func TestService_FamilyMembers(t *testing.T) {
	svc := newTestService(t, WithFamily(NewMemoryFamily(0), 0))
	ctx := context.Background()
	report, added := buildFamily(t, svc)
	id := report.Tree.ID
	owner := report.Tree.Members[0]

	ilya := added["Ilya"]
	updated, err := svc.UpdateFamilyMember(ctx, id, ilya.ID, MemberInput{Name: "Ilya", BirthDate: "02.01.2005", Relation: "grandchild"})
	require.NoError(t, err)
	assert.Equal(t, ilya.ID, updated.ID)
	assert.Equal(t, 2, updated.Generation)
	assert.Equal(t, "02.01.2005", updated.BirthDate)
	assert.Equal(t, []int{2, 1, 2, 5}, updated.Programs)

	// The owner keeps "self" when the relation is omitted.
	updated, err = svc.UpdateFamilyMember(ctx, id, owner.ID, MemberInput{Name: "Anna K.", BirthDate: "15.05.1992"})
	require.NoError(t, err)
	assert.True(t, updated.IsOwner())
	assert.Equal(t, "Anna K.", updated.Name)

	require.NoError(t, svc.RemoveFamilyMember(ctx, id, ilya.ID))
	report, err = svc.FamilyTree(ctx, id)
	require.NoError(t, err)
	assert.Len(t, report.Tree.Members, 3)

	require.NoError(t, svc.DeleteFamilyTree(ctx, id))
	_, err = svc.FamilyTree(ctx, id)
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestService_FamilyErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, WithFamily(NewMemoryFamily(0), 2))
	report, err := svc.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna", BirthDate: "15.05.1992"})
	require.NoError(t, err)
	id := report.Tree.ID
	owner := report.Tree.Members[0]

	_, err = svc.AddFamilyMember(ctx, id, MemberInput{Name: "Oleg", Relation: "sibling"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"owner needs a date", func() error {
			_, err := svc.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna"})
			return err
		}, ErrMissingDate},
		{"owner date is validated", func() error {
			_, err := svc.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna", BirthDate: "31.02.2000"})
			return err
		}, numerology.ErrImpossibleDate},
		{"tree is full", func() error {
			_, err := svc.AddFamilyMember(ctx, id, MemberInput{Name: "Vera", Relation: "sibling"})
			return err
		}, ErrTreeFull},
		{"second owner", func() error {
			_, err := svc.AddFamilyMember(ctx, id, MemberInput{Name: "Anna", Relation: "self"})
			return err
		}, ErrOwnerImmutable},
		{"owner cannot be removed", func() error {
			return svc.RemoveFamilyMember(ctx, id, owner.ID)
		}, ErrOwnerImmutable},
		{"owner cannot be re-related", func() error {
			_, err := svc.UpdateFamilyMember(ctx, id, owner.ID, MemberInput{Name: "Anna", BirthDate: "15.05.1992", Relation: "child"})
			return err
		}, ErrOwnerImmutable},
		{"owner keeps a date", func() error {
			_, err := svc.UpdateFamilyMember(ctx, id, owner.ID, MemberInput{Name: "Anna"})
			return err
		}, ErrMissingDate},
		{"unknown member", func() error {
			return svc.RemoveFamilyMember(ctx, id, "missing")
		}, ErrMemberNotFound},
		{"unknown tree", func() error {
			_, err := svc.FamilyTree(ctx, "missing")
			return err
		}, ErrFamilyNotFound},
		{"missing name", func() error {
			_, err := svc.UpdateFamilyMember(ctx, id, owner.ID, MemberInput{BirthDate: "15.05.1992"})
			return err
		}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}

	// Relations are validated once the tree has room.
	roomy := newTestService(t, WithFamily(NewMemoryFamily(0), 0))
	report, err = roomy.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna", BirthDate: "15.05.1992"})
	require.NoError(t, err)
	_, err = roomy.AddFamilyMember(ctx, report.Tree.ID, MemberInput{Name: "Rex", Relation: "pet"})
	assert.ErrorIs(t, err, numerology.ErrUnknownRelation)
	assert.Equal(t, "FAM003", MapError(err).Code)
}

func TestService_FamilyDisabled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.FamilyEnabled())
	_, err := svc.CreateFamilyTree(ctx, "", MemberInput{Name: "Anna", BirthDate: "15.05.1992"})
	assert.ErrorIs(t, err, ErrFamilyDisabled)
	_, err = svc.FamilyTree(ctx, "any")
	assert.ErrorIs(t, err, ErrFamilyDisabled)
	assert.ErrorIs(t, svc.RemoveFamilyMember(ctx, "any", "any"), ErrFamilyDisabled)
}
