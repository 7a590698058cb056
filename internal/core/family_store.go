package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// FamilyMember is one person in a family tree.
type FamilyMember struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	BirthDate  string              `json:"birthDate,omitempty"` // DD.MM.YYYY, empty when unknown
	Gender     string              `json:"gender,omitempty"`
	Relation   numerology.Relation `json:"relation"`
	Generation int                 `json:"generation"`
	Alive      bool                `json:"alive"`
	Notes      string              `json:"notes,omitempty"`
	Programs   []int               `json:"programs"` // Birth programs of BirthDate
	CreatedAt  time.Time           `json:"createdAt"`
}

// IsOwner reports whether m is the person the tree is built around.
func (m FamilyMember) IsOwner() bool {
	return m.Relation == numerology.RelationSelf
}

// FamilyTree is a named set of members around one owner.
type FamilyTree struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Members   []FamilyMember `json:"members"` // Owner first, then in the order added
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// FamilyStore persists family trees. Implementations must be safe for
// concurrent use.
type FamilyStore interface {
	// CreateTree stores t with its owner and returns it with IDs and times
	// filled in.
	CreateTree(ctx context.Context, t FamilyTree) (FamilyTree, error)
	// GetTree returns the tree with id or ErrFamilyNotFound.
	GetTree(ctx context.Context, id string) (FamilyTree, error)
	// DeleteTree removes a tree and its members.
	DeleteTree(ctx context.Context, id string) error
	// AddMember appends m to a tree.
	AddMember(ctx context.Context, treeID string, m FamilyMember) (FamilyMember, error)
	// UpdateMember replaces the member with m.ID, keeping its CreatedAt.
	UpdateMember(ctx context.Context, treeID string, m FamilyMember) (FamilyMember, error)
	// RemoveMember deletes one member or returns ErrMemberNotFound.
	RemoveMember(ctx context.Context, treeID, memberID string) error
}

// DefaultMemoryFamilyTrees bounds a MemoryFamily created without a limit.
const DefaultMemoryFamilyTrees = 1000

// MemoryFamily is a bounded in-process FamilyStore. When full, the tree
// changed least recently is dropped.
type MemoryFamily struct {
	mu    sync.Mutex
	max   int
	trees map[string]*FamilyTree
	now   func() time.Time
}

// NewMemoryFamily returns an empty MemoryFamily holding at most max trees.
// A non-positive max means DefaultMemoryFamilyTrees.
func NewMemoryFamily(max int) *MemoryFamily {
	if max <= 0 {
		max = DefaultMemoryFamilyTrees
	}
	return &MemoryFamily{
		max:   max,
		trees: make(map[string]*FamilyTree),
		now:   time.Now,
	}
}

func (m *MemoryFamily) CreateTree(ctx context.Context, t FamilyTree) (FamilyTree, error) {
	now := m.now().UTC()
	t.ID = newID()
	t.CreatedAt, t.UpdatedAt = now, now
	for i := range t.Members {
		t.Members[i] = stampMember(t.Members[i], now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.trees) >= m.max {
		m.evictLocked()
	}
	stored := cloneTree(t)
	m.trees[t.ID] = &stored
	return cloneTree(t), nil
}

// evictLocked drops the least recently updated tree.
func (m *MemoryFamily) evictLocked() {
	var oldest *FamilyTree
	for _, t := range m.trees {
		if oldest == nil || t.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = t
		}
	}
	if oldest != nil {
		delete(m.trees, oldest.ID)
	}
}

func (m *MemoryFamily) GetTree(ctx context.Context, id string) (FamilyTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trees[id]
	if !ok {
		return FamilyTree{}, fmt.Errorf("get family %s: %w", id, ErrFamilyNotFound)
	}
	return cloneTree(*t), nil
}

func (m *MemoryFamily) DeleteTree(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trees[id]; !ok {
		return fmt.Errorf("delete family %s: %w", id, ErrFamilyNotFound)
	}
	delete(m.trees, id)
	return nil
}

func (m *MemoryFamily) AddMember(ctx context.Context, treeID string, member FamilyMember) (FamilyMember, error) {
	now := m.now().UTC()
	member.ID = ""
	member = stampMember(member, now)

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trees[treeID]
	if !ok {
		return FamilyMember{}, fmt.Errorf("add member to %s: %w", treeID, ErrFamilyNotFound)
	}
	t.Members = append(t.Members, cloneMember(member))
	t.UpdatedAt = now
	return member, nil
}

func (m *MemoryFamily) UpdateMember(ctx context.Context, treeID string, member FamilyMember) (FamilyMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trees[treeID]
	if !ok {
		return FamilyMember{}, fmt.Errorf("update member in %s: %w", treeID, ErrFamilyNotFound)
	}
	for i, existing := range t.Members {
		if existing.ID == member.ID {
			member.CreatedAt = existing.CreatedAt
			t.Members[i] = cloneMember(member)
			t.UpdatedAt = m.now().UTC()
			return member, nil
		}
	}
	return FamilyMember{}, fmt.Errorf("update member %s: %w", member.ID, ErrMemberNotFound)
}

func (m *MemoryFamily) RemoveMember(ctx context.Context, treeID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trees[treeID]
	if !ok {
		return fmt.Errorf("remove member from %s: %w", treeID, ErrFamilyNotFound)
	}
	for i, existing := range t.Members {
		if existing.ID == memberID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			t.UpdatedAt = m.now().UTC()
			return nil
		}
	}
	return fmt.Errorf("remove member %s: %w", memberID, ErrMemberNotFound)
}

// Len returns the number of stored trees.
func (m *MemoryFamily) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trees)
}

func stampMember(member FamilyMember, now time.Time) FamilyMember {
	if member.ID == "" {
		member.ID = newID()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	return member
}

func cloneMember(member FamilyMember) FamilyMember {
	member.Programs = slices.Clone(member.Programs)
	return member
}

func cloneTree(t FamilyTree) FamilyTree {
	members := make([]FamilyMember, len(t.Members))
	for i, member := range t.Members {
		members[i] = cloneMember(member)
	}
	t.Members = members
	return t
}
