package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// History listing limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// HistoryEntry is one recorded calculation.
type HistoryEntry struct {
	ID        string                   `json:"id"`
	BirthDate string                   `json:"birthDate"`
	Numbers   []int                    `json:"numbers"`
	Matrix    numerology.Matrix        `json:"matrix"`
	Level     numerology.SeverityLevel `json:"level"`
	IPAddress string                   `json:"ipAddress,omitempty"`
	UserAgent string                   `json:"userAgent,omitempty"`
	Client    string                   `json:"client,omitempty"` // Browser and OS parsed from UserAgent
	CreatedAt time.Time                `json:"createdAt"`
}

// HistoryFilter contains filtering options for listing history.
type HistoryFilter struct {
	BirthDate string // Exact DD.MM.YYYY match when set
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

// normalize applies the default and maximum limit.
func (f HistoryFilter) normalize() HistoryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (f HistoryFilter) matches(e HistoryEntry) bool {
	if f.BirthDate != "" && e.BirthDate != f.BirthDate {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// HistoryStore persists calculations. Implementations must be safe for
// concurrent use.
type HistoryStore interface {
	// Record stores e and returns it with ID and CreatedAt filled in.
	Record(ctx context.Context, e HistoryEntry) (HistoryEntry, error)
	// List returns entries matching f, newest first.
	List(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error)
	// Get returns the entry with id or ErrHistoryNotFound.
	Get(ctx context.Context, id string) (HistoryEntry, error)
	// Purge deletes entries created before cutoff and returns how many.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// newHistoryEntry builds the record of a result from request metadata in ctx.
func newHistoryEntry(ctx context.Context, res *Result) HistoryEntry {
	ua := UserAgentFromContext(ctx)
	return HistoryEntry{
		BirthDate: res.Reading.Date.String(),
		Numbers:   res.Reading.Numbers,
		Matrix:    res.Reading.Matrix,
		Level:     res.Analysis.Level,
		IPAddress: IPAddressFromContext(ctx),
		UserAgent: ua,
		Client:    describeClient(ua),
	}
}

// describeClient turns a User-Agent header into "Browser Version (OS)".
func describeClient(header string) string {
	if header == "" {
		return ""
	}
	ua := useragent.New(header)
	if ua.Bot() {
		name, _ := ua.Browser()
		return "bot: " + name
	}

	name, version := ua.Browser()
	var b strings.Builder
	b.WriteString(name)
	if version != "" {
		b.WriteString(" ")
		b.WriteString(version)
	}
	if os := ua.OS(); os != "" {
		fmt.Fprintf(&b, " (%s)", os)
	}
	return strings.TrimSpace(b.String())
}

func newID() string {
	return uuid.New().String()
}

// assignIdentity fills in a fresh ID and the creation time when missing.
func assignIdentity(e HistoryEntry, now time.Time) HistoryEntry {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	return e
}

// DefaultMemoryHistoryEntries bounds a MemoryHistory created without a limit.
const DefaultMemoryHistoryEntries = 10000

// MemoryHistory is a bounded in-process HistoryStore used when no database is
// configured and in tests. When full, the oldest recorded entry is dropped.
type MemoryHistory struct {
	mu      sync.RWMutex
	max     int
	entries map[string]HistoryEntry
	order   []string // IDs in record order, oldest first
	now     func() time.Time
}

// NewMemoryHistory returns an empty MemoryHistory holding at most max entries.
// A non-positive max means DefaultMemoryHistoryEntries.
func NewMemoryHistory(max int) *MemoryHistory {
	if max <= 0 {
		max = DefaultMemoryHistoryEntries
	}
	return &MemoryHistory{
		max:     max,
		entries: make(map[string]HistoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryHistory) Record(ctx context.Context, e HistoryEntry) (HistoryEntry, error) {
	e = assignIdentity(e, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[e.ID]; !ok {
		for len(m.order) >= m.max {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return e, nil
}

// Len returns the number of stored entries.
func (m *MemoryHistory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryHistory) List(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	f = f.normalize()

	m.mu.RLock()
	matched := make([]HistoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if f.matches(e) {
			matched = append(matched, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if f.Offset >= len(matched) {
		return []HistoryEntry{}, nil
	}
	matched = matched[f.Offset:]
	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (m *MemoryHistory) Get(ctx context.Context, id string) (HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return HistoryEntry{}, fmt.Errorf("get history %s: %w", id, ErrHistoryNotFound)
	}
	return e, nil
}

func (m *MemoryHistory) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	kept := m.order[:0]
	for _, id := range m.order {
		if m.entries[id].CreatedAt.Before(cutoff) {
			delete(m.entries, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return n, nil
}
