package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// historySchema creates the history table. Applied by EnsureSchema.
const historySchema = `
CREATE TABLE IF NOT EXISTS calculation_history (
	id          uuid PRIMARY KEY,
	birth_date  text NOT NULL,
	numbers     integer[] NOT NULL,
	matrix      jsonb NOT NULL,
	level       text NOT NULL,
	ip_address  text,
	user_agent  text,
	client      text,
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS calculation_history_created_at_idx ON calculation_history (created_at DESC);
CREATE INDEX IF NOT EXISTS calculation_history_birth_date_idx ON calculation_history (birth_date);
`

const historyColumns = "id::text, birth_date, numbers, matrix, level, ip_address, user_agent, client, created_at"

// PostgresHistory is a HistoryStore backed by PostgreSQL through pgx.
type PostgresHistory struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresHistory wraps db, usually a *pgxpool.Pool.
func NewPostgresHistory(db DBTX) *PostgresHistory {
	return &PostgresHistory{db: db, now: time.Now}
}

// EnsureSchema creates the history table and indexes if they do not exist.
func (p *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

func (p *PostgresHistory) Record(ctx context.Context, e HistoryEntry) (HistoryEntry, error) {
	e = assignIdentity(e, p.now())

	matrixJSON, err := json.Marshal(e.Matrix)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("encode matrix: %w", err)
	}

	_, err = p.db.Exec(ctx,
		`INSERT INTO calculation_history
			(id, birth_date, numbers, matrix, level, ip_address, user_agent, client, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.BirthDate, toInt32s(e.Numbers), matrixJSON, string(e.Level),
		nullText(e.IPAddress), nullText(e.UserAgent), nullText(e.Client), e.CreatedAt,
	)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("insert history: %w", err)
	}
	return e, nil
}

func (p *PostgresHistory) List(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	f = f.normalize()

	var conditions []string
	var args []interface{}
	addCondition := func(expr string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if f.BirthDate != "" {
		addCondition("birth_date = $%d", f.BirthDate)
	}
	if !f.Since.IsZero() {
		addCondition("created_at >= $%d", f.Since)
	}
	if !f.Until.IsZero() {
		addCondition("created_at < $%d", f.Until)
	}

	query := "SELECT " + historyColumns + " FROM calculation_history"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, f.Limit)
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (p *PostgresHistory) Get(ctx context.Context, id string) (HistoryEntry, error) {
	// Malformed ids cannot exist; skip the round trip.
	if _, err := uuid.Parse(id); err != nil {
		return HistoryEntry{}, fmt.Errorf("get history %s: %w", id, ErrHistoryNotFound)
	}

	row := p.db.QueryRow(ctx,
		"SELECT "+historyColumns+" FROM calculation_history WHERE id = $1::uuid", id)
	e, err := scanHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return HistoryEntry{}, fmt.Errorf("get history %s: %w", id, ErrHistoryNotFound)
	}
	if err != nil {
		return HistoryEntry{}, err
	}
	return e, nil
}

func (p *PostgresHistory) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, "DELETE FROM calculation_history WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanHistory reads one row selected with historyColumns.
func scanHistory(row pgx.Row) (HistoryEntry, error) {
	var (
		e          HistoryEntry
		numbers    []int32
		matrixJSON []byte
		level      string
		ip, ua, cl *string
	)
	if err := row.Scan(&e.ID, &e.BirthDate, &numbers, &matrixJSON, &level, &ip, &ua, &cl, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HistoryEntry{}, err
		}
		return HistoryEntry{}, fmt.Errorf("scan history: %w", err)
	}
	if err := json.Unmarshal(matrixJSON, &e.Matrix); err != nil {
		return HistoryEntry{}, fmt.Errorf("decode matrix: %w", err)
	}

	e.Numbers = make([]int, len(numbers))
	for i, n := range numbers {
		e.Numbers[i] = int(n)
	}
	e.Level = numerology.SeverityLevel(level)
	e.IPAddress = deref(ip)
	e.UserAgent = deref(ua)
	e.Client = deref(cl)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, n := range in {
		out[i] = int32(n)
	}
	return out
}

func nullText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
