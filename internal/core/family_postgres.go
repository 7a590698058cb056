package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// familySchema creates the family tables. Applied by EnsureSchema.
const familySchema = `
CREATE TABLE IF NOT EXISTS family_trees (
	id          uuid PRIMARY KEY,
	name        text NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS family_members (
	id          uuid PRIMARY KEY,
	tree_id     uuid NOT NULL REFERENCES family_trees (id) ON DELETE CASCADE,
	position    bigserial,
	name        text NOT NULL,
	birth_date  text,
	gender      text,
	relation    text NOT NULL,
	generation  integer NOT NULL,
	alive       boolean NOT NULL DEFAULT true,
	notes       text,
	programs    integer[] NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS family_members_tree_idx ON family_members (tree_id, position);
`

const memberColumns = "id::text, name, birth_date, gender, relation, generation, alive, notes, programs, created_at"

// PostgresFamily is a FamilyStore backed by PostgreSQL through pgx.
type PostgresFamily struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresFamily wraps pool. Tree changes run in transactions.
func NewPostgresFamily(pool *pgxpool.Pool) *PostgresFamily {
	return &PostgresFamily{pool: pool, now: time.Now}
}

// EnsureSchema creates the family tables if they do not exist.
func (p *PostgresFamily) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, familySchema); err != nil {
		return fmt.Errorf("ensure family schema: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (p *PostgresFamily) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (p *PostgresFamily) CreateTree(ctx context.Context, t FamilyTree) (FamilyTree, error) {
	now := p.now().UTC()
	t.ID = newID()
	t.CreatedAt, t.UpdatedAt = now, now
	for i := range t.Members {
		t.Members[i] = stampMember(t.Members[i], now)
	}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO family_trees (id, name, created_at, updated_at) VALUES ($1::uuid, $2, $3, $3)`,
			t.ID, t.Name, now); err != nil {
			return fmt.Errorf("insert family tree: %w", err)
		}
		for _, m := range t.Members {
			if err := insertMember(ctx, tx, t.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return FamilyTree{}, err
	}
	return t, nil
}

func (p *PostgresFamily) GetTree(ctx context.Context, id string) (FamilyTree, error) {
	if _, err := uuid.Parse(id); err != nil {
		return FamilyTree{}, fmt.Errorf("get family %s: %w", id, ErrFamilyNotFound)
	}

	var t FamilyTree
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, name, created_at, updated_at FROM family_trees WHERE id = $1::uuid`, id,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FamilyTree{}, fmt.Errorf("get family %s: %w", id, ErrFamilyNotFound)
	}
	if err != nil {
		return FamilyTree{}, fmt.Errorf("get family %s: %w", id, err)
	}
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()

	rows, err := p.pool.Query(ctx,
		"SELECT "+memberColumns+" FROM family_members WHERE tree_id = $1::uuid ORDER BY position", id)
	if err != nil {
		return FamilyTree{}, fmt.Errorf("list family members: %w", err)
	}
	t.Members, err = pgx.CollectRows(rows, scanMember)
	if err != nil {
		return FamilyTree{}, fmt.Errorf("list family members: %w", err)
	}
	return t, nil
}

func (p *PostgresFamily) DeleteTree(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete family %s: %w", id, ErrFamilyNotFound)
	}
	tag, err := p.pool.Exec(ctx, "DELETE FROM family_trees WHERE id = $1::uuid", id)
	if err != nil {
		return fmt.Errorf("delete family %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete family %s: %w", id, ErrFamilyNotFound)
	}
	return nil
}

func (p *PostgresFamily) AddMember(ctx context.Context, treeID string, m FamilyMember) (FamilyMember, error) {
	if _, err := uuid.Parse(treeID); err != nil {
		return FamilyMember{}, fmt.Errorf("add member to %s: %w", treeID, ErrFamilyNotFound)
	}
	now := p.now().UTC()
	m.ID = ""
	m = stampMember(m, now)

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if err := touchTree(ctx, tx, treeID, now); err != nil {
			return err
		}
		return insertMember(ctx, tx, treeID, m)
	})
	if err != nil {
		return FamilyMember{}, err
	}
	return m, nil
}

func (p *PostgresFamily) UpdateMember(ctx context.Context, treeID string, m FamilyMember) (FamilyMember, error) {
	if _, err := uuid.Parse(treeID); err != nil {
		return FamilyMember{}, fmt.Errorf("update member in %s: %w", treeID, ErrFamilyNotFound)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return FamilyMember{}, fmt.Errorf("update member %s: %w", m.ID, ErrMemberNotFound)
	}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if err := touchTree(ctx, tx, treeID, p.now().UTC()); err != nil {
			return err
		}
		err := tx.QueryRow(ctx,
			`UPDATE family_members
			    SET name = $3, birth_date = $4, gender = $5, relation = $6,
			        generation = $7, alive = $8, notes = $9, programs = $10
			  WHERE id = $1::uuid AND tree_id = $2::uuid
			RETURNING created_at`,
			m.ID, treeID, m.Name, nullText(m.BirthDate), nullText(m.Gender), string(m.Relation),
			m.Generation, m.Alive, nullText(m.Notes), toInt32s(m.Programs),
		).Scan(&m.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update member %s: %w", m.ID, ErrMemberNotFound)
		}
		if err != nil {
			return fmt.Errorf("update member %s: %w", m.ID, err)
		}
		return nil
	})
	if err != nil {
		return FamilyMember{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (p *PostgresFamily) RemoveMember(ctx context.Context, treeID, memberID string) error {
	if _, err := uuid.Parse(treeID); err != nil {
		return fmt.Errorf("remove member from %s: %w", treeID, ErrFamilyNotFound)
	}
	if _, err := uuid.Parse(memberID); err != nil {
		return fmt.Errorf("remove member %s: %w", memberID, ErrMemberNotFound)
	}

	return p.inTx(ctx, func(tx pgx.Tx) error {
		if err := touchTree(ctx, tx, treeID, p.now().UTC()); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"DELETE FROM family_members WHERE id = $1::uuid AND tree_id = $2::uuid", memberID, treeID)
		if err != nil {
			return fmt.Errorf("remove member %s: %w", memberID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("remove member %s: %w", memberID, ErrMemberNotFound)
		}
		return nil
	})
}

// touchTree bumps updated_at and reports a missing tree.
func touchTree(ctx context.Context, tx pgx.Tx, treeID string, now time.Time) error {
	tag, err := tx.Exec(ctx, "UPDATE family_trees SET updated_at = $2 WHERE id = $1::uuid", treeID, now)
	if err != nil {
		return fmt.Errorf("touch family %s: %w", treeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("touch family %s: %w", treeID, ErrFamilyNotFound)
	}
	return nil
}

func insertMember(ctx context.Context, tx pgx.Tx, treeID string, m FamilyMember) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO family_members
			(id, tree_id, name, birth_date, gender, relation, generation, alive, notes, programs, created_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, treeID, m.Name, nullText(m.BirthDate), nullText(m.Gender), string(m.Relation),
		m.Generation, m.Alive, nullText(m.Notes), toInt32s(m.Programs), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert family member: %w", err)
	}
	return nil
}

// scanMember reads one row selected with memberColumns.
func scanMember(row pgx.CollectableRow) (FamilyMember, error) {
	var (
		m                   FamilyMember
		date, gender, notes *string
		relation            string
		programs            []int32
	)
	if err := row.Scan(&m.ID, &m.Name, &date, &gender, &relation, &m.Generation,
		&m.Alive, &notes, &programs, &m.CreatedAt); err != nil {
		return FamilyMember{}, fmt.Errorf("scan family member: %w", err)
	}
	m.BirthDate = deref(date)
	m.Gender = deref(gender)
	m.Notes = deref(notes)
	m.Relation = numerology.Relation(relation)
	m.Programs = make([]int, len(programs))
	for i, n := range programs {
		m.Programs[i] = int(n)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
