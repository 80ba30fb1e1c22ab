package postgres

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists facts in a PostgreSQL table
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool, now: time.Now}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		seq       BIGSERIAL PRIMARY KEY,
		fact_id   TEXT NOT NULL UNIQUE,
		item_id   TEXT NOT NULL,
		property  TEXT NOT NULL,
		ts        BIGINT NOT NULL,
		value     JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_facts_item_id ON facts(item_id);
	CREATE INDEX IF NOT EXISTS idx_facts_property ON facts(property);`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) InsertFact(ctx context.Context, partial facts.PartialFact) (facts.Fact, error) {
	inserted, err := s.InsertFacts(ctx, []facts.PartialFact{partial})
	if err != nil {
		return facts.Fact{}, err
	}
	return inserted[0], nil
}

// InsertFacts stores all facts in one transaction
func (s *Store) InsertFacts(ctx context.Context, partials []facts.PartialFact) ([]facts.Fact, error) {
	now := s.now()
	made := make([]facts.Fact, 0, len(partials))

	for _, p := range partials {
		f, err := facts.MakeFact(p, now)
		if err != nil {
			return nil, err
		}
		made = append(made, f)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, f := range made {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM facts WHERE fact_id = $1)`, f.FactID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check fact %s: %w", f.FactID, err)
		}

		if exists {
			return nil, errors.NewAlreadyExistsError(fmt.Sprintf("fact %s already exists", f.FactID))
		}

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value of fact %s: %w", f.FactID, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO facts (fact_id, item_id, property, ts, value) VALUES ($1, $2, $3, $4, $5)`,
			f.FactID, f.ItemID, f.Property, f.Timestamp, string(value),
		)
		if err != nil {
			return nil, fmt.Errorf("insert fact %s: %w", f.FactID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return made, nil
}

func (s *Store) FetchFact(ctx context.Context, factID string) (facts.Fact, error) {
	found, err := s.query(ctx, selectFacts+` WHERE fact_id = $1`, factID)
	if err != nil {
		return facts.Fact{}, err
	}

	if len(found) == 0 {
		return facts.Fact{}, errors.NewNotFoundError(fmt.Sprintf("fact %s not found", factID))
	}

	return found[0].fact, nil
}

// FetchFacts narrows the candidates of each query in SQL by fact id, item id or
// property and applies the complete query to the candidates.
func (s *Store) FetchFacts(ctx context.Context, queries []facts.Query) ([]facts.Fact, error) {
	if queries == nil {
		all, err := s.query(ctx, selectFacts+` ORDER BY seq`)
		if err != nil {
			return nil, err
		}
		return factsOf(all), nil
	}

	matches := map[string]row{}

	for _, q := range queries {
		where, args := candidatesOf(q)

		candidates, err := s.query(ctx, selectFacts+where, args...)
		if err != nil {
			return nil, err
		}

		for _, c := range candidates {
			if facts.FilterFact(c.fact, q) {
				matches[c.fact.FactID] = c
			}
		}
	}

	ordered := make([]row, 0, len(matches))
	for _, m := range matches {
		ordered = append(ordered, m)
	}

	slices.SortFunc(ordered, func(a, b row) int {
		return cmp.Compare(a.seq, b.seq)
	})

	return factsOf(ordered), nil
}

const selectFacts string = `SELECT seq, fact_id, item_id, property, ts, value::text FROM facts`

func candidatesOf(q facts.Query) (string, []any) {
	if q.ItemID != nil {
		return ` WHERE item_id = ANY($1)`, []any{q.ItemID}
	}

	if q.FactID != nil {
		return ` WHERE fact_id = ANY($1)`, []any{q.FactID}
	}

	if q.Property != "" {
		return ` WHERE property = $1`, []any{q.Property}
	}

	return "", nil
}

type row struct {
	seq  int64
	fact facts.Fact
}

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]row, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch facts: %w", err)
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (row, error) {
		var result row
		var value string

		err := r.Scan(&result.seq, &result.fact.FactID, &result.fact.ItemID, &result.fact.Property, &result.fact.Timestamp, &value)
		if err != nil {
			return row{}, fmt.Errorf("scan fact: %w", err)
		}

		if err := json.Unmarshal([]byte(value), &result.fact.Value); err != nil {
			return row{}, fmt.Errorf("unmarshal value of fact %s: %w", result.fact.FactID, err)
		}

		return result, nil
	})
}

func factsOf(rows []row) []facts.Fact {
	result := make([]facts.Fact, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.fact)
	}
	return result
}
