package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
)

// Store persists facts in a single SQLite table
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens or creates a SQLite database at the given path
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db, now: time.Now}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		fact_id    TEXT NOT NULL UNIQUE,
		item_id    TEXT NOT NULL,
		property   TEXT NOT NULL,
		ts         INTEGER NOT NULL,
		value      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_facts_item_id ON facts(item_id);
	CREATE INDEX IF NOT EXISTS idx_facts_property ON facts(property);
	`
	_, err := s.db.Exec(schema)
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, f := range made {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts WHERE fact_id = ?`, f.FactID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check fact %s: %w", f.FactID, err)
		}

		if exists > 0 {
			return nil, errors.NewAlreadyExistsError(fmt.Sprintf("fact %s already exists", f.FactID))
		}

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value of fact %s: %w", f.FactID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO facts (fact_id, item_id, property, ts, value) VALUES (?, ?, ?, ?, ?)`,
			f.FactID, f.ItemID, f.Property, f.Timestamp, string(value),
		)
		if err != nil {
			return nil, fmt.Errorf("insert fact %s: %w", f.FactID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return made, nil
}

func (s *Store) FetchFact(ctx context.Context, factID string) (facts.Fact, error) {
	rows, err := s.db.QueryContext(ctx, selectFacts+` WHERE fact_id = ?`, factID)
	if err != nil {
		return facts.Fact{}, fmt.Errorf("fetch fact: %w", err)
	}

	found, err := scanFacts(rows)
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
		rows, err := s.db.QueryContext(ctx, selectFacts+` ORDER BY seq`)
		if err != nil {
			return nil, fmt.Errorf("fetch facts: %w", err)
		}

		all, err := scanFacts(rows)
		if err != nil {
			return nil, err
		}

		return factsOf(all), nil
	}

	matches := map[string]row{}

	for _, q := range queries {
		where, args := candidatesOf(q)

		rows, err := s.db.QueryContext(ctx, selectFacts+where, args...)
		if err != nil {
			return nil, fmt.Errorf("fetch facts: %w", err)
		}

		candidates, err := scanFacts(rows)
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

const selectFacts string = `SELECT seq, fact_id, item_id, property, ts, value FROM facts`

func candidatesOf(q facts.Query) (string, []any) {
	if q.ItemID != nil {
		return inClause("item_id", q.ItemID)
	}

	if q.FactID != nil {
		return inClause("fact_id", q.FactID)
	}

	if q.Property != "" {
		return ` WHERE property = ?`, []any{q.Property}
	}

	return "", nil
}

func inClause(column string, values []string) (string, []any) {
	if len(values) == 0 {
		return ` WHERE 1 = 0`, nil
	}

	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return fmt.Sprintf(` WHERE %s IN (%s)`, column, placeholders), args
}

type row struct {
	seq  int64
	fact facts.Fact
}

func scanFacts(rows *sql.Rows) ([]row, error) {
	defer rows.Close()

	result := []row{}

	for rows.Next() {
		var r row
		var value string

		err := rows.Scan(&r.seq, &r.fact.FactID, &r.fact.ItemID, &r.fact.Property, &r.fact.Timestamp, &value)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}

		if err := json.Unmarshal([]byte(value), &r.fact.Value); err != nil {
			return nil, fmt.Errorf("unmarshal value of fact %s: %w", r.fact.FactID, err)
		}

		result = append(result, r)
	}

	return result, rows.Err()
}

func factsOf(rows []row) []facts.Fact {
	result := make([]facts.Fact, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.fact)
	}
	return result
}
