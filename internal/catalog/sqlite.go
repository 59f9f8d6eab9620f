package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/peter-guba/benchmaker/internal/scenario"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// Workers share the store; one connection serializes their writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) WriteBattle(ctx context.Context, b scenario.Battle) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO battles (id, environment) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET environment = excluded.environment
		`, b.ID, b.Environment); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM placements WHERE battle_id = ?`, b.ID); err != nil {
			return err
		}
		for i, p := range b.Placements {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO placements (battle_id, seq, player, unit, q, r)
				VALUES (?, ?, ?, ?, ?, ?)
			`, b.ID, i, p.Player, p.Unit.String(), p.Pos.Q, p.Pos.R); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) WriteBattleSet(ctx context.Context, set scenario.BattleSet) error {
	return s.writeSet(ctx, "battle_sets", "battle_set_members", set.ID, set.Battles)
}

func (s *SQLiteStore) WriteBenchmark(ctx context.Context, b scenario.Benchmark) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO benchmarks (id, agent_a, agent_b, battle_set, max_rounds, symmetric, repeats)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_a = excluded.agent_a,
			agent_b = excluded.agent_b,
			battle_set = excluded.battle_set,
			max_rounds = excluded.max_rounds,
			symmetric = excluded.symmetric,
			repeats = excluded.repeats
	`, b.ID, b.AgentA, b.AgentB, b.BattleSet, b.MaxRounds, b.Symmetric, b.Repeats)
	return err
}

func (s *SQLiteStore) WriteBenchmarkSet(ctx context.Context, set scenario.BenchmarkSet) error {
	return s.writeSet(ctx, "benchmark_sets", "benchmark_set_members", set.ID, set.Benchmarks)
}

// writeSet replaces the set id and its ordered members. Table names are
// constants chosen by the callers above.
func (s *SQLiteStore) writeSet(ctx context.Context, table, members, id string, ids []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (id) VALUES (?)`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+members+` WHERE set_id = ?`, id); err != nil {
			return err
		}
		for i, member := range ids {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO `+members+` (set_id, seq, member_id) VALUES (?, ?, ?)
			`, id, i, member); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetBattle(ctx context.Context, id string) (scenario.Battle, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return scenario.Battle{}, false, err
	}

	b := scenario.Battle{ID: id}
	err = db.QueryRowContext(ctx, `SELECT environment FROM battles WHERE id = ?`, id).Scan(&b.Environment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scenario.Battle{}, false, nil
		}
		return scenario.Battle{}, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT player, unit, q, r FROM placements WHERE battle_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return scenario.Battle{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p    scenario.Placement
			unit string
		)
		if err := rows.Scan(&p.Player, &unit, &p.Pos.Q, &p.Pos.R); err != nil {
			return scenario.Battle{}, false, err
		}
		if p.Unit, err = parseUnit(unit); err != nil {
			return scenario.Battle{}, false, fmt.Errorf("battle %s: %w", id, err)
		}
		b.Placements = append(b.Placements, p)
	}
	if err := rows.Err(); err != nil {
		return scenario.Battle{}, false, err
	}
	return b, true, nil
}

func (s *SQLiteStore) GetBenchmark(ctx context.Context, id string) (scenario.Benchmark, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return scenario.Benchmark{}, false, err
	}

	b := scenario.Benchmark{ID: id}
	err = db.QueryRowContext(ctx, `
		SELECT agent_a, agent_b, battle_set, max_rounds, symmetric, repeats
		FROM benchmarks WHERE id = ?
	`, id).Scan(&b.AgentA, &b.AgentB, &b.BattleSet, &b.MaxRounds, &b.Symmetric, &b.Repeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scenario.Benchmark{}, false, nil
		}
		return scenario.Benchmark{}, false, err
	}
	return b, true, nil
}

func (s *SQLiteStore) Summary(ctx context.Context) (Summary, error) {
	db, err := s.getDB()
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	err = db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM battles),
			(SELECT COUNT(*) FROM placements),
			(SELECT COUNT(*) FROM battle_sets),
			(SELECT COUNT(*) FROM benchmarks),
			(SELECT COUNT(*) FROM benchmark_sets)
	`).Scan(&sum.Battles, &sum.Placements, &sum.BattleSets, &sum.Benchmarks, &sum.BenchmarkSets)
	return sum, err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseUnit(s string) (scenario.UnitType, error) {
	for _, u := range []scenario.UnitType{scenario.Battleship, scenario.Destroyer} {
		if u.String() == s {
			return u, nil
		}
	}
	return 0, fmt.Errorf("unknown unit type %q", s)
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS battles (
			id TEXT PRIMARY KEY,
			environment TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS placements (
			battle_id TEXT NOT NULL REFERENCES battles(id),
			seq INTEGER NOT NULL,
			player INTEGER NOT NULL,
			unit TEXT NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			PRIMARY KEY (battle_id, seq)
		);
		CREATE TABLE IF NOT EXISTS battle_sets (
			id TEXT PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS battle_set_members (
			set_id TEXT NOT NULL REFERENCES battle_sets(id),
			seq INTEGER NOT NULL,
			member_id TEXT NOT NULL,
			PRIMARY KEY (set_id, seq)
		);
		CREATE TABLE IF NOT EXISTS benchmarks (
			id TEXT PRIMARY KEY,
			agent_a TEXT NOT NULL,
			agent_b TEXT NOT NULL,
			battle_set TEXT NOT NULL,
			max_rounds INTEGER NOT NULL,
			symmetric INTEGER NOT NULL,
			repeats INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS benchmark_sets (
			id TEXT PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS benchmark_set_members (
			set_id TEXT NOT NULL REFERENCES benchmark_sets(id),
			seq INTEGER NOT NULL,
			member_id TEXT NOT NULL,
			PRIMARY KEY (set_id, seq)
		);
	`)
	return err
}
