// Package persistence records a colony run in SQLite: the event log, tick
// metadata and the daily statistics. It is an observation log, not a save
// file; a simulation cannot be restored from it.
package persistence

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/talgya/colony/internal/engine"
)

// DB wraps a SQLite connection. Every row it writes is tagged with the
// session ID issued when it was opened.
type DB struct {
	conn    *sqlx.DB
	session string
	log     zerolog.Logger
}

// Open opens or creates a SQLite database at the given path and starts a
// new session. ":memory:" gives a throwaway store.
func Open(path string, log zerolog.Logger) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writes.
	conn.SetMaxOpenConns(1)

	db := &DB{
		conn:    conn,
		session: uuid.NewString(),
		log:     log.With().Str("component", "persistence").Logger(),
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db.log.Info().Str("path", path).Str("session", db.session).Msg("event store opened")
	return db, nil
}

// Session returns this run's session ID.
func (db *DB) Session() string {
	return db.session
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		session TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (session, key)
	);

	CREATE TABLE IF NOT EXISTS daily_stats (
		session TEXT NOT NULL,
		tick INTEGER NOT NULL,
		generation INTEGER NOT NULL,
		population INTEGER NOT NULL,
		plants INTEGER NOT NULL,
		mature_plants INTEGER NOT NULL,
		food_items INTEGER NOT NULL,
		rotten_food INTEGER NOT NULL,
		materials INTEGER NOT NULL,
		avg_food REAL NOT NULL,
		avg_sleep REAL NOT NULL,
		avg_entertainment REAL NOT NULL,
		meals INTEGER NOT NULL,
		harvests INTEGER NOT NULL,
		tasks_json TEXT NOT NULL,
		PRIMARY KEY (session, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_events_session_tick ON events(session, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents appends events to the log.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		meta := []byte("{}")
		if len(e.Meta) > 0 {
			if meta, err = json.Marshal(e.Meta); err != nil {
				return fmt.Errorf("encode meta for tick %d: %w", e.Tick, err)
			}
		}
		_, err := tx.Exec(
			"INSERT INTO events (session, seq, tick, description, category, meta_json) VALUES (?, ?, ?, ?, ?, ?)",
			db.session, e.Seq, e.Tick, e.Description, e.Category, string(meta),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair for this session.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (session, key, value) VALUES (?, ?, ?)",
		db.session, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value for this session.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE session = ? AND key = ?", db.session, key)
	return value, err
}

// SaveDailyStats records one day's aggregates.
func (db *DB) SaveDailyStats(st engine.SimStats) error {
	tasks := make(map[string]int, len(st.Tasks))
	for t, n := range st.Tasks {
		tasks[t.String()] = n
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	_, err = db.conn.Exec(`INSERT OR REPLACE INTO daily_stats (
		session, tick, generation, population, plants, mature_plants, food_items,
		rotten_food, materials, avg_food, avg_sleep, avg_entertainment, meals, harvests, tasks_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		db.session, st.Tick, st.Generation, st.Population, st.Plants, st.MaturePlants, st.FoodItems,
		st.RottenFood, st.Materials, st.AvgFood, st.AvgSleep, st.AvgEntertainment, st.Meals, st.Harvests,
		string(tasksJSON),
	)
	return err
}

// SaveSnapshot records the session's latest tick, seed and generation
// along with the events gathered since the previous snapshot.
func (db *DB) SaveSnapshot(sim *engine.Simulation, events []engine.Event) error {
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	meta := map[string]string{
		"last_tick":  strconv.FormatUint(sim.CurrentTick(), 10),
		"seed":       strconv.FormatInt(sim.Seed(), 10),
		"generation": strconv.Itoa(sim.Generation()),
	}
	for k, v := range meta {
		if err := db.SaveMeta(k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}
	db.log.Debug().Int("events", len(events)).Str("last_tick", meta["last_tick"]).Msg("snapshot saved")
	return nil
}

type eventRow struct {
	Seq         uint64 `db:"seq"`
	Tick        uint64 `db:"tick"`
	Description string `db:"description"`
	Category    string `db:"category"`
	MetaJSON    string `db:"meta_json"`
}

// RecentEvents returns the most recent N events of this session, newest
// first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT seq, tick, description, category, meta_json FROM events WHERE session = ? ORDER BY id DESC LIMIT ?",
		db.session, limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Seq: r.Seq, Tick: r.Tick, Description: r.Description, Category: r.Category}
		if r.MetaJSON != "" && r.MetaJSON != "{}" {
			if err := json.Unmarshal([]byte(r.MetaJSON), &e.Meta); err != nil {
				return nil, fmt.Errorf("decode meta: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// DailyStatsCount returns how many daily rows this session has written.
func (db *DB) DailyStatsCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM daily_stats WHERE session = ?", db.session)
	return n, err
}
