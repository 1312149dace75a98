// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// The driver is mattn/go-sqlite3 rather than a pure-Go port because the
// similarity index relies on the sqlite-vec extension, whose Go bindings
// register against this driver (vec.Auto() below). Everything else goes
// through database/sql and is driver-agnostic.
package sqlite

import (
	"database/sql"
	"fmt"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// EmbeddingDim is the vector length the embedding provider returns and the
// vec_ideas table is declared with. Vectors of any other length are
// rejected at the boundary.
const EmbeddingDim = 1536

func init() {
	// Auto-load the sqlite-vec extension on every new connection.
	vec.Auto()
}

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all tables keeps transactions that span tables
// (deal insert + offer counter) inside a single component.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight; we serve
	// list queries and vote updates from the same file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL DEFAULT '',
			photo      TEXT NOT NULL DEFAULT '',
			type       TEXT NOT NULL DEFAULT 'founder',
			twitter    TEXT NOT NULL DEFAULT '',
			linkedin   TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS address_detail (
			id      TEXT PRIMARY KEY,
			country TEXT NOT NULL DEFAULT '',
			state   TEXT NOT NULL DEFAULT '',
			suburb  TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating address_detail table: %w", err)
	}

	// media and tags are JSON arrays serialized into TEXT columns; the
	// repository owns the (de)serialization so callers only see slices.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS ideas (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			media       TEXT NOT NULL DEFAULT '[]',
			upvotes     INTEGER NOT NULL DEFAULT 0,
			downvotes   INTEGER NOT NULL DEFAULT 0,
			industry    TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '[]',
			address_id  TEXT NOT NULL REFERENCES address_detail(id),
			verified    INTEGER NOT NULL DEFAULT 0,
			embedded    INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_ideas_user_id ON ideas(user_id);
		CREATE INDEX IF NOT EXISTS idx_ideas_upvotes ON ideas(upvotes DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating ideas table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS offers (
			id             TEXT PRIMARY KEY,
			idea_id        TEXT NOT NULL REFERENCES ideas(id),
			user_id        TEXT NOT NULL REFERENCES users(id),
			description    TEXT NOT NULL DEFAULT '',
			commission     REAL NOT NULL DEFAULT 0,
			active         INTEGER NOT NULL DEFAULT 1,
			payment_link   TEXT NOT NULL DEFAULT '',
			promotion_code TEXT NOT NULL DEFAULT '',
			deal_counts    INTEGER NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_offers_idea_id ON offers(idea_id);
		CREATE INDEX IF NOT EXISTS idx_offers_user_id ON offers(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating offers table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			id         TEXT PRIMARY KEY,
			offer_id   TEXT NOT NULL REFERENCES offers(id),
			from_user  TEXT NOT NULL REFERENCES users(id),
			to_user    TEXT NOT NULL REFERENCES users(id),
			status     INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_deals_offer_id ON deals(offer_id);
		CREATE INDEX IF NOT EXISTS idx_deals_to_user ON deals(to_user);
	`)
	if err != nil {
		return fmt.Errorf("creating deals table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS webhooks (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			url         TEXT NOT NULL,
			secret_hash TEXT NOT NULL,
			active      INTEGER NOT NULL DEFAULT 1,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_webhooks_user_id ON webhooks(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating webhooks table: %w", err)
	}

	// vec0 virtual table holding one embedding per idea. Cosine distance,
	// so distance = 1 - similarity and both live in [0, 2].
	_, err = db.conn.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS vec_ideas USING vec0(
			idea_id TEXT PRIMARY KEY,
			embedding FLOAT[%d] distance_metric=cosine
		);
	`, EmbeddingDim))
	if err != nil {
		return fmt.Errorf("creating vec_ideas table: %w", err)
	}

	return nil
}
