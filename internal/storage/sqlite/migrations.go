package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// The id_allocator row is seeded once and advanced by InsertPool in the
// same transaction as each pool insert, so the counter can never run ahead
// of or behind the pools table.
const schema = `
CREATE TABLE IF NOT EXISTS pools (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    total_amount INTEGER NOT NULL,
    installment_amount INTEGER NOT NULL,
    participant_limit INTEGER NOT NULL,
    deadline INTEGER NOT NULL,
    deadline_ns INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    created_at_ns INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pool_participants (
    pool_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    member TEXT NOT NULL,
    PRIMARY KEY (pool_id, position),
    UNIQUE (pool_id, member),
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS id_allocator (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    next_id INTEGER NOT NULL
);

INSERT OR IGNORE INTO id_allocator (id, next_id) VALUES (1, 1);

CREATE INDEX IF NOT EXISTS idx_pool_participants_member ON pool_participants(member);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
