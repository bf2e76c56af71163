// Package metadata keeps a sqlite manifest of cache entries: what each key
// holds, where it lives, and when it was created. The files themselves are
// the source of truth; the manifest only serves cache inspection and
// clearing, and losing it is harmless.
package metadata

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type preparedStatementKey string

const (
	upsertEntryStmt  preparedStatementKey = "upsertEntryStmt"
	listEntriesStmt  preparedStatementKey = "listEntriesStmt"
	removeEntryStmt  preparedStatementKey = "removeEntryStmt"
	clearEntriesStmt preparedStatementKey = "clearEntriesStmt"
)

const (
	// KindVideo marks a downloaded video file keyed by video ID.
	KindVideo = "video"
	// KindFrames marks a deduplicated frame set keyed by video ID, crop
	// parameters and time range.
	KindFrames = "frames"
)

// Entry describes one cache entry.
type Entry struct {
	Kind      string    `json:"kind"`
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
}

type Manifest struct {
	db                 *sql.DB
	preparedStatements map[preparedStatementKey]*sql.Stmt
}

// Open opens (creating if necessary) the manifest database at dbPath.
func Open(dbPath string) (*Manifest, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	schemaBytes, err := SchemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close() // nolint: errcheck
		log.Error().Err(err).Msg("Failed to read schema.sql")
		return nil, err
	}

	_, err = db.Exec(string(schemaBytes))
	if err != nil {
		db.Close() // nolint: errcheck
		log.Error().Err(err).Msg("Failed to execute schema.sql")
		return nil, err
	}

	preparedStatements := make(map[preparedStatementKey]*sql.Stmt)
	for key, query := range map[preparedStatementKey]string{
		upsertEntryStmt: `INSERT INTO cache_entries (kind, key, path, source_url) VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET path=excluded.path, source_url=excluded.source_url, created_at=CURRENT_TIMESTAMP`,
		listEntriesStmt:  `SELECT kind, key, path, source_url, created_at FROM cache_entries ORDER BY created_at, key`,
		removeEntryStmt:  `DELETE FROM cache_entries WHERE key = ?`,
		clearEntriesStmt: `DELETE FROM cache_entries`,
	} {
		stmt, err := db.Prepare(query)
		if err != nil {
			db.Close() // nolint: errcheck
			return nil, err
		}

		preparedStatements[key] = stmt
	}

	return &Manifest{
		db:                 db,
		preparedStatements: preparedStatements,
	}, nil
}

// Record inserts or refreshes the entry for e.Key.
func (m *Manifest) Record(ctx context.Context, e Entry) error {
	_, err := m.preparedStatements[upsertEntryStmt].ExecContext(ctx, e.Kind, e.Key, e.Path, e.SourceURL)
	return err
}

// List returns all entries ordered by creation time.
func (m *Manifest) List(ctx context.Context) ([]Entry, error) {
	rows, err := m.preparedStatements[listEntriesStmt].QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Kind, &e.Key, &e.Path, &e.SourceURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove drops the entry for key, if any.
func (m *Manifest) Remove(ctx context.Context, key string) error {
	_, err := m.preparedStatements[removeEntryStmt].ExecContext(ctx, key)
	return err
}

// Clear drops every entry.
func (m *Manifest) Clear(ctx context.Context) error {
	_, err := m.preparedStatements[clearEntriesStmt].ExecContext(ctx)
	return err
}

func (m *Manifest) Close() error {
	return m.db.Close()
}
