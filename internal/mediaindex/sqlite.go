package mediaindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"mediato115/internal/config"
	"mediato115/internal/services"
	"mediato115/internal/sqlitex"
	"mediato115/internal/textutil"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const entryColumns = "item_id, title, item_type, path"

// Store reads media entries from a host-style SQLite table.
type Store struct {
	db    *sql.DB
	path  string
	table string
}

// ImportRecord is the JSON shape accepted by Import.
type ImportRecord struct {
	ItemID   string `json:"item_id"`
	Title    string `json:"title"`
	ItemType string `json:"item_type"`
	Path     string `json:"path"`
	Server   string `json:"server,omitempty"`
	Library  string `json:"library,omitempty"`
	Year     string `json:"year,omitempty"`
}

// OpenSQLite opens the index database at path. The table is created when the
// database does not carry one yet so a standalone install can be seeded with
// Import; an existing host table is used as-is.
func OpenSQLite(path, table string) (*Store, error) {
	if table == "" {
		table = "mediaserver_item"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, services.Wrap(services.ErrConfiguration, "mediaindex", "open", fmt.Sprintf("invalid table name %q", table), nil)
	}
	db, err := sqlitex.Open(path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path, table: table}
	if err := store.ensureTable(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func openSQLiteFromConfig(cfg *config.Config) (*Store, error) {
	return OpenSQLite(cfg.Index.DBPath, cfg.Index.Table)
}

func (s *Store) ensureTable(ctx context.Context) error {
	exists, err := sqlitex.TableExists(ctx, s.db, s.table)
	if err != nil || exists {
		return err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    server TEXT,
    library TEXT,
    item_id TEXT NOT NULL,
    item_type TEXT,
    title TEXT,
    year TEXT,
    path TEXT,
    lst_mod_date TEXT
);
CREATE INDEX IF NOT EXISTS ix_%[1]s_item_id ON %[1]s (item_id);
CREATE INDEX IF NOT EXISTS ix_%[1]s_title ON %[1]s (title);`, s.table)
	if _, err := sqlitex.Exec(ctx, s.db, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// Name implements Backend.
func (s *Store) Name() string { return config.IndexBackendSQLite }

// Path returns the database file backing the store.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database answers queries against the index table.
func (s *Store) Ping(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+s.table).Scan(&count); err != nil {
		return fmt.Errorf("query %s: %w", s.table, err)
	}
	return nil
}

// SearchTitle returns entries whose title contains query, ignoring case, in
// insertion order. ASCII queries are answered by SQLite LIKE; other queries are
// folded in Go because LIKE only ignores ASCII case.
func (s *Store) SearchTitle(ctx context.Context, query string) ([]Entry, error) {
	if textutil.IsASCII(query) {
		pattern := "%" + textutil.EscapeLike(query) + "%"
		return s.query(ctx, "search",
			`SELECT `+entryColumns+` FROM `+s.table+` WHERE title LIKE ? ESCAPE '\' ORDER BY id`, pattern)
	}

	all, err := s.query(ctx, "search", `SELECT `+entryColumns+` FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	matches := all[:0]
	for _, entry := range all {
		if textutil.ContainsFold(entry.Title, query) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// LookupID returns entries with the given item_id.
func (s *Store) LookupID(ctx context.Context, id string) ([]Entry, error) {
	return s.query(ctx, "lookup", `SELECT `+entryColumns+` FROM `+s.table+` WHERE item_id = ? ORDER BY id`, id)
}

// List returns up to limit entries in insertion order. A limit <= 0 lists all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return s.query(ctx, "list", `SELECT `+entryColumns+` FROM `+s.table+` ORDER BY id`)
	}
	return s.query(ctx, "list", `SELECT `+entryColumns+` FROM `+s.table+` ORDER BY id LIMIT ?`, limit)
}

func (s *Store) query(ctx context.Context, operation, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mediaindex", operation, "query failed", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			itemID   string
			title    sql.NullString
			itemType sql.NullString
			path     sql.NullString
		)
		if err := rows.Scan(&itemID, &title, &itemType, &path); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, Entry{
			ID:        itemID,
			Title:     title.String,
			Type:      ParseMediaType(itemType.String),
			TypeLabel: itemType.String,
			Path:      path.String,
		})
	}
	return entries, rows.Err()
}

// Upsert inserts rec or updates the row that already carries its item_id.
func (s *Store) Upsert(ctx context.Context, rec ImportRecord) error {
	rec.ItemID = strings.TrimSpace(rec.ItemID)
	if rec.ItemID == "" {
		return services.Wrap(services.ErrValidation, "mediaindex", "upsert", "item_id is required", nil)
	}
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	res, err := sqlitex.Exec(ctx, s.db,
		`UPDATE `+s.table+` SET title = ?, item_type = ?, path = ?, server = ?, library = ?, year = ?, lst_mod_date = ?
         WHERE item_id = ?`,
		rec.Title,
		rec.ItemType,
		sqlitex.NullableString(rec.Path),
		sqlitex.NullableString(rec.Server),
		sqlitex.NullableString(rec.Library),
		sqlitex.NullableString(rec.Year),
		now,
		rec.ItemID,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", rec.ItemID, err)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}
	if _, err := sqlitex.Exec(ctx, s.db,
		`INSERT INTO `+s.table+` (item_id, title, item_type, path, server, library, year, lst_mod_date)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ItemID,
		rec.Title,
		rec.ItemType,
		sqlitex.NullableString(rec.Path),
		sqlitex.NullableString(rec.Server),
		sqlitex.NullableString(rec.Library),
		sqlitex.NullableString(rec.Year),
		now,
	); err != nil {
		return fmt.Errorf("insert entry %s: %w", rec.ItemID, err)
	}
	return nil
}

// Import upserts every record in a JSON array read from r and returns how many
// were written.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	var records []ImportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, services.Wrap(services.ErrValidation, "mediaindex", "import", "decode records", err)
	}
	for i, rec := range records {
		if err := s.Upsert(ctx, rec); err != nil {
			return i, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return len(records), nil
}
