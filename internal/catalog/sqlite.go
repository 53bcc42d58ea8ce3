package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// DefaultTable is the table read when SQLite.Table is empty
const DefaultTable = "items"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads a catalog from a SQLite database.
// The table has columns id INTEGER, name TEXT, summary TEXT and tags TEXT,
// where tags holds a JSON array of strings.
type SQLite struct {
	Path  string
	Table string
}

// Load reads every row of the catalog table in id order
func (s *SQLite) Load(ctx context.Context) ([]recommend.Item, error) {
	table := s.Table
	if table == "" {
		table = DefaultTable
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	// sql.Open would silently create a new empty database
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(s.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name, summary, tags FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog table %s: %w", table, err)
	}
	defer rows.Close()

	var items []recommend.Item
	for rows.Next() {
		var (
			id      sql.NullInt64
			name    sql.NullString
			summary sql.NullString
			tags    sql.NullString
		)
		if err := rows.Scan(&id, &name, &summary, &tags); err != nil {
			return nil, fmt.Errorf("row %d: %w", len(items), err)
		}

		item, err := rowItem(len(items), id, name, summary, tags)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	if err := recommend.ValidateItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []recommend.Item{}
	}
	return items, nil
}

// readOnlyDSN builds a SQLite URI filename that opens path read-only
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String()
}

func rowItem(index int, id sql.NullInt64, name, summary, tags sql.NullString) (recommend.Item, error) {
	switch {
	case !id.Valid:
		return recommend.Item{}, fmt.Errorf("row %d: id is NULL", index)
	case !name.Valid:
		return recommend.Item{}, fmt.Errorf("row %d: name is NULL", index)
	case !summary.Valid:
		return recommend.Item{}, fmt.Errorf("row %d: summary is NULL", index)
	case !tags.Valid:
		return recommend.Item{}, fmt.Errorf("row %d: tags is NULL", index)
	}

	var tagList []string
	if err := json.Unmarshal([]byte(tags.String), &tagList); err != nil {
		return recommend.Item{}, fmt.Errorf("row %d: tags is not a JSON array of strings: %w", index, err)
	}

	return recommend.Item{
		ID:      int(id.Int64),
		Name:    name.String,
		Summary: summary.String,
		Tags:    tagList,
	}, nil
}

// WriteSQLite creates (or replaces) a catalog database at path holding items
func WriteSQLite(ctx context.Context, path string, items []recommend.Item) error {
	if err := recommend.ValidateItems(items); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		summary TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]'
	);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (id, name, summary, tags) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		tags := item.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for %q: %w", item.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name, item.Summary, string(tagsJSON)); err != nil {
			return fmt.Errorf("failed to insert %q: %w", item.Name, err)
		}
	}

	meta := map[string]string{
		"version":     "1",
		"item_count":  fmt.Sprint(len(items)),
		"imported_at": time.Now().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to store metadata: %w", err)
		}
	}

	return tx.Commit()
}
