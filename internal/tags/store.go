package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/packforge/packd/internal/paths"
	"github.com/packforge/packd/internal/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	target     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_target ON tags(target);
`

// Default page size for listings when the client does not set a limit.
const DefaultLimit = 20

// A SQLite-backed registry of tags pointing at image targets.
type Store struct {
	db *sql.DB
}

// Opens (and creates if needed) the tag database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tag database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping tag database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Registers a new tag.
//
// The target may be an image reference or the name of an existing tag; in
// the latter case the new tag points directly at the existing tag's target,
// so the registry never holds tag-to-tag chains.
func (s *Store) Create(ctx context.Context, name, target string) (protocol.TagRecord, error) {
	if err := ValidName(name); err != nil {
		return protocol.TagRecord{}, err
	}

	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return protocol.TagRecord{}, err
	}

	rec := protocol.TagRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Target:    resolved,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, target, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Target, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return protocol.TagRecord{}, fmt.Errorf("%w: %q", ErrExists, name)
		}
		return protocol.TagRecord{}, fmt.Errorf("insert tag: %w", err)
	}

	return rec, nil
}

// Repoints an existing tag at a new target.
func (s *Store) Update(ctx context.Context, name, target string) (protocol.TagRecord, error) {
	existing, err := s.Get(ctx, name)
	if err != nil {
		return protocol.TagRecord{}, err
	}

	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return protocol.TagRecord{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tags SET target = ? WHERE id = ?`, resolved, existing.ID)
	if err != nil {
		return protocol.TagRecord{}, fmt.Errorf("update tag: %w", err)
	}

	existing.Target = resolved
	return existing, nil
}

// Looks up a tag by name.
func (s *Store) Get(ctx context.Context, name string) (protocol.TagRecord, error) {
	if err := ValidName(name); err != nil {
		return protocol.TagRecord{}, err
	}

	var rec protocol.TagRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, target, created_at FROM tags WHERE name = ?`, name,
	).Scan(&rec.ID, &rec.Name, &rec.Target, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return protocol.TagRecord{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return protocol.TagRecord{}, fmt.Errorf("query tag: %w", err)
	}

	return rec, nil
}

// Removes a tag by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return nil
}

// Returns a page of tags ordered newest first.
//
// A non-empty target restricts the page to tags pointing at that target.
// The result's total is the unpaginated count so clients can page.
func (s *Store) List(ctx context.Context, skip, limit int, target string) (protocol.TagListResult, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	result := protocol.TagListResult{Skip: skip, Limit: limit, Data: []protocol.TagRecord{}}

	where := ""
	args := []any{}
	if target != "" {
		where = " WHERE target = ?"
		args = append(args, target)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags`+where, args...,
	).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count tags: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target, created_at FROM tags`+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, skip)...,
	)
	if err != nil {
		return result, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec protocol.TagRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Target, &rec.CreatedAt); err != nil {
			return result, fmt.Errorf("scan tag: %w", err)
		}
		result.Data = append(result.Data, rec)
	}

	return result, rows.Err()
}

// Returns the number of registered tags.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// Resolves a target through the registry.
//
// If the target names an existing tag, the existing tag's own target is
// used. Otherwise the target is stored as given.
func (s *Store) resolveTarget(ctx context.Context, target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("empty tag target")
	}

	if err := ValidName(target); err != nil {
		return target, nil
	}

	existing, err := s.Get(ctx, target)
	if errors.Is(err, ErrNotFound) {
		return target, nil
	}
	if err != nil {
		return "", err
	}

	return existing.Target, nil
}

// Detects a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
