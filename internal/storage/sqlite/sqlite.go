// Package sqlite provides a SQLite-backed implementation of the
// storage.Client interface with an in-process change feed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mkrause/hauslist/internal/storage"
)

// Ensure Store implements storage.Client
var _ storage.Client = (*Store)(nil)

// Store implements storage.Client using SQLite. Change notifications
// are emitted in-process after each committed mutation, which makes the
// store usable as the "remote" end for the sync engine in tests and in
// single-node deployments.
type Store struct {
	db       *sql.DB
	notifier *notifier

	// writeMu serializes write transactions. SQLite allows a single
	// writer; queueing here avoids SQLITE_BUSY churn under concurrent
	// mutations.
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// New creates a new Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, notifier: newNotifier()}, nil
}

// Close closes the database connection and drops all subscriptions.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notifier.closeAll()
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Select reads rows from a resource.
func (s *Store) Select(ctx context.Context, res string, columns []string, filters []storage.Filter, order *storage.Order) ([]storage.Row, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	spec, ok := resources[res]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownResource, res)
	}

	if len(columns) == 0 {
		columns = spec.columns
	}
	for _, c := range columns {
		if !spec.hasColumn(c) {
			return nil, fmt.Errorf("unknown column %q on %s", c, res)
		}
	}

	where, args, err := buildWhere(spec, res, filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), res, where)
	if order != nil {
		if !spec.hasColumn(order.Column) {
			return nil, fmt.Errorf("unknown order column %q on %s", order.Column, res)
		}
		dir := "ASC"
		if order.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", order.Column, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", res, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Insert writes the given rows atomically and returns them as stored.
// Missing IDs are generated, missing timestamp columns filled in.
func (s *Store) Insert(ctx context.Context, res string, rows []storage.Row) ([]storage.Row, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	spec, err := writableResource(res)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	stored := make([]storage.Row, 0, len(rows))
	for _, row := range rows {
		prepared, err := prepareInsert(spec, res, row)
		if err != nil {
			return nil, err
		}
		stored = append(stored, prepared)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range stored {
		cols := make([]string, 0, len(row))
		placeholders := make([]string, 0, len(row))
		args := make([]any, 0, len(row))
		for _, c := range spec.columns {
			v, ok := row[c]
			if !ok {
				continue
			}
			cols = append(cols, c)
			placeholders = append(placeholders, "?")
			args = append(args, bindValue(v))
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			res, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", res, err)
		}
	}

	// Re-read before commit so the result carries column defaults the
	// caller did not set.
	ids := make([]any, 0, len(stored))
	for _, row := range stored {
		ids = append(ids, row["id"])
	}
	persisted, err := rowsByID(ctx, tx, spec, res, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]storage.Row, len(persisted))
	for _, r := range persisted {
		byID[r.String("id")] = r
	}
	result := make([]storage.Row, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id.(string)]; ok {
			result = append(result, r)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert: %w", err)
	}

	for _, row := range result {
		s.notifier.emit(storage.Event{Resource: res, Kind: storage.EventInsert, Row: row})
	}
	return result, nil
}

// Update applies patch to every matching row and returns the updated rows.
func (s *Store) Update(ctx context.Context, res string, patch storage.Row, filters []storage.Filter) ([]storage.Row, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	spec, err := writableResource(res)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("empty patch for %s", res)
	}

	sets := make([]string, 0, len(patch))
	setArgs := make([]any, 0, len(patch))
	for _, c := range spec.columns {
		v, ok := patch[c]
		if !ok {
			continue
		}
		if c == "id" {
			return nil, fmt.Errorf("cannot patch id column on %s", res)
		}
		sets = append(sets, c+" = ?")
		setArgs = append(setArgs, bindValue(v))
	}
	if len(sets) != len(patch) {
		return nil, fmt.Errorf("patch contains unknown columns for %s", res)
	}

	where, whereArgs, err := buildWhere(spec, res, filters)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := matchingIDs(ctx, tx, res, where, whereArgs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit update: %w", err)
		}
		return nil, nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s%s", res, strings.Join(sets, ", "), where)
	if _, err := tx.ExecContext(ctx, query, append(setArgs, whereArgs...)...); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", res, err)
	}

	updated, err := rowsByID(ctx, tx, spec, res, ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	for _, row := range updated {
		s.notifier.emit(storage.Event{Resource: res, Kind: storage.EventUpdate, Row: row})
	}
	return updated, nil
}

// Upsert inserts row or updates the existing row identified by the
// conflict columns, and returns the resulting row.
func (s *Store) Upsert(ctx context.Context, res string, row storage.Row, conflictColumns []string) (storage.Row, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	spec, err := writableResource(res)
	if err != nil {
		return nil, err
	}
	if len(conflictColumns) == 0 {
		return nil, fmt.Errorf("upsert into %s requires conflict columns", res)
	}
	filters := make([]storage.Filter, 0, len(conflictColumns))
	for _, c := range conflictColumns {
		if !spec.hasColumn(c) {
			return nil, fmt.Errorf("unknown conflict column %q on %s", c, res)
		}
		v, ok := row[c]
		if !ok {
			return nil, fmt.Errorf("upsert row missing conflict column %q", c)
		}
		filters = append(filters, storage.Eq(c, v))
	}

	where, whereArgs, err := buildWhere(spec, res, filters)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := matchingIDs(ctx, tx, res, where, whereArgs)
	if err != nil {
		return nil, err
	}

	var result storage.Row
	kind := storage.EventInsert

	if len(ids) > 0 {
		// Conflict: patch the existing row in place.
		kind = storage.EventUpdate
		patched := row.Clone()
		if spec.autoTimestamp != "" {
			if _, ok := patched[spec.autoTimestamp]; !ok {
				patched[spec.autoTimestamp] = time.Now().Unix()
			}
		}
		sets := make([]string, 0, len(patched))
		args := make([]any, 0, len(patched))
		for _, c := range spec.columns {
			v, ok := patched[c]
			if !ok || c == "id" {
				continue
			}
			sets = append(sets, c+" = ?")
			args = append(args, bindValue(v))
		}
		args = append(args, ids[0])
		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", res, strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to upsert-update %s: %w", res, err)
		}
		rows, err := rowsByID(ctx, tx, spec, res, ids[:1])
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("upsert-update lost row on %s", res)
		}
		result = rows[0]
	} else {
		prepared, err := prepareInsert(spec, res, row)
		if err != nil {
			return nil, err
		}
		cols := make([]string, 0, len(prepared))
		placeholders := make([]string, 0, len(prepared))
		args := make([]any, 0, len(prepared))
		for _, c := range spec.columns {
			v, ok := prepared[c]
			if !ok {
				continue
			}
			cols = append(cols, c)
			placeholders = append(placeholders, "?")
			args = append(args, bindValue(v))
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			res, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to upsert-insert into %s: %w", res, err)
		}
		rows, err := rowsByID(ctx, tx, spec, res, []any{prepared["id"]})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("upsert-insert lost row on %s", res)
		}
		result = rows[0]
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.notifier.emit(storage.Event{Resource: res, Kind: kind, Row: result})
	return result, nil
}

// Delete removes every matching row, emitting one delete event per row
// with its last known values.
func (s *Store) Delete(ctx context.Context, res string, filters []storage.Filter) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	spec, err := writableResource(res)
	if err != nil {
		return err
	}

	where, args, err := buildWhere(spec, res, filters)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(spec.columns, ", "), res, where)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to read %s before delete: %w", res, err)
	}
	doomed, err := scanRows(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", res, where), args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", res, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	for _, row := range doomed {
		s.notifier.emit(storage.Event{Resource: res, Kind: storage.EventDelete, Row: row})
	}
	return nil
}

// SubscribeChanges opens a change feed for a resource. The feed carries
// base-table events only; bind view-backed scopes to the underlying
// tables they join.
func (s *Store) SubscribeChanges(res string, filters []storage.Filter, fn storage.ChangeFunc) (storage.Subscription, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	spec, ok := resources[res]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownResource, res)
	}
	if spec.readOnly {
		return nil, fmt.Errorf("%w: %s has no change feed, subscribe to its base tables", storage.ErrReadOnlyResource, res)
	}
	for _, f := range filters {
		if !spec.hasColumn(f.Column) {
			return nil, fmt.Errorf("unknown filter column %q on %s", f.Column, res)
		}
	}
	return s.notifier.subscribe(res, filters, fn), nil
}

// writableResource resolves a resource and rejects views.
func writableResource(res string) (resource, error) {
	spec, ok := resources[res]
	if !ok {
		return resource{}, fmt.Errorf("%w: %s", storage.ErrUnknownResource, res)
	}
	if spec.readOnly {
		return resource{}, fmt.Errorf("%w: %s", storage.ErrReadOnlyResource, res)
	}
	return spec, nil
}

// prepareInsert validates the row, fills in ID and timestamp defaults
// and returns the exact row that will be stored.
func prepareInsert(spec resource, res string, row storage.Row) (storage.Row, error) {
	for c := range row {
		if !spec.hasColumn(c) {
			return nil, fmt.Errorf("unknown column %q on %s", c, res)
		}
	}
	prepared := row.Clone()
	if id, _ := prepared["id"].(string); id == "" && spec.hasColumn("id") {
		prepared["id"] = uuid.New().String()
	}
	if spec.autoTimestamp != "" {
		if _, ok := prepared[spec.autoTimestamp]; !ok {
			prepared[spec.autoTimestamp] = time.Now().Unix()
		}
	}
	return prepared, nil
}

// buildWhere renders filters into a WHERE clause with bound args.
// An IN filter over an empty set matches nothing by construction.
func buildWhere(spec resource, res string, filters []storage.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if !spec.hasColumn(f.Column) {
			return "", nil, fmt.Errorf("unknown filter column %q on %s", f.Column, res)
		}
		switch f.Op {
		case storage.OpEq:
			clauses = append(clauses, f.Column+" = ?")
			args = append(args, bindValue(f.Value))
		case storage.OpNeq:
			clauses = append(clauses, f.Column+" != ?")
			args = append(args, bindValue(f.Value))
		case storage.OpIn:
			if len(f.Values) == 0 {
				clauses = append(clauses, "1 = 0")
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", f.Column, placeholders))
			for _, v := range f.Values {
				args = append(args, bindValue(v))
			}
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// bindValue converts Go values into SQLite-friendly bind parameters.
func bindValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

// matchingIDs returns the ids of rows matching the WHERE clause.
func matchingIDs(ctx context.Context, tx *sql.Tx, res, where string, args []any) ([]any, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT id FROM %s%s", res, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read ids from %s: %w", res, err)
	}
	defer rows.Close()
	var ids []any
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// rowsByID reads full rows for the given ids.
func rowsByID(ctx context.Context, tx *sql.Tx, spec resource, res string, ids []any) ([]storage.Row, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id IN (%s)",
		strings.Join(spec.columns, ", "), res, placeholders)
	rows, err := tx.QueryContext(ctx, query, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read %s: %w", res, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// scanRows converts a result set into storage.Rows.
func scanRows(rows *sql.Rows) ([]storage.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	var out []storage.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(storage.Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
