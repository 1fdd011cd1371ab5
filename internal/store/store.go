package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// Table names reported to the Notifier after a write commits.
const (
	TableClothes         = "clothes"
	TableOutfits         = "outfits"
	TableOutfitClothes   = "outfit_clothes"
	TableOutfitWear      = "outfit_wear"
	TableTags            = "tags"
	TableClothingTags    = "clothing_tags"
	TableSavedFilters    = "saved_filters"
	TableSavedFilterTags = "saved_filter_tags"
)

// ErrNotFound is wrapped by updates and deletes that matched no row. Reads
// report a missing row as (nil, nil) instead.
var ErrNotFound = errors.New("not found")

// Notifier is told which tables a committed write touched.
type Notifier interface {
	Notify(tables ...string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(...string) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// withTx runs fn inside a transaction and commits if fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			slog.Error("failed to roll back transaction", "error", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type readTxKey struct{}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// reader returns the read transaction carried by ctx, or db when there is
// none.
func reader(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(readTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// readConsistent runs fn with a context carrying one transaction. Every store
// read made with that context sees the same committed state. fn must only
// read; the transaction is always rolled back. Nested calls reuse the outer
// transaction.
func readConsistent(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(readTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to end read transaction", "error", err)
		}
	}()
	return fn(context.WithValue(ctx, readTxKey{}, tx))
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}

// expectOneRow turns a zero-row update or delete into ErrNotFound.
func expectOneRow(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// placeholders returns "?, ?, ?" with n markers and the ids as query args.
func placeholders(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

// limitArg maps "no limit" (limit <= 0) to SQLite's LIMIT -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func epochDayPtr(n sql.NullInt64) *domain.EpochDay {
	if !n.Valid {
		return nil
	}
	d := domain.EpochDay(n.Int64)
	return &d
}
