package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/wardrobe/internal/domain"
)

const savedFilterColumns = `id, name, category, color, size, season, sortBy, sortAscending, createdAt`

func scanSavedFilter(sc rowScanner) (*domain.SavedFilter, error) {
	f := &domain.SavedFilter{}
	var category, color, size, season, sortBy sql.NullString
	var ascending sql.NullBool
	var createdAt int64
	if err := sc.Scan(&f.ID, &f.Name, &category, &color, &size, &season, &sortBy, &ascending, &createdAt); err != nil {
		return nil, err
	}
	f.Category = stringPtr(category)
	f.Color = stringPtr(color)
	f.Size = stringPtr(size)
	f.Season = stringPtr(season)
	f.SortBy = stringPtr(sortBy)
	if ascending.Valid {
		b := ascending.Bool
		f.SortAscending = &b
	}
	f.CreatedAt = time.UnixMilli(createdAt).UTC()
	return f, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

type SavedFilterStore struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func NewSavedFilterStore(db *sql.DB, notifier Notifier) *SavedFilterStore {
	return &SavedFilterStore{db: db, notifier: orNoop(notifier), now: time.Now}
}

// Create stores the preset and its tag set in one transaction.
func (s *SavedFilterStore) Create(ctx context.Context, f *domain.SavedFilter, tagIDs []int64) (*domain.SavedFilterWithTags, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO saved_filters (name, category, color, size, season, sortBy, sortAscending, createdAt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, f.Name, nullString(f.Category), nullString(f.Color), nullString(f.Size), nullString(f.Season),
			nullString(f.SortBy), nullBool(f.SortAscending), s.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to create saved filter: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return replaceFilterTags(ctx, tx, id, uniqueIDs(tagIDs))
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(TableSavedFilters, TableSavedFilterTags)
	return s.GetWithTags(ctx, id)
}

// Update rewrites the preset's fields and replaces its tag set.
func (s *SavedFilterStore) Update(ctx context.Context, f *domain.SavedFilter, tagIDs []int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE saved_filters SET name = ?, category = ?, color = ?, size = ?, season = ?, sortBy = ?, sortAscending = ?
			WHERE id = ?
		`, f.Name, nullString(f.Category), nullString(f.Color), nullString(f.Size), nullString(f.Season),
			nullString(f.SortBy), nullBool(f.SortAscending), f.ID)
		if err != nil {
			return fmt.Errorf("failed to update saved filter: %w", err)
		}
		if err := expectOneRow(result, "saved filter", f.ID); err != nil {
			return err
		}
		return replaceFilterTags(ctx, tx, f.ID, uniqueIDs(tagIDs))
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableSavedFilters, TableSavedFilterTags)
	return nil
}

func (s *SavedFilterStore) Delete(ctx context.Context, id int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_filter_tags WHERE savedFilterId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete saved filter tags: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete saved filter: %w", err)
		}
		return expectOneRow(result, "saved filter", id)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableSavedFilters, TableSavedFilterTags)
	return nil
}

func (s *SavedFilterStore) GetByID(ctx context.Context, id int64) (*domain.SavedFilter, error) {
	f, err := scanSavedFilter(reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+savedFilterColumns+` FROM saved_filters WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved filter: %w", err)
	}
	return f, nil
}

func (s *SavedFilterStore) GetWithTags(ctx context.Context, id int64) (*domain.SavedFilterWithTags, error) {
	var result *domain.SavedFilterWithTags
	err := readConsistent(ctx, s.db, func(ctx context.Context) error {
		f, err := s.GetByID(ctx, id)
		if err != nil || f == nil {
			return err
		}
		tags, err := tagsForFilter(ctx, s.db, id)
		if err != nil {
			return err
		}
		result = &domain.SavedFilterWithTags{SavedFilter: f, Tags: tags}
		return nil
	})
	return result, err
}

// ListWithTags returns every preset, newest first, each with its tags.
func (s *SavedFilterStore) ListWithTags(ctx context.Context) ([]*domain.SavedFilterWithTags, error) {
	var result []*domain.SavedFilterWithTags
	err := readConsistent(ctx, s.db, func(ctx context.Context) error {
		var err error
		result, err = s.listWithTags(ctx)
		return err
	})
	return result, err
}

func (s *SavedFilterStore) listWithTags(ctx context.Context) ([]*domain.SavedFilterWithTags, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+savedFilterColumns+` FROM saved_filters ORDER BY createdAt DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved filters: %w", err)
	}

	filters := []*domain.SavedFilter{}
	for rows.Next() {
		f, err := scanSavedFilter(rows)
		if err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan saved filter: %w", err)
		}
		filters = append(filters, f)
	}
	err = rows.Err()
	closeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("error iterating saved filters: %w", err)
	}

	result := make([]*domain.SavedFilterWithTags, 0, len(filters))
	for _, f := range filters {
		tags, err := tagsForFilter(ctx, s.db, f.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &domain.SavedFilterWithTags{SavedFilter: f, Tags: tags})
	}
	return result, nil
}
