package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
)

type TagStore struct {
	db       *sql.DB
	notifier Notifier
}

func NewTagStore(db *sql.DB, notifier Notifier) *TagStore {
	return &TagStore{db: db, notifier: orNoop(notifier)}
}

func scanTags(rows *sql.Rows) ([]*domain.Tag, error) {
	defer closeRows(rows)

	tags := []*domain.Tag{}
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func tagsForItem(ctx context.Context, db *sql.DB, clothingID int64) ([]*domain.Tag, error) {
	rows, err := reader(ctx, db).QueryContext(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN clothing_tags ct ON ct.tagId = t.id
		WHERE ct.clothingId = ?
		ORDER BY t.name COLLATE NOCASE ASC, t.id ASC
	`, clothingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for clothing item: %w", err)
	}
	return scanTags(rows)
}

func tagsForFilter(ctx context.Context, db *sql.DB, savedFilterID int64) ([]*domain.Tag, error) {
	rows, err := reader(ctx, db).QueryContext(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN saved_filter_tags sft ON sft.tagId = t.id
		WHERE sft.savedFilterId = ?
		ORDER BY t.name COLLATE NOCASE ASC, t.id ASC
	`, savedFilterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for saved filter: %w", err)
	}
	return scanTags(rows)
}

// EnsureTagID returns the id of the tag named name, creating it when absent.
// The name is trimmed; lookup is exact and case-sensitive.
func (s *TagStore) EnsureTagID(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.Validation("tag name must not be blank", map[string]string{"name": "required"})
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING
	`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get last insert id: %w", err)
		}
		s.notifier.Notify(TableTags)
		return id, nil
	}

	tag, err := s.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if tag == nil {
		return 0, apperr.Inconsistent(fmt.Sprintf("tag %q was neither inserted nor found", name))
	}
	return tag.ID, nil
}

// EnsureTagIDs resolves each non-blank name to a tag id, keeping first-seen
// order.
func (s *TagStore) EnsureTagIDs(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		id, err := s.EnsureTagID(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return uniqueIDs(ids), nil
}

func (s *TagStore) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	tag := &domain.Tag{}
	err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name FROM tags WHERE name = ?
	`, name).Scan(&tag.ID, &tag.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (s *TagStore) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	tag := &domain.Tag{}
	err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name FROM tags WHERE id = ?
	`, id).Scan(&tag.ID, &tag.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

// List returns all tags ordered case-insensitively by name.
func (s *TagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT id, name FROM tags ORDER BY name COLLATE NOCASE ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return scanTags(rows)
}

func (s *TagStore) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("tag name must not be blank", map[string]string{"name": "required"})
	}
	existing, err := s.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return apperr.Validation(fmt.Sprintf("tag %q already exists", name), map[string]string{"name": "duplicate"})
	}

	result, err := s.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename tag: %w", err)
	}
	if err := expectOneRow(result, "tag", id); err != nil {
		return err
	}
	s.notifier.Notify(TableTags)
	return nil
}

// Delete removes the tag from every item and saved filter, then the tag itself.
func (s *TagStore) Delete(ctx context.Context, id int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM clothing_tags WHERE tagId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete clothing tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_filter_tags WHERE tagId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete saved filter tags: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		return expectOneRow(result, "tag", id)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableTags, TableClothingTags, TableSavedFilterTags)
	return nil
}

// SetTagsForItem replaces the item's tag set with tagIDs. Duplicates are
// harmless; tags not in tagIDs are dropped.
func (s *TagStore) SetTagsForItem(ctx context.Context, clothingID int64, tagIDs []int64) error {
	tagIDs = uniqueIDs(tagIDs)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		return replaceClothingTags(ctx, tx, clothingID, tagIDs)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableClothingTags)
	return nil
}

func replaceClothingTags(ctx context.Context, ex execer, clothingID int64, tagIDs []int64) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM clothing_tags WHERE clothingId = ?`, clothingID); err != nil {
		return fmt.Errorf("failed to clear clothing tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := ex.ExecContext(ctx, `
			INSERT OR IGNORE INTO clothing_tags (clothingId, tagId) VALUES (?, ?)
		`, clothingID, tagID); err != nil {
			return fmt.Errorf("failed to add clothing tag: %w", err)
		}
	}
	return nil
}

func replaceFilterTags(ctx context.Context, ex execer, savedFilterID int64, tagIDs []int64) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM saved_filter_tags WHERE savedFilterId = ?`, savedFilterID); err != nil {
		return fmt.Errorf("failed to clear saved filter tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := ex.ExecContext(ctx, `
			INSERT OR IGNORE INTO saved_filter_tags (savedFilterId, tagId) VALUES (?, ?)
		`, savedFilterID, tagID); err != nil {
			return fmt.Errorf("failed to add saved filter tag: %w", err)
		}
	}
	return nil
}

// SetTagsForFilter replaces the saved filter's tag set with tagIDs.
func (s *TagStore) SetTagsForFilter(ctx context.Context, savedFilterID int64, tagIDs []int64) error {
	tagIDs = uniqueIDs(tagIDs)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		return replaceFilterTags(ctx, tx, savedFilterID, tagIDs)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableSavedFilterTags)
	return nil
}

// AddTagToItem attaches the named tag, creating it if needed. Adding a tag the
// item already carries is a no-op.
func (s *TagStore) AddTagToItem(ctx context.Context, clothingID int64, name string) (*domain.Tag, error) {
	id, err := s.EnsureTagID(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO clothing_tags (clothingId, tagId) VALUES (?, ?)
	`, clothingID, id); err != nil {
		return nil, fmt.Errorf("failed to add tag to clothing item: %w", err)
	}
	s.notifier.Notify(TableClothingTags)
	return s.GetByID(ctx, id)
}

func (s *TagStore) RemoveTagFromItem(ctx context.Context, clothingID, tagID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM clothing_tags WHERE clothingId = ? AND tagId = ?
	`, clothingID, tagID); err != nil {
		return fmt.Errorf("failed to remove tag from clothing item: %w", err)
	}
	s.notifier.Notify(TableClothingTags)
	return nil
}

func (s *TagStore) TagsForItem(ctx context.Context, clothingID int64) ([]*domain.Tag, error) {
	return tagsForItem(ctx, s.db, clothingID)
}

func (s *TagStore) TagsForFilter(ctx context.Context, savedFilterID int64) ([]*domain.Tag, error) {
	return tagsForFilter(ctx, s.db, savedFilterID)
}
