package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
)

const clothingColumns = `c.id, c.name, c.category, c.color, c.size, c.season, c.imageUri`

func scanClothing(sc rowScanner) (*domain.ClothingItem, error) {
	item := &domain.ClothingItem{}
	var size, season, image sql.NullString
	if err := sc.Scan(&item.ID, &item.Name, &item.Category, &item.Color, &size, &season, &image); err != nil {
		return nil, err
	}
	item.Size = stringPtr(size)
	item.Season = stringPtr(season)
	item.ImageURI = stringPtr(image)
	return item, nil
}

func collectClothing(rows *sql.Rows) ([]*domain.ClothingItem, error) {
	defer closeRows(rows)

	items := []*domain.ClothingItem{}
	for rows.Next() {
		item, err := scanClothing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clothing items: %w", err)
	}
	return items, nil
}

type ClothingStore struct {
	db       *sql.DB
	notifier Notifier
}

func NewClothingStore(db *sql.DB, notifier Notifier) *ClothingStore {
	return &ClothingStore{db: db, notifier: orNoop(notifier)}
}

func (s *ClothingStore) Create(ctx context.Context, item *domain.ClothingItem) (*domain.ClothingItem, error) {
	created, err := s.CreateWithTags(ctx, item, nil)
	if err != nil || created == nil {
		return nil, err
	}
	return created.ClothingItem, nil
}

// CreateWithTags stores the item and its tag set in one transaction.
func (s *ClothingStore) CreateWithTags(ctx context.Context, item *domain.ClothingItem, tagIDs []int64) (*domain.ClothingWithTags, error) {
	tagIDs = uniqueIDs(tagIDs)
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO clothes (name, category, color, size, season, imageUri) VALUES (?, ?, ?, ?, ?, ?)
		`, item.Name, item.Category, item.Color, nullString(item.Size), nullString(item.Season), nullString(item.ImageURI))
		if err != nil {
			return fmt.Errorf("failed to create clothing item: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return replaceClothingTags(ctx, tx, id, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	if len(tagIDs) > 0 {
		s.notifier.Notify(TableClothes, TableClothingTags)
	} else {
		s.notifier.Notify(TableClothes)
	}
	return s.GetWithTags(ctx, id)
}

func (s *ClothingStore) GetByID(ctx context.Context, id int64) (*domain.ClothingItem, error) {
	item, err := scanClothing(reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+clothingColumns+` FROM clothes c WHERE c.id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clothing item: %w", err)
	}
	return item, nil
}

// List returns every item, newest first.
func (s *ClothingStore) List(ctx context.Context) ([]*domain.ClothingItem, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+clothingColumns+` FROM clothes c ORDER BY c.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clothing items: %w", err)
	}
	return collectClothing(rows)
}

// ListWithAllTags returns the items carrying every one of tagIDs, newest
// first. An empty tag set returns all items.
func (s *ClothingStore) ListWithAllTags(ctx context.Context, tagIDs []int64) ([]*domain.ClothingItem, error) {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 {
		return s.List(ctx)
	}

	marks, args := placeholders(tagIDs)
	args = append(args, len(tagIDs))
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+clothingColumns+` FROM clothes c
		JOIN clothing_tags ct ON ct.clothingId = c.id
		WHERE ct.tagId IN (`+marks+`)
		GROUP BY c.id
		HAVING COUNT(DISTINCT ct.tagId) = ?
		ORDER BY c.id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clothing items by tags: %w", err)
	}
	return collectClothing(rows)
}

func (s *ClothingStore) Update(ctx context.Context, item *domain.ClothingItem) error {
	return s.UpdateWithTags(ctx, item, nil)
}

// UpdateWithTags saves the item's fields and, unless tagIDs is nil, replaces
// its tag set, all in one transaction.
func (s *ClothingStore) UpdateWithTags(ctx context.Context, item *domain.ClothingItem, tagIDs []int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE clothes SET name = ?, category = ?, color = ?, size = ?, season = ?, imageUri = ? WHERE id = ?
		`, item.Name, item.Category, item.Color, nullString(item.Size), nullString(item.Season), nullString(item.ImageURI), item.ID)
		if err != nil {
			return fmt.Errorf("failed to update clothing item: %w", err)
		}
		if err := expectOneRow(result, "clothing item", item.ID); err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}
		return replaceClothingTags(ctx, tx, item.ID, uniqueIDs(tagIDs))
	})
	if err != nil {
		return err
	}
	if tagIDs != nil {
		s.notifier.Notify(TableClothes, TableClothingTags)
	} else {
		s.notifier.Notify(TableClothes)
	}
	return nil
}

// SetImage replaces only the image reference of an item.
func (s *ClothingStore) SetImage(ctx context.Context, id int64, imageURI *string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clothes SET imageUri = ? WHERE id = ?
	`, nullString(imageURI), id)
	if err != nil {
		return fmt.Errorf("failed to set clothing image: %w", err)
	}
	if err := expectOneRow(result, "clothing item", id); err != nil {
		return err
	}
	s.notifier.Notify(TableClothes)
	return nil
}

// Delete removes the item together with its tag and outfit associations in
// one transaction.
func (s *ClothingStore) Delete(ctx context.Context, id int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM clothing_tags WHERE clothingId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete clothing tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM outfit_clothes WHERE clothingId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete outfit clothes: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM clothes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete clothing item: %w", err)
		}
		return expectOneRow(result, "clothing item", id)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableClothes, TableClothingTags, TableOutfitClothes)
	return nil
}

// GetWithTags returns the item and its tags, or nil if the item is missing.
func (s *ClothingStore) GetWithTags(ctx context.Context, id int64) (*domain.ClothingWithTags, error) {
	var result *domain.ClothingWithTags
	err := readConsistent(ctx, s.db, func(ctx context.Context) error {
		item, err := s.GetByID(ctx, id)
		if err != nil || item == nil {
			return err
		}
		tags, err := tagsForItem(ctx, s.db, id)
		if err != nil {
			return err
		}
		result = &domain.ClothingWithTags{ClothingItem: item, Tags: tags}
		return nil
	})
	return result, err
}
