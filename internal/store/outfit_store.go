package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/wardrobe/internal/domain"
)

const outfitColumns = `o.id, o.name, o.occasion, o.season, o.notes, o.rating, o.createdAt`

func scanOutfit(sc rowScanner) (*domain.Outfit, error) {
	o := &domain.Outfit{}
	var occasion, season, notes sql.NullString
	var createdAt int64
	if err := sc.Scan(&o.ID, &o.Name, &occasion, &season, &notes, &o.Rating, &createdAt); err != nil {
		return nil, err
	}
	o.Occasion = stringPtr(occasion)
	o.Season = stringPtr(season)
	o.Notes = stringPtr(notes)
	o.CreatedAt = time.UnixMilli(createdAt).UTC()
	return o, nil
}

type OutfitStore struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func NewOutfitStore(db *sql.DB, notifier Notifier) *OutfitStore {
	return &OutfitStore{db: db, notifier: orNoop(notifier), now: time.Now}
}

func insertOutfit(ctx context.Context, ex execer, o *domain.Outfit, createdAt time.Time) (int64, error) {
	result, err := ex.ExecContext(ctx, `
		INSERT INTO outfits (name, occasion, season, notes, rating, createdAt) VALUES (?, ?, ?, ?, ?, ?)
	`, o.Name, nullString(o.Occasion), nullString(o.Season), nullString(o.Notes),
		domain.ClampRating(o.Rating), createdAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to create outfit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// Create stores the outfit with its rating clamped to 1..5 and the creation
// time set to now.
func (s *OutfitStore) Create(ctx context.Context, o *domain.Outfit) (*domain.Outfit, error) {
	id, err := insertOutfit(ctx, s.db, o, s.now())
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(TableOutfits)
	return s.GetByID(ctx, id)
}

// CreateWithClothes stores the outfit and its clothing set atomically.
func (s *OutfitStore) CreateWithClothes(ctx context.Context, o *domain.Outfit, clothingIDs []int64) (*domain.OutfitWithClothes, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if id, err = insertOutfit(ctx, tx, o, s.now()); err != nil {
			return err
		}
		return replaceOutfitClothes(ctx, tx, id, uniqueIDs(clothingIDs))
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(TableOutfits, TableOutfitClothes)
	return s.GetWithClothes(ctx, id)
}

func (s *OutfitStore) GetByID(ctx context.Context, id int64) (*domain.Outfit, error) {
	o, err := scanOutfit(reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+outfitColumns+` FROM outfits o WHERE o.id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	return o, nil
}

// List returns every outfit, newest first.
func (s *OutfitStore) List(ctx context.Context) ([]*domain.Outfit, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+outfitColumns+` FROM outfits o ORDER BY o.createdAt DESC, o.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	defer closeRows(rows)

	outfits := []*domain.Outfit{}
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}
	return outfits, nil
}

// Update rewrites the editable fields. The creation time is left untouched.
func (s *OutfitStore) Update(ctx context.Context, o *domain.Outfit) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE outfits SET name = ?, occasion = ?, season = ?, notes = ?, rating = ? WHERE id = ?
	`, o.Name, nullString(o.Occasion), nullString(o.Season), nullString(o.Notes),
		domain.ClampRating(o.Rating), o.ID)
	if err != nil {
		return fmt.Errorf("failed to update outfit: %w", err)
	}
	if err := expectOneRow(result, "outfit", o.ID); err != nil {
		return err
	}
	s.notifier.Notify(TableOutfits)
	return nil
}

// Delete removes the outfit with its clothing links and wear history.
func (s *OutfitStore) Delete(ctx context.Context, id int64) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outfit_clothes WHERE outfitId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete outfit clothes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM outfit_wear WHERE outfitId = ?`, id); err != nil {
			return fmt.Errorf("failed to delete outfit wear: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM outfits WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete outfit: %w", err)
		}
		return expectOneRow(result, "outfit", id)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableOutfits, TableOutfitClothes, TableOutfitWear)
	return nil
}

func replaceOutfitClothes(ctx context.Context, ex execer, outfitID int64, clothingIDs []int64) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM outfit_clothes WHERE outfitId = ?`, outfitID); err != nil {
		return fmt.Errorf("failed to clear outfit clothes: %w", err)
	}
	for _, clothingID := range clothingIDs {
		if _, err := ex.ExecContext(ctx, `
			INSERT OR IGNORE INTO outfit_clothes (outfitId, clothingId) VALUES (?, ?)
		`, outfitID, clothingID); err != nil {
			return fmt.Errorf("failed to add outfit clothing: %w", err)
		}
	}
	return nil
}

// SetClothes replaces the outfit's clothing set in one transaction.
func (s *OutfitStore) SetClothes(ctx context.Context, outfitID int64, clothingIDs []int64) error {
	clothingIDs = uniqueIDs(clothingIDs)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		return replaceOutfitClothes(ctx, tx, outfitID, clothingIDs)
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(TableOutfitClothes)
	return nil
}

func (s *OutfitStore) AddClothing(ctx context.Context, outfitID, clothingID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO outfit_clothes (outfitId, clothingId) VALUES (?, ?)
	`, outfitID, clothingID); err != nil {
		return fmt.Errorf("failed to add clothing to outfit: %w", err)
	}
	s.notifier.Notify(TableOutfitClothes)
	return nil
}

func (s *OutfitStore) RemoveClothing(ctx context.Context, outfitID, clothingID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM outfit_clothes WHERE outfitId = ? AND clothingId = ?
	`, outfitID, clothingID); err != nil {
		return fmt.Errorf("failed to remove clothing from outfit: %w", err)
	}
	s.notifier.Notify(TableOutfitClothes)
	return nil
}

// ClothesForOutfit returns the outfit's items, newest first.
func (s *OutfitStore) ClothesForOutfit(ctx context.Context, outfitID int64) ([]*domain.ClothingItem, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+clothingColumns+` FROM clothes c
		JOIN outfit_clothes oc ON oc.clothingId = c.id
		WHERE oc.outfitId = ?
		ORDER BY c.id DESC
	`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfit clothes: %w", err)
	}
	return collectClothing(rows)
}

func (s *OutfitStore) GetWithClothes(ctx context.Context, id int64) (*domain.OutfitWithClothes, error) {
	var result *domain.OutfitWithClothes
	err := readConsistent(ctx, s.db, func(ctx context.Context) error {
		o, err := s.GetByID(ctx, id)
		if err != nil || o == nil {
			return err
		}
		clothes, err := s.ClothesForOutfit(ctx, id)
		if err != nil {
			return err
		}
		result = &domain.OutfitWithClothes{Outfit: o, Clothes: clothes}
		return nil
	})
	return result, err
}

// ReadConsistent runs fn so that every store read made with the context it
// receives sees one committed state, even across stores. fn must not write.
func (s *OutfitStore) ReadConsistent(ctx context.Context, fn func(ctx context.Context) error) error {
	return readConsistent(ctx, s.db, fn)
}

// ListWithClothes returns every outfit with its items, newest outfit first.
func (s *OutfitStore) ListWithClothes(ctx context.Context) ([]*domain.OutfitWithClothes, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT `+outfitColumns+`, c.id, c.name, c.category, c.color, c.size, c.season, c.imageUri
		FROM outfits o
		LEFT JOIN outfit_clothes oc ON oc.outfitId = o.id
		LEFT JOIN clothes c ON c.id = oc.clothingId
		ORDER BY o.createdAt DESC, o.id DESC, c.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits with clothes: %w", err)
	}
	defer closeRows(rows)

	result := []*domain.OutfitWithClothes{}
	var current *domain.OutfitWithClothes
	for rows.Next() {
		o := &domain.Outfit{}
		var occasion, season, notes sql.NullString
		var createdAt int64
		var cID sql.NullInt64
		var cName, cCategory, cColor, cSize, cSeason, cImage sql.NullString
		if err := rows.Scan(&o.ID, &o.Name, &occasion, &season, &notes, &o.Rating, &createdAt,
			&cID, &cName, &cCategory, &cColor, &cSize, &cSeason, &cImage); err != nil {
			return nil, fmt.Errorf("failed to scan outfit row: %w", err)
		}
		if current == nil || current.ID != o.ID {
			o.Occasion = stringPtr(occasion)
			o.Season = stringPtr(season)
			o.Notes = stringPtr(notes)
			o.CreatedAt = time.UnixMilli(createdAt).UTC()
			current = &domain.OutfitWithClothes{Outfit: o, Clothes: []*domain.ClothingItem{}}
			result = append(result, current)
		}
		if cID.Valid {
			current.Clothes = append(current.Clothes, &domain.ClothingItem{
				ID:       cID.Int64,
				Name:     cName.String,
				Category: cCategory.String,
				Color:    cColor.String,
				Size:     stringPtr(cSize),
				Season:   stringPtr(cSeason),
				ImageURI: stringPtr(cImage),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}
	return result, nil
}
