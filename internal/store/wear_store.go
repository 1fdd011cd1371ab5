package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// WearStore records the days on which outfits were worn.
type WearStore struct {
	db       *sql.DB
	notifier Notifier
}

func NewWearStore(db *sql.DB, notifier Notifier) *WearStore {
	return &WearStore{db: db, notifier: orNoop(notifier)}
}

// AddWear logs one wear of the outfit on day and returns the new entry's id.
// Several entries for the same outfit and day are allowed.
func (s *WearStore) AddWear(ctx context.Context, outfitID int64, day domain.EpochDay) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO outfit_wear (outfitId, wornDate) VALUES (?, ?)
	`, outfitID, int64(day))
	if err != nil {
		return 0, fmt.Errorf("failed to add wear entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.notifier.Notify(TableOutfitWear)
	return id, nil
}

func (s *WearStore) DeleteWear(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM outfit_wear WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wear entry: %w", err)
	}
	if err := expectOneRow(result, "wear entry", id); err != nil {
		return err
	}
	s.notifier.Notify(TableOutfitWear)
	return nil
}

// DeleteWearsOn removes every entry for the outfit on day and reports how many
// were removed.
func (s *WearStore) DeleteWearsOn(ctx context.Context, outfitID int64, day domain.EpochDay) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM outfit_wear WHERE outfitId = ? AND wornDate = ?
	`, outfitID, int64(day))
	if err != nil {
		return 0, fmt.Errorf("failed to delete wear entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		s.notifier.Notify(TableOutfitWear)
	}
	return n, nil
}

// WearLog lists the outfit's entries, most recent day first.
func (s *WearStore) WearLog(ctx context.Context, outfitID int64) ([]*domain.WearEvent, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT id, outfitId, wornDate FROM outfit_wear
		WHERE outfitId = ?
		ORDER BY wornDate DESC, id DESC
	`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wear entries: %w", err)
	}
	defer closeRows(rows)

	events := []*domain.WearEvent{}
	for rows.Next() {
		e := &domain.WearEvent{}
		var day int64
		if err := rows.Scan(&e.ID, &e.OutfitID, &day); err != nil {
			return nil, fmt.Errorf("failed to scan wear entry: %w", err)
		}
		e.WornDate = domain.EpochDay(day)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wear entries: %w", err)
	}
	return events, nil
}

func (s *WearStore) WearCount(ctx context.Context, outfitID int64) (int, error) {
	var n int
	if err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM outfit_wear WHERE outfitId = ?
	`, outfitID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wear entries: %w", err)
	}
	return n, nil
}

func (s *WearStore) IsWornOn(ctx context.Context, outfitID int64, day domain.EpochDay) (bool, error) {
	var worn bool
	if err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM outfit_wear WHERE outfitId = ? AND wornDate = ?)
	`, outfitID, int64(day)).Scan(&worn); err != nil {
		return false, fmt.Errorf("failed to check wear entry: %w", err)
	}
	return worn, nil
}
