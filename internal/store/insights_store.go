package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// InsightsStore computes wear statistics straight from the wear log. Nothing
// is cached; every call reflects the current rows.
type InsightsStore struct {
	db *sql.DB
}

func NewInsightsStore(db *sql.DB) *InsightsStore {
	return &InsightsStore{db: db}
}

// ReadConsistent runs fn so that every statistic read with the context it
// receives comes from one committed state.
func (s *InsightsStore) ReadConsistent(ctx context.Context, fn func(ctx context.Context) error) error {
	return readConsistent(ctx, s.db, fn)
}

// clothingStatsSelect counts one wear per (outfit containing the item, wear
// of that outfit) pair. Items in no outfit still produce a row with count 0.
const clothingStatsSelect = `
	SELECT c.id, c.name, c.category, c.imageUri, COUNT(w.id) AS wearCount, MAX(w.wornDate) AS lastWorn
	FROM clothes c
	LEFT JOIN outfit_clothes oc ON oc.clothingId = c.id
	LEFT JOIN outfit_wear w ON w.outfitId = oc.outfitId
	GROUP BY c.id
`

func (s *InsightsStore) queryClothingStats(ctx context.Context, query string, args ...any) ([]*domain.ClothingWearStats, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clothing wear stats: %w", err)
	}
	defer closeRows(rows)

	stats := []*domain.ClothingWearStats{}
	for rows.Next() {
		st := &domain.ClothingWearStats{}
		var image sql.NullString
		var lastWorn sql.NullInt64
		if err := rows.Scan(&st.ClothingID, &st.Name, &st.Category, &image, &st.WearCount, &lastWorn); err != nil {
			return nil, fmt.Errorf("failed to scan clothing wear stats: %w", err)
		}
		st.ImageURI = stringPtr(image)
		st.LastWorn = epochDayPtr(lastWorn)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clothing wear stats: %w", err)
	}
	return stats, nil
}

// MostWornOutfits ranks outfits with at least one wear by count, then by the
// most recent wear. limit <= 0 returns all.
func (s *InsightsStore) MostWornOutfits(ctx context.Context, limit int) ([]*domain.OutfitWearStats, error) {
	rows, err := reader(ctx, s.db).QueryContext(ctx, `
		SELECT o.id, o.name, COUNT(w.id) AS wearCount, MAX(w.wornDate) AS lastWorn
		FROM outfits o
		JOIN outfit_wear w ON w.outfitId = o.id
		GROUP BY o.id
		ORDER BY wearCount DESC, lastWorn DESC, o.id DESC
		LIMIT ?
	`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query outfit wear stats: %w", err)
	}
	defer closeRows(rows)

	stats := []*domain.OutfitWearStats{}
	for rows.Next() {
		st := &domain.OutfitWearStats{}
		var lastWorn sql.NullInt64
		if err := rows.Scan(&st.OutfitID, &st.Name, &st.WearCount, &lastWorn); err != nil {
			return nil, fmt.Errorf("failed to scan outfit wear stats: %w", err)
		}
		st.LastWorn = epochDayPtr(lastWorn)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfit wear stats: %w", err)
	}
	return stats, nil
}

// LeastWornClothes ranks every item by ascending wear count; among equal
// counts never-worn items come first, then the stalest.
func (s *InsightsStore) LeastWornClothes(ctx context.Context, limit int) ([]*domain.ClothingWearStats, error) {
	return s.queryClothingStats(ctx, clothingStatsSelect+`
		ORDER BY wearCount ASC, lastWorn ASC NULLS FIRST, c.id DESC
		LIMIT ?
	`, limitArg(limit))
}

func (s *InsightsStore) NeverWornClothes(ctx context.Context, limit int) ([]*domain.ClothingWearStats, error) {
	return s.queryClothingStats(ctx, clothingStatsSelect+`
		HAVING COUNT(w.id) = 0
		ORDER BY c.id DESC
		LIMIT ?
	`, limitArg(limit))
}

// ClothesNotWornSince returns items last worn strictly before threshold.
// Items never worn always match.
func (s *InsightsStore) ClothesNotWornSince(ctx context.Context, threshold domain.EpochDay, limit int) ([]*domain.ClothingWearStats, error) {
	return s.queryClothingStats(ctx, clothingStatsSelect+`
		HAVING MAX(w.wornDate) IS NULL OR MAX(w.wornDate) < ?
		ORDER BY lastWorn ASC NULLS FIRST, c.id DESC
		LIMIT ?
	`, int64(threshold), limitArg(limit))
}

func (s *InsightsStore) TotalWearEntries(ctx context.Context) (int, error) {
	var n int
	if err := reader(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM outfit_wear`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wear entries: %w", err)
	}
	return n, nil
}

// OutfitsWornOn counts distinct outfits with a wear entry on day.
func (s *InsightsStore) OutfitsWornOn(ctx context.Context, day domain.EpochDay) (int, error) {
	var n int
	if err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT outfitId) FROM outfit_wear WHERE wornDate = ?
	`, int64(day)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outfits worn on day: %w", err)
	}
	return n, nil
}

// DistinctOutfitsWornInRange counts distinct outfits worn between from and to
// inclusive.
func (s *InsightsStore) DistinctOutfitsWornInRange(ctx context.Context, from, to domain.EpochDay) (int, error) {
	var n int
	if err := reader(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT outfitId) FROM outfit_wear WHERE wornDate BETWEEN ? AND ?
	`, int64(from), int64(to)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outfits worn in range: %w", err)
	}
	return n, nil
}
