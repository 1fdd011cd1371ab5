package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wardrobe/internal/domain"
)

func statIDs(stats []*domain.ClothingWearStats) []int64 {
	ids := make([]int64, len(stats))
	for i, st := range stats {
		ids[i] = st.ClothingID
	}
	return ids
}

type insightsFixture struct {
	insights *InsightsStore
	loner    *domain.ClothingItem // in no outfit
	idle     *domain.ClothingItem // in an outfit that was never worn
	shirt    *domain.ClothingItem // in two worn outfits
	jeans    *domain.ClothingItem // in one worn outfit
	work     *domain.OutfitWithClothes
	weekend  *domain.OutfitWithClothes
}

// newInsightsFixture logs: work on days 10 and 30, weekend on day 20.
func newInsightsFixture(t *testing.T) *insightsFixture {
	t.Helper()
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	outfits := NewOutfitStore(d, nil)
	wears := NewWearStore(d, nil)
	ctx := context.Background()

	f := &insightsFixture{insights: NewInsightsStore(d)}
	f.shirt = mustCreateClothing(t, clothes, "Shirt")
	f.jeans = mustCreateClothing(t, clothes, "Jeans")
	f.idle = mustCreateClothing(t, clothes, "Idle")
	f.loner = mustCreateClothing(t, clothes, "Loner")

	f.work = mustCreateOutfit(t, outfits, "Work", f.shirt.ID)
	f.weekend = mustCreateOutfit(t, outfits, "Weekend", f.shirt.ID, f.jeans.ID)
	mustCreateOutfit(t, outfits, "Unworn", f.idle.ID)

	for _, w := range []struct {
		outfit int64
		day    domain.EpochDay
	}{{f.work.ID, 10}, {f.weekend.ID, 20}, {f.work.ID, 30}} {
		_, err := wears.AddWear(ctx, w.outfit, w.day)
		require.NoError(t, err)
	}
	return f
}

func TestInsightsStoreMostWornOutfits(t *testing.T) {
	f := newInsightsFixture(t)

	stats, err := f.insights.MostWornOutfits(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, f.work.ID, stats[0].OutfitID)
	assert.Equal(t, 2, stats[0].WearCount)
	assert.Equal(t, domain.EpochDay(30), *stats[0].LastWorn)
	assert.Equal(t, f.weekend.ID, stats[1].OutfitID)

	top, err := f.insights.MostWornOutfits(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestInsightsStoreMostWornOutfits_TieBrokenByRecency(t *testing.T) {
	d := openTestDB(t)
	outfits := NewOutfitStore(d, nil)
	wears := NewWearStore(d, nil)
	insights := NewInsightsStore(d)
	ctx := context.Background()

	older := mustCreateOutfit(t, outfits, "Older")
	newer := mustCreateOutfit(t, outfits, "Newer")
	_, err := wears.AddWear(ctx, newer.ID, 5)
	require.NoError(t, err)
	_, err = wears.AddWear(ctx, older.ID, 9)
	require.NoError(t, err)

	stats, err := insights.MostWornOutfits(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, older.ID, stats[0].OutfitID)
}

func TestInsightsStoreLeastWornClothes(t *testing.T) {
	f := newInsightsFixture(t)

	stats, err := f.insights.LeastWornClothes(context.Background(), 0)
	require.NoError(t, err)
	// Zero-wear items first (newest id first among them), then jeans (1), then
	// shirt (counted once per wear of each of its outfits: 3).
	assert.Equal(t, []int64{f.loner.ID, f.idle.ID, f.jeans.ID, f.shirt.ID}, statIDs(stats))
	assert.Equal(t, 0, stats[0].WearCount)
	assert.Nil(t, stats[0].LastWorn)
	assert.Equal(t, 3, stats[3].WearCount)
	assert.Equal(t, domain.EpochDay(30), *stats[3].LastWorn)
}

func TestInsightsStoreLeastWornClothes_TieBrokenByStaleness(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	outfits := NewOutfitStore(d, nil)
	wears := NewWearStore(d, nil)
	insights := NewInsightsStore(d)
	ctx := context.Background()

	recent := mustCreateClothing(t, clothes, "Recent")
	stale := mustCreateClothing(t, clothes, "Stale")
	a := mustCreateOutfit(t, outfits, "A", recent.ID)
	b := mustCreateOutfit(t, outfits, "B", stale.ID)
	_, err := wears.AddWear(ctx, a.ID, 40)
	require.NoError(t, err)
	_, err = wears.AddWear(ctx, b.ID, 4)
	require.NoError(t, err)

	stats, err := insights.LeastWornClothes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{stale.ID, recent.ID}, statIDs(stats))
}

func TestInsightsStoreNeverWornClothes(t *testing.T) {
	f := newInsightsFixture(t)

	stats, err := f.insights.NeverWornClothes(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.loner.ID, f.idle.ID}, statIDs(stats))
	for _, st := range stats {
		assert.Zero(t, st.WearCount)
		assert.Nil(t, st.LastWorn)
	}
}

func TestInsightsStoreClothesNotWornSince(t *testing.T) {
	f := newInsightsFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		threshold domain.EpochDay
		want      []int64
	}{
		{"mid range", 25, []int64{f.loner.ID, f.idle.ID, f.jeans.ID}},
		{"strictly before", 20, []int64{f.loner.ID, f.idle.ID}},
		{"everything stale", 31, []int64{f.loner.ID, f.idle.ID, f.jeans.ID, f.shirt.ID}},
		{"zero threshold keeps never worn", 0, []int64{f.loner.ID, f.idle.ID}},
		{"negative threshold keeps never worn", -5, []int64{f.loner.ID, f.idle.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := f.insights.ClothesNotWornSince(ctx, tt.threshold, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, statIDs(stats))
		})
	}
}

func TestInsightsStoreScalars(t *testing.T) {
	f := newInsightsFixture(t)
	ctx := context.Background()

	total, err := f.insights.TotalWearEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	onDay, err := f.insights.OutfitsWornOn(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, onDay)

	none, err := f.insights.OutfitsWornOn(ctx, 11)
	require.NoError(t, err)
	assert.Zero(t, none)

	inRange, err := f.insights.DistinctOutfitsWornInRange(ctx, 10, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, inRange)

	edge, err := f.insights.DistinctOutfitsWornInRange(ctx, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, edge)
}
