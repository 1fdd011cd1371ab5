package service

import (
	"context"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// insightsRepository is the subset of store.InsightsStore that InsightsService requires.
type insightsRepository interface {
	MostWornOutfits(ctx context.Context, limit int) ([]*domain.OutfitWearStats, error)
	LeastWornClothes(ctx context.Context, limit int) ([]*domain.ClothingWearStats, error)
	NeverWornClothes(ctx context.Context, limit int) ([]*domain.ClothingWearStats, error)
	ClothesNotWornSince(ctx context.Context, threshold domain.EpochDay, limit int) ([]*domain.ClothingWearStats, error)
	TotalWearEntries(ctx context.Context) (int, error)
	OutfitsWornOn(ctx context.Context, day domain.EpochDay) (int, error)
	DistinctOutfitsWornInRange(ctx context.Context, from, to domain.EpochDay) (int, error)
	ReadConsistent(ctx context.Context, fn func(ctx context.Context) error) error
}

// InsightsOptions sizes the summary. Zero fields take the defaults.
type InsightsOptions struct {
	RecentDays     int
	StaleDays      int
	TopOutfits     int
	ClothesPerList int
}

func (o InsightsOptions) withDefaults() InsightsOptions {
	if o.RecentDays <= 0 {
		o.RecentDays = 30
	}
	if o.StaleDays <= 0 {
		o.StaleDays = 90
	}
	if o.TopOutfits <= 0 {
		o.TopOutfits = 5
	}
	if o.ClothesPerList <= 0 {
		o.ClothesPerList = 8
	}
	return o
}

// Summary is everything the insights screen shows.
type Summary struct {
	Today                 domain.EpochDay             `json:"today"`
	TotalWearEntries      int                         `json:"totalWearEntries"`
	OutfitsWornToday      int                         `json:"outfitsWornToday"`
	RecentDays            int                         `json:"recentDays"`
	DistinctOutfitsRecent int                         `json:"distinctOutfitsRecent"`
	MostWornOutfits       []*domain.OutfitWearStats   `json:"mostWornOutfits"`
	NeverWornClothes      []*domain.ClothingWearStats `json:"neverWornClothes"`
	LeastWornClothes      []*domain.ClothingWearStats `json:"leastWornClothes"`
	StaleDays             int                         `json:"staleDays"`
	NotWornRecently       []*domain.ClothingWearStats `json:"notWornRecently"`
	IsEmptyWearLog        bool                        `json:"isEmptyWearLog"`
}

type InsightsService struct {
	insights insightsRepository
	hub      *watch.Hub
	clock    Clock
	opts     InsightsOptions
}

func NewInsightsService(insights insightsRepository, hub *watch.Hub, clock Clock, opts InsightsOptions) *InsightsService {
	return &InsightsService{insights: insights, hub: hub, clock: clock, opts: opts.withDefaults()}
}

// Summary computes every statistic fresh from the wear log, all from one
// committed state. The recent window runs from RecentDays ago through today,
// both ends included.
func (s *InsightsService) Summary(ctx context.Context) (*Summary, error) {
	today := s.clock.today()
	sum := &Summary{Today: today, RecentDays: s.opts.RecentDays, StaleDays: s.opts.StaleDays}
	if err := s.insights.ReadConsistent(ctx, func(ctx context.Context) error {
		return s.collect(ctx, sum)
	}); err != nil {
		return nil, err
	}
	sum.IsEmptyWearLog = sum.TotalWearEntries == 0
	return sum, nil
}

func (s *InsightsService) collect(ctx context.Context, sum *Summary) error {
	today := sum.Today
	var err error
	if sum.TotalWearEntries, err = s.insights.TotalWearEntries(ctx); err != nil {
		return fmt.Errorf("failed to count wear entries: %w", err)
	}
	if sum.OutfitsWornToday, err = s.insights.OutfitsWornOn(ctx, today); err != nil {
		return fmt.Errorf("failed to count outfits worn today: %w", err)
	}
	from := today.AddDays(-s.opts.RecentDays)
	if sum.DistinctOutfitsRecent, err = s.insights.DistinctOutfitsWornInRange(ctx, from, today); err != nil {
		return fmt.Errorf("failed to count recent outfits: %w", err)
	}
	if sum.MostWornOutfits, err = s.insights.MostWornOutfits(ctx, s.opts.TopOutfits); err != nil {
		return fmt.Errorf("failed to rank outfits: %w", err)
	}
	if sum.NeverWornClothes, err = s.insights.NeverWornClothes(ctx, s.opts.ClothesPerList); err != nil {
		return fmt.Errorf("failed to list never worn clothes: %w", err)
	}
	if sum.LeastWornClothes, err = s.insights.LeastWornClothes(ctx, s.opts.ClothesPerList); err != nil {
		return fmt.Errorf("failed to list least worn clothes: %w", err)
	}
	threshold := today.AddDays(-s.opts.StaleDays)
	if sum.NotWornRecently, err = s.insights.ClothesNotWornSince(ctx, threshold, s.opts.ClothesPerList); err != nil {
		return fmt.Errorf("failed to list stale clothes: %w", err)
	}
	return nil
}

// Watch keeps Summary current as clothes, outfits and wears change.
func (s *InsightsService) Watch(ctx context.Context) *watch.Subscription[*Summary] {
	return watch.Subscribe(ctx, s.hub, s.Summary,
		store.TableClothes, store.TableOutfits, store.TableOutfitClothes, store.TableOutfitWear)
}
