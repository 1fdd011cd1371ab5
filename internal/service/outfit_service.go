package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/validation"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// outfitRepository is the subset of store.OutfitStore that OutfitService requires.
type outfitRepository interface {
	CreateWithClothes(ctx context.Context, o *domain.Outfit, clothingIDs []int64) (*domain.OutfitWithClothes, error)
	GetByID(ctx context.Context, id int64) (*domain.Outfit, error)
	GetWithClothes(ctx context.Context, id int64) (*domain.OutfitWithClothes, error)
	ListWithClothes(ctx context.Context) ([]*domain.OutfitWithClothes, error)
	Update(ctx context.Context, o *domain.Outfit) error
	Delete(ctx context.Context, id int64) error
	SetClothes(ctx context.Context, outfitID int64, clothingIDs []int64) error
	AddClothing(ctx context.Context, outfitID, clothingID int64) error
	RemoveClothing(ctx context.Context, outfitID, clothingID int64) error
	ReadConsistent(ctx context.Context, fn func(ctx context.Context) error) error
}

// wearRepository is the subset of store.WearStore that OutfitService requires.
type wearRepository interface {
	AddWear(ctx context.Context, outfitID int64, day domain.EpochDay) (int64, error)
	DeleteWear(ctx context.Context, id int64) error
	DeleteWearsOn(ctx context.Context, outfitID int64, day domain.EpochDay) (int64, error)
	WearLog(ctx context.Context, outfitID int64) ([]*domain.WearEvent, error)
	IsWornOn(ctx context.Context, outfitID int64, day domain.EpochDay) (bool, error)
}

// clothingLookup is the subset of store.ClothingStore that OutfitService requires.
type clothingLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.ClothingItem, error)
}

// OutfitInput is the editable part of an outfit. ClothingIDs nil leaves the
// clothing set alone on update. A zero rating means the default; any other
// value is clamped into range.
type OutfitInput struct {
	Name        string  `json:"name" validate:"notblank,max=200"`
	Occasion    *string `json:"occasion,omitempty" validate:"omitempty,max=100"`
	Season      *string `json:"season,omitempty" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Rating      int     `json:"rating"`
	ClothingIDs []int64 `json:"clothingIds,omitempty" validate:"omitempty,dive,gt=0"`
}

func (in OutfitInput) normalized() OutfitInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Occasion = optional(in.Occasion)
	in.Season = optional(in.Season)
	in.Notes = optional(in.Notes)
	return in
}

func (in OutfitInput) rating() int {
	if in.Rating == 0 {
		return domain.DefaultRating
	}
	return domain.ClampRating(in.Rating)
}

// OutfitDetail is an outfit with its clothes and wear history.
type OutfitDetail struct {
	*domain.OutfitWithClothes
	WearCount   int                 `json:"wearCount"`
	WornToday   bool                `json:"wornToday"`
	WearHistory []*domain.WearEvent `json:"wearHistory"`
}

type OutfitService struct {
	outfits   outfitRepository
	wears     wearRepository
	clothes   clothingLookup
	hub       *watch.Hub
	clock     Clock
	validator *validation.Validator
	logger    *slog.Logger
}

func NewOutfitService(
	outfits outfitRepository,
	wears wearRepository,
	clothes clothingLookup,
	hub *watch.Hub,
	clock Clock,
	logger *slog.Logger,
) *OutfitService {
	return &OutfitService{
		outfits:   outfits,
		wears:     wears,
		clothes:   clothes,
		hub:       hub,
		clock:     clock,
		validator: validation.New(),
		logger:    logger,
	}
}

// checkClothes rejects ids that do not name an existing item.
func (s *OutfitService) checkClothes(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		item, err := s.clothes.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get clothing item: %w", err)
		}
		if item == nil {
			return apperr.Validation(fmt.Sprintf("clothing item %d does not exist", id),
				map[string]string{"clothingIds": "unknown clothing item"})
		}
	}
	return nil
}

func (s *OutfitService) requireOutfit(ctx context.Context, id int64) (*domain.Outfit, error) {
	o, err := s.outfits.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("outfit")
	}
	return o, nil
}

func (s *OutfitService) Create(ctx context.Context, in OutfitInput) (*domain.OutfitWithClothes, error) {
	in = in.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkClothes(ctx, in.ClothingIDs); err != nil {
		return nil, err
	}

	o, err := s.outfits.CreateWithClothes(ctx, &domain.Outfit{
		Name:     in.Name,
		Occasion: in.Occasion,
		Season:   in.Season,
		Notes:    in.Notes,
		Rating:   in.rating(),
	}, in.ClothingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create outfit: %w", err)
	}
	s.logger.Info("outfit created", "outfit_id", o.ID, "clothes", len(o.Clothes))
	return o, nil
}

// Get returns the outfit with clothes and wear history, or nil when missing.
// Get reads the outfit, its clothes and its wear log from one committed state.
func (s *OutfitService) Get(ctx context.Context, id int64) (*OutfitDetail, error) {
	var detail *OutfitDetail
	err := s.outfits.ReadConsistent(ctx, func(ctx context.Context) error {
		o, err := s.outfits.GetWithClothes(ctx, id)
		if err != nil || o == nil {
			return err
		}
		history, err := s.wears.WearLog(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get wear log: %w", err)
		}
		detail = &OutfitDetail{OutfitWithClothes: o, WearCount: len(history), WearHistory: history}
		return nil
	})
	if err != nil || detail == nil {
		return nil, err
	}
	today := s.clock.today()
	for _, w := range detail.WearHistory {
		if w.WornDate == today {
			detail.WornToday = true
			break
		}
	}
	return detail, nil
}

// Watch keeps Get(id) current. The value is nil once the outfit is deleted.
func (s *OutfitService) Watch(ctx context.Context, id int64) *watch.Subscription[*OutfitDetail] {
	return watch.Subscribe(ctx, s.hub, func(ctx context.Context) (*OutfitDetail, error) {
		return s.Get(ctx, id)
	}, store.TableOutfits, store.TableOutfitClothes, store.TableOutfitWear, store.TableClothes)
}

func (s *OutfitService) List(ctx context.Context) ([]*domain.OutfitWithClothes, error) {
	return s.outfits.ListWithClothes(ctx)
}

func (s *OutfitService) WatchList(ctx context.Context) *watch.Subscription[[]*domain.OutfitWithClothes] {
	return watch.Subscribe(ctx, s.hub, s.List, store.TableOutfits, store.TableOutfitClothes, store.TableClothes)
}

func (s *OutfitService) Update(ctx context.Context, id int64, in OutfitInput) (*domain.OutfitWithClothes, error) {
	in = in.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	o, err := s.requireOutfit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClothes(ctx, in.ClothingIDs); err != nil {
		return nil, err
	}

	o.Name = in.Name
	o.Occasion = in.Occasion
	o.Season = in.Season
	o.Notes = in.Notes
	o.Rating = in.rating()
	if err := s.outfits.Update(ctx, o); err != nil {
		return nil, notFound(err, "outfit")
	}
	if in.ClothingIDs != nil {
		if err := s.outfits.SetClothes(ctx, id, in.ClothingIDs); err != nil {
			return nil, fmt.Errorf("failed to set outfit clothes: %w", err)
		}
	}
	return s.outfits.GetWithClothes(ctx, id)
}

// Delete removes the outfit with its clothing links and wear history.
func (s *OutfitService) Delete(ctx context.Context, id int64) error {
	if err := s.outfits.Delete(ctx, id); err != nil {
		return notFound(err, "outfit")
	}
	s.logger.Info("outfit deleted", "outfit_id", id)
	return nil
}

// SetClothes replaces the outfit's clothing set.
func (s *OutfitService) SetClothes(ctx context.Context, id int64, clothingIDs []int64) (*domain.OutfitWithClothes, error) {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkClothes(ctx, clothingIDs); err != nil {
		return nil, err
	}
	if err := s.outfits.SetClothes(ctx, id, clothingIDs); err != nil {
		return nil, fmt.Errorf("failed to set outfit clothes: %w", err)
	}
	return s.outfits.GetWithClothes(ctx, id)
}

func (s *OutfitService) AddClothing(ctx context.Context, id, clothingID int64) error {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return err
	}
	if err := s.checkClothes(ctx, []int64{clothingID}); err != nil {
		return err
	}
	return s.outfits.AddClothing(ctx, id, clothingID)
}

func (s *OutfitService) RemoveClothing(ctx context.Context, id, clothingID int64) error {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return err
	}
	return s.outfits.RemoveClothing(ctx, id, clothingID)
}

// LogWear records a wear of the outfit on day. Several wears on one day are
// kept as separate entries.
func (s *OutfitService) LogWear(ctx context.Context, id int64, day domain.EpochDay) (*domain.WearEvent, error) {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return nil, err
	}
	wearID, err := s.wears.AddWear(ctx, id, day)
	if err != nil {
		return nil, fmt.Errorf("failed to log wear: %w", err)
	}
	s.logger.Info("wear logged", "outfit_id", id, "day", day.String())
	return &domain.WearEvent{ID: wearID, OutfitID: id, WornDate: day}, nil
}

func (s *OutfitService) DeleteWear(ctx context.Context, wearID int64) error {
	if err := s.wears.DeleteWear(ctx, wearID); err != nil {
		return notFound(err, "wear entry")
	}
	return nil
}

func (s *OutfitService) WearLog(ctx context.Context, id int64) ([]*domain.WearEvent, error) {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return nil, err
	}
	return s.wears.WearLog(ctx, id)
}

// MarkWornToday logs a wear for today unless one exists already.
func (s *OutfitService) MarkWornToday(ctx context.Context, id int64) error {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return err
	}
	today := s.clock.today()
	worn, err := s.wears.IsWornOn(ctx, id, today)
	if err != nil {
		return fmt.Errorf("failed to check wear log: %w", err)
	}
	if worn {
		return nil
	}
	if _, err := s.wears.AddWear(ctx, id, today); err != nil {
		return fmt.Errorf("failed to log wear: %w", err)
	}
	s.logger.Info("outfit marked worn today", "outfit_id", id)
	return nil
}

// UnmarkWornToday removes every wear logged for today.
func (s *OutfitService) UnmarkWornToday(ctx context.Context, id int64) error {
	if _, err := s.requireOutfit(ctx, id); err != nil {
		return err
	}
	n, err := s.wears.DeleteWearsOn(ctx, id, s.clock.today())
	if err != nil {
		return fmt.Errorf("failed to remove today's wears: %w", err)
	}
	s.logger.Info("outfit unmarked worn today", "outfit_id", id, "removed", n)
	return nil
}
