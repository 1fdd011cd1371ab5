package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/filter"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/validation"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// savedFilterRepository is the subset of store.SavedFilterStore that SavedFilterService requires.
type savedFilterRepository interface {
	Create(ctx context.Context, f *domain.SavedFilter, tagIDs []int64) (*domain.SavedFilterWithTags, error)
	Update(ctx context.Context, f *domain.SavedFilter, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetWithTags(ctx context.Context, id int64) (*domain.SavedFilterWithTags, error)
	ListWithTags(ctx context.Context) ([]*domain.SavedFilterWithTags, error)
}

// tagLookup is the subset of store.TagStore that SavedFilterService requires.
type tagLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
}

// clothingLister is the subset of ClothingService that SavedFilterService requires.
type clothingLister interface {
	List(ctx context.Context, c filter.Criteria) ([]*domain.ClothingItem, error)
}

// SavedFilterInput captures the closet view's current criteria under a name.
// "All" and empty values are stored as no predicate.
type SavedFilterInput struct {
	Name     string      `json:"name" validate:"notblank,max=100"`
	Category string      `json:"category,omitempty" validate:"max=100"`
	Color    string      `json:"color,omitempty" validate:"max=100"`
	Size     string      `json:"size,omitempty" validate:"max=50"`
	Season   string      `json:"season,omitempty" validate:"max=50"`
	Sort     filter.Sort `json:"sort,omitempty" validate:"omitempty,oneof=Newest 'Name A-Z' 'Name Z-A'"`
	TagIDs   []int64     `json:"tagIds,omitempty" validate:"omitempty,dive,gt=0"`
}

func (in SavedFilterInput) toFilter() *domain.SavedFilter {
	sortBy, ascending := filter.SortFields(in.Sort)
	return &domain.SavedFilter{
		Name:          strings.TrimSpace(in.Name),
		Category:      criterion(in.Category),
		Color:         criterion(in.Color),
		Size:          criterion(in.Size),
		Season:        criterion(in.Season),
		SortBy:        sortBy,
		SortAscending: ascending,
	}
}

type SavedFilterService struct {
	filters   savedFilterRepository
	tags      tagLookup
	clothes   clothingLister
	hub       *watch.Hub
	validator *validation.Validator
	logger    *slog.Logger
}

func NewSavedFilterService(
	filters savedFilterRepository,
	tags tagLookup,
	clothes clothingLister,
	hub *watch.Hub,
	logger *slog.Logger,
) *SavedFilterService {
	return &SavedFilterService{
		filters:   filters,
		tags:      tags,
		clothes:   clothes,
		hub:       hub,
		validator: validation.New(),
		logger:    logger,
	}
}

func (s *SavedFilterService) checkTags(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		tag, err := s.tags.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get tag: %w", err)
		}
		if tag == nil {
			return apperr.Validation(fmt.Sprintf("tag %d does not exist", id),
				map[string]string{"tagIds": "unknown tag"})
		}
	}
	return nil
}

func (s *SavedFilterService) Create(ctx context.Context, in SavedFilterInput) (*domain.SavedFilterWithTags, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}
	f, err := s.filters.Create(ctx, in.toFilter(), in.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved filter: %w", err)
	}
	s.logger.Info("saved filter created", "saved_filter_id", f.ID, "name", f.Name)
	return f, nil
}

// Update replaces every field of the preset, tags included.
func (s *SavedFilterService) Update(ctx context.Context, id int64, in SavedFilterInput) (*domain.SavedFilterWithTags, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}
	f := in.toFilter()
	f.ID = id
	if err := s.filters.Update(ctx, f, in.TagIDs); err != nil {
		return nil, notFound(err, "saved filter")
	}
	return s.filters.GetWithTags(ctx, id)
}

func (s *SavedFilterService) Delete(ctx context.Context, id int64) error {
	if err := s.filters.Delete(ctx, id); err != nil {
		return notFound(err, "saved filter")
	}
	s.logger.Info("saved filter deleted", "saved_filter_id", id)
	return nil
}

// Get returns the preset with its tags, or nil when missing.
func (s *SavedFilterService) Get(ctx context.Context, id int64) (*domain.SavedFilterWithTags, error) {
	return s.filters.GetWithTags(ctx, id)
}

func (s *SavedFilterService) List(ctx context.Context) ([]*domain.SavedFilterWithTags, error) {
	return s.filters.ListWithTags(ctx)
}

func (s *SavedFilterService) WatchList(ctx context.Context) *watch.Subscription[[]*domain.SavedFilterWithTags] {
	return watch.Subscribe(ctx, s.hub, s.List, store.TableSavedFilters, store.TableSavedFilterTags, store.TableTags)
}

// Apply lists the clothes matching the preset, further narrowed by a free
// text query.
func (s *SavedFilterService) Apply(ctx context.Context, id int64, query string) ([]*domain.ClothingItem, error) {
	f, err := s.filters.GetWithTags(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved filter: %w", err)
	}
	if f == nil {
		return nil, apperr.NotFound("saved filter")
	}
	c := filter.FromSavedFilter(f)
	c.Query = query
	return s.clothes.List(ctx, c)
}
