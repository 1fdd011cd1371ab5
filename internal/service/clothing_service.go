package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/filter"
	"github.com/vbonduro/wardrobe/internal/photostore"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/validation"
	"github.com/vbonduro/wardrobe/internal/vision"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// clothingRepository is the subset of store.ClothingStore that ClothingService requires.
type clothingRepository interface {
	CreateWithTags(ctx context.Context, item *domain.ClothingItem, tagIDs []int64) (*domain.ClothingWithTags, error)
	GetByID(ctx context.Context, id int64) (*domain.ClothingItem, error)
	GetWithTags(ctx context.Context, id int64) (*domain.ClothingWithTags, error)
	ListWithAllTags(ctx context.Context, tagIDs []int64) ([]*domain.ClothingItem, error)
	UpdateWithTags(ctx context.Context, item *domain.ClothingItem, tagIDs []int64) error
	SetImage(ctx context.Context, id int64, imageURI *string) error
	Delete(ctx context.Context, id int64) error
}

// itemTagRepository is the subset of store.TagStore that ClothingService requires.
type itemTagRepository interface {
	EnsureTagIDs(ctx context.Context, names []string) ([]int64, error)
	SetTagsForItem(ctx context.Context, clothingID int64, tagIDs []int64) error
	TagsForItem(ctx context.Context, clothingID int64) ([]*domain.Tag, error)
}

// ClothingInput is the editable part of an item. Tags are names; nil leaves
// the tag set alone on update.
type ClothingInput struct {
	Name     string   `json:"name" validate:"notblank,max=200"`
	Category string   `json:"category" validate:"notblank,max=100"`
	Color    string   `json:"color" validate:"notblank,max=100"`
	Size     *string  `json:"size,omitempty" validate:"omitempty,max=50"`
	Season   *string  `json:"season,omitempty" validate:"omitempty,max=50"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
}

func (in ClothingInput) normalized() ClothingInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Color = strings.TrimSpace(in.Color)
	in.Size = optional(in.Size)
	in.Season = optional(in.Season)
	return in
}

type ClothingService struct {
	clothes   clothingRepository
	tags      itemTagRepository
	photos    photostore.PhotoStore
	suggester vision.Suggester
	limiter   *rate.Limiter
	hub       *watch.Hub
	validator *validation.Validator
	logger    *slog.Logger
}

// NewClothingService wires the service. suggester may be nil to disable
// photo suggestions; limiter may be nil for no rate limit.
func NewClothingService(
	clothes clothingRepository,
	tags itemTagRepository,
	photos photostore.PhotoStore,
	suggester vision.Suggester,
	limiter *rate.Limiter,
	hub *watch.Hub,
	logger *slog.Logger,
) *ClothingService {
	return &ClothingService{
		clothes:   clothes,
		tags:      tags,
		photos:    photos,
		suggester: suggester,
		limiter:   limiter,
		hub:       hub,
		validator: validation.New(),
		logger:    logger,
	}
}

func (s *ClothingService) Create(ctx context.Context, in ClothingInput) (*domain.ClothingWithTags, error) {
	in = in.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	tagIDs, err := s.tags.EnsureTagIDs(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	item, err := s.clothes.CreateWithTags(ctx, &domain.ClothingItem{
		Name:     in.Name,
		Category: in.Category,
		Color:    in.Color,
		Size:     in.Size,
		Season:   in.Season,
	}, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create clothing item: %w", err)
	}
	s.logger.Info("clothing item created", "clothing_id", item.ID, "name", item.Name)
	return item, nil
}

// Get returns the item with its tags, or nil when it does not exist.
func (s *ClothingService) Get(ctx context.Context, id int64) (*domain.ClothingWithTags, error) {
	return s.clothes.GetWithTags(ctx, id)
}

// List narrows the closet by c.TagIDs in the database, then applies the
// remaining criteria in memory.
func (s *ClothingService) List(ctx context.Context, c filter.Criteria) ([]*domain.ClothingItem, error) {
	items, err := s.clothes.ListWithAllTags(ctx, c.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list clothing items: %w", err)
	}
	return filter.Apply(items, c), nil
}

// Watch keeps List(c) current as clothes and their tags change.
func (s *ClothingService) Watch(ctx context.Context, c filter.Criteria) *watch.Subscription[[]*domain.ClothingItem] {
	return watch.Subscribe(ctx, s.hub, func(ctx context.Context) ([]*domain.ClothingItem, error) {
		return s.List(ctx, c)
	}, store.TableClothes, store.TableClothingTags)
}

func (s *ClothingService) Update(ctx context.Context, id int64, in ClothingInput) (*domain.ClothingWithTags, error) {
	in = in.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	existing, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clothing item: %w", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("clothing item")
	}

	existing.Name = in.Name
	existing.Category = in.Category
	existing.Color = in.Color
	existing.Size = in.Size
	existing.Season = in.Season

	var tagIDs []int64
	if in.Tags != nil {
		if tagIDs, err = s.tags.EnsureTagIDs(ctx, in.Tags); err != nil {
			return nil, err
		}
	}
	if err := s.clothes.UpdateWithTags(ctx, existing, tagIDs); err != nil {
		return nil, notFound(err, "clothing item")
	}
	return s.clothes.GetWithTags(ctx, id)
}

// Delete removes the item and, best effort, its photo file.
func (s *ClothingService) Delete(ctx context.Context, id int64) error {
	item, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get clothing item: %w", err)
	}
	if item == nil {
		return apperr.NotFound("clothing item")
	}
	if err := s.clothes.Delete(ctx, id); err != nil {
		return notFound(err, "clothing item")
	}
	s.logger.Info("clothing item deleted", "clothing_id", id)

	if item.ImageURI != nil {
		s.deletePhoto(ctx, *item.ImageURI)
	}
	return nil
}

// SetTags replaces the item's tags with names, creating tags as needed.
func (s *ClothingService) SetTags(ctx context.Context, id int64, names []string) ([]*domain.Tag, error) {
	item, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clothing item: %w", err)
	}
	if item == nil {
		return nil, apperr.NotFound("clothing item")
	}
	if err := s.replaceTags(ctx, id, names); err != nil {
		return nil, err
	}
	return s.tags.TagsForItem(ctx, id)
}

func (s *ClothingService) replaceTags(ctx context.Context, id int64, names []string) error {
	ids, err := s.tags.EnsureTagIDs(ctx, names)
	if err != nil {
		return err
	}
	if err := s.tags.SetTagsForItem(ctx, id, ids); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	return nil
}

// UploadPhoto stores a new photo for the item and drops the previous file.
func (s *ClothingService) UploadPhoto(ctx context.Context, id int64, imageData []byte, mimeType string) (*domain.ClothingItem, error) {
	s.logger.Info("upload photo started", "clothing_id", id, "mime_type", mimeType, "bytes", len(imageData))

	item, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clothing item: %w", err)
	}
	if item == nil {
		return nil, apperr.NotFound("clothing item")
	}

	storageKey, err := s.photos.Save(ctx, fmt.Sprintf("clothing_%d", id), mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "clothing_id", id, "storage_key", storageKey)

	if err := s.clothes.SetImage(ctx, id, &storageKey); err != nil {
		s.deletePhoto(ctx, storageKey)
		return nil, notFound(err, "clothing item")
	}
	if item.ImageURI != nil && *item.ImageURI != storageKey {
		s.deletePhoto(ctx, *item.ImageURI)
	}
	return s.clothes.GetByID(ctx, id)
}

// Photo opens the item's photo. The caller closes the reader.
func (s *ClothingService) Photo(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	item, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get clothing item: %w", err)
	}
	if item == nil || item.ImageURI == nil {
		return nil, "", apperr.NotFound("photo")
	}
	rc, mimeType, err := s.photos.Get(ctx, *item.ImageURI)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			return nil, "", apperr.NotFound("photo")
		}
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	return rc, mimeType, nil
}

// RemovePhoto clears the item's image reference and deletes the file.
func (s *ClothingService) RemovePhoto(ctx context.Context, id int64) error {
	item, err := s.clothes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get clothing item: %w", err)
	}
	if item == nil {
		return apperr.NotFound("clothing item")
	}
	if item.ImageURI == nil {
		return nil
	}
	if err := s.clothes.SetImage(ctx, id, nil); err != nil {
		return notFound(err, "clothing item")
	}
	s.deletePhoto(ctx, *item.ImageURI)
	return nil
}

func (s *ClothingService) deletePhoto(ctx context.Context, key string) {
	if err := s.photos.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo file", "storage_key", key, "error", err)
	}
}

// Suggest asks the vision backend for attributes of the pictured item.
func (s *ClothingService) Suggest(ctx context.Context, imageData []byte, mimeType string) (*vision.Suggestion, error) {
	if s.suggester == nil {
		return nil, apperr.Unavailable("photo suggestions are disabled")
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, apperr.RateLimited("too many suggestion requests, try again shortly")
	}

	s.logger.Info("vision suggestion started", "mime_type", mimeType, "bytes", len(imageData))
	suggestion, err := s.suggester.Suggest(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		if errors.Is(err, vision.ErrNoSuggestion) {
			return nil, apperr.Validation("no clothing item recognised in the photo", nil)
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	s.logger.Info("vision suggestion complete", "name", suggestion.Name, "category", suggestion.Category)
	return suggestion, nil
}
