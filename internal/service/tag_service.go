package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// tagRepository is the subset of store.TagStore that TagService requires.
type tagRepository interface {
	List(ctx context.Context) ([]*domain.Tag, error)
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	EnsureTagID(ctx context.Context, name string) (int64, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type TagService struct {
	tags   tagRepository
	hub    *watch.Hub
	logger *slog.Logger
}

func NewTagService(tags tagRepository, hub *watch.Hub, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, hub: hub, logger: logger}
}

func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.tags.List(ctx)
}

func (s *TagService) Watch(ctx context.Context) *watch.Subscription[[]*domain.Tag] {
	return watch.Subscribe(ctx, s.hub, s.List, store.TableTags)
}

// Ensure returns the tag named name, creating it when needed.
func (s *TagService) Ensure(ctx context.Context, name string) (*domain.Tag, error) {
	id, err := s.tags.EnsureTagID(ctx, name)
	if err != nil {
		return nil, err
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tag == nil {
		return nil, apperr.Inconsistent(fmt.Sprintf("tag %d vanished after being ensured", id))
	}
	return tag, nil
}

func (s *TagService) Rename(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	if err := s.tags.Rename(ctx, id, name); err != nil {
		return nil, notFound(err, "tag")
	}
	s.logger.Info("tag renamed", "tag_id", id)
	return s.tags.GetByID(ctx, id)
}

// Delete removes the tag from every item and preset, then the tag itself.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return notFound(err, "tag")
	}
	s.logger.Info("tag deleted", "tag_id", id)
	return nil
}
