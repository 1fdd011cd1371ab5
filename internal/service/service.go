// Package service holds the wardrobe's use cases. Services validate input
// before any write, translate store errors into apperr kinds, and expose
// live views through the watch hub.
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/filter"
	"github.com/vbonduro/wardrobe/internal/store"
)

// Clock returns the current time. Services derive "today" from it.
type Clock func() time.Time

func (c Clock) today() domain.EpochDay {
	if c == nil {
		return domain.Today()
	}
	return domain.EpochDayOf(c())
}

// notFound turns store.ErrNotFound into an apperr not-found for resource and
// passes every other error through.
func notFound(err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

// optional trims s and maps blank to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// criterion maps "", "All" and blank to nil, so presets only store real
// predicates.
func criterion(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == filter.All {
		return nil
	}
	return &s
}
