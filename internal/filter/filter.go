// Package filter narrows and orders a clothing list the way the closet view
// shows it. Tag filtering happens in the store; everything else happens here.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vbonduro/wardrobe/internal/domain"
)

const (
	// All disables an equality filter.
	All = "All"
	// NoSize matches items whose size is unset or blank.
	NoSize = "No Size"
	// NoSeason matches items whose season is unset or blank.
	NoSeason = "No Season"
)

// Sort selects the result order.
type Sort string

const (
	SortNewest   Sort = "Newest"
	SortNameAsc  Sort = "Name A-Z"
	SortNameDesc Sort = "Name Z-A"
)

// Sorts lists the modes in display order.
var Sorts = []Sort{SortNewest, SortNameAsc, SortNameDesc}

var sortAliases = map[string]Sort{
	"newest":    SortNewest,
	"name a-z":  SortNameAsc,
	"name_asc":  SortNameAsc,
	"name-asc":  SortNameAsc,
	"name z-a":  SortNameDesc,
	"name_desc": SortNameDesc,
	"name-desc": SortNameDesc,
}

// ParseSort maps a label or alias to a Sort. Unknown and empty values give
// SortNewest and false.
func ParseSort(s string) (Sort, bool) {
	sort, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return SortNewest, false
	}
	return sort, true
}

// Criteria is one combination of the closet view's inputs. Zero values leave
// the list untouched.
type Criteria struct {
	Query    string  `json:"query,omitempty"`
	Category string  `json:"category,omitempty"`
	Color    string  `json:"color,omitempty"`
	Size     string  `json:"size,omitempty"`
	Season   string  `json:"season,omitempty"`
	TagIDs   []int64 `json:"tagIds,omitempty"`
	Sort     Sort    `json:"sort,omitempty"`
}

// FromSavedFilter turns a stored preset into criteria. A name sort picks A-Z
// unless the preset explicitly asks for descending order.
func FromSavedFilter(f *domain.SavedFilterWithTags) Criteria {
	c := Criteria{
		Category: deref(f.Category),
		Color:    deref(f.Color),
		Size:     deref(f.Size),
		Season:   deref(f.Season),
		Sort:     SortNewest,
	}
	if f.SortBy != nil && strings.EqualFold(*f.SortBy, "name") {
		c.Sort = SortNameAsc
		if f.SortAscending != nil && !*f.SortAscending {
			c.Sort = SortNameDesc
		}
	}
	for _, tag := range f.Tags {
		c.TagIDs = append(c.TagIDs, tag.ID)
	}
	return c
}

// SortFields splits a sort mode into the preset columns sortBy and
// sortAscending. Newest is stored as no sort at all.
func SortFields(s Sort) (sortBy *string, ascending *bool) {
	name := "name"
	switch s {
	case SortNameAsc:
		asc := true
		return &name, &asc
	case SortNameDesc:
		asc := false
		return &name, &asc
	}
	return nil, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Apply returns the items matching every criterion, ordered by c.Sort. The
// input slice is not modified. Tag ids are ignored; the caller is expected to
// have narrowed items by tag already.
func Apply(items []*domain.ClothingItem, c Criteria) []*domain.ClothingItem {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(c.Query))

	out := make([]*domain.ClothingItem, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(fold.String(item.Name), query) {
			continue
		}
		if !matchEqual(c.Category, item.Category) || !matchEqual(c.Color, item.Color) {
			continue
		}
		if !matchOptional(c.Size, NoSize, item.Size) || !matchOptional(c.Season, NoSeason, item.Season) {
			continue
		}
		out = append(out, item)
	}

	sortItems(out, c.Sort)
	return out
}

func active(want string) bool {
	return want != "" && want != All
}

func matchEqual(want, got string) bool {
	return !active(want) || want == got
}

func matchOptional(want, none string, got *string) bool {
	if !active(want) {
		return true
	}
	blank := got == nil || strings.TrimSpace(*got) == ""
	if want == none {
		return blank
	}
	return !blank && *got == want
}

// sortItems orders in place. Name sorts compare case-folded names, then the
// raw names, then ids, so Z-A is always the exact reverse of A-Z. Equal names
// therefore break ties by ascending id under A-Z, not newest first: a
// newest-first tie break in both directions would stop Z-A from mirroring A-Z.
func sortItems(items []*domain.ClothingItem, s Sort) {
	switch s {
	case SortNameAsc, SortNameDesc:
		fold := cases.Fold()
		keys := make(map[int64]string, len(items))
		for _, item := range items {
			keys[item.ID] = fold.String(item.Name)
		}
		slices.SortStableFunc(items, func(a, b *domain.ClothingItem) int {
			if c := strings.Compare(keys[a.ID], keys[b.ID]); c != 0 {
				return c
			}
			if c := strings.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		if s == SortNameDesc {
			slices.Reverse(items)
		}
	default:
		slices.SortStableFunc(items, func(a, b *domain.ClothingItem) int {
			return cmp.Compare(b.ID, a.ID)
		})
	}
}
