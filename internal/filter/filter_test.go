package filter

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/wardrobe/internal/domain"
)

func strPtr(s string) *string { return &s }

func ids(items []*domain.ClothingItem) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func closet() []*domain.ClothingItem {
	return []*domain.ClothingItem{
		{ID: 1, Name: "Red Shirt", Category: "T-Shirt", Color: "Red", Season: strPtr("Summer")},
		{ID: 2, Name: "blue jeans", Category: "Jeans", Color: "Blue", Size: strPtr("M"), Season: strPtr("All")},
		{ID: 3, Name: "Wool Coat", Category: "Jacket", Color: "Black", Size: strPtr("L"), Season: strPtr("Winter")},
		{ID: 4, Name: "Straße Shirt", Category: "Shirt", Color: "White", Size: strPtr("S"), Season: strPtr("  ")},
		{ID: 5, Name: "Summer Dress", Category: "Dress", Color: "Red", Size: strPtr("S")},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"no criteria is newest first", Criteria{}, []int64{5, 4, 3, 2, 1}},
		{"All is a no-op", Criteria{Category: All, Color: All, Size: All, Season: All}, []int64{5, 4, 3, 2, 1}},
		{"query is case-insensitive", Criteria{Query: "SHIRT"}, []int64{4, 1}},
		{"query uses case folding", Criteria{Query: "strasse"}, []int64{4}},
		{"query is trimmed", Criteria{Query: "  coat "}, []int64{3}},
		{"category", Criteria{Category: "Jeans"}, []int64{2}},
		{"color", Criteria{Color: "Red"}, []int64{5, 1}},
		{"no size matches null", Criteria{Size: NoSize}, []int64{1}},
		{"explicit size excludes null", Criteria{Size: "S"}, []int64{5, 4}},
		{"no season matches null and blank", Criteria{Season: NoSeason}, []int64{5, 4}},
		{"season", Criteria{Season: "Winter"}, []int64{3}},
		{"combined", Criteria{Color: "Red", Size: "S"}, []int64{5}},
		{"nothing matches", Criteria{Query: "hat"}, []int64{}},
		{"name ascending", Criteria{Sort: SortNameAsc}, []int64{2, 1, 4, 5, 3}},
		{"name descending", Criteria{Sort: SortNameDesc}, []int64{3, 5, 4, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(closet(), tt.criteria)))
		})
	}
}

func TestApplyRedShirtSizeScenario(t *testing.T) {
	items := []*domain.ClothingItem{
		{ID: 1, Name: "Red Shirt", Category: "T-Shirt", Color: "Red", Season: strPtr("Summer")},
	}

	assert.Len(t, Apply(items, Criteria{Size: NoSize}), 1)
	assert.Empty(t, Apply(items, Criteria{Size: "S"}))
}

func TestApplyNameSortsAreExactReverses(t *testing.T) {
	items := []*domain.ClothingItem{
		{ID: 1, Name: "shirt"},
		{ID: 2, Name: "Shirt"},
		{ID: 3, Name: "apron"},
		{ID: 4, Name: "shirt"},
		{ID: 5, Name: "Zip hoodie"},
		{ID: 6, Name: "Apron"},
	}

	asc := ids(Apply(items, Criteria{Sort: SortNameAsc}))
	assert.Equal(t, []int64{6, 3, 2, 1, 4, 5}, asc, "identical names keep ascending id order")

	desc := ids(Apply(items, Criteria{Sort: SortNameDesc}))
	slices.Reverse(desc)
	assert.Equal(t, asc, desc)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := closet()
	before := ids(items)

	Apply(items, Criteria{Sort: SortNameAsc})
	assert.Equal(t, before, ids(items))
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
		ok   bool
	}{
		{"Newest", SortNewest, true},
		{"name a-z", SortNameAsc, true},
		{"name_desc", SortNameDesc, true},
		{"Name Z-A", SortNameDesc, true},
		{"", SortNewest, false},
		{"random", SortNewest, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSort(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFromSavedFilter(t *testing.T) {
	asc, desc := true, false
	tests := []struct {
		name   string
		filter *domain.SavedFilter
		want   Criteria
	}{
		{
			name:   "no sort",
			filter: &domain.SavedFilter{Category: strPtr("Jeans"), Size: strPtr(NoSize)},
			want:   Criteria{Category: "Jeans", Size: NoSize, Sort: SortNewest, TagIDs: []int64{7}},
		},
		{
			name:   "name ascending",
			filter: &domain.SavedFilter{SortBy: strPtr("name"), SortAscending: &asc},
			want:   Criteria{Sort: SortNameAsc, TagIDs: []int64{7}},
		},
		{
			name:   "name descending",
			filter: &domain.SavedFilter{SortBy: strPtr("name"), SortAscending: &desc},
			want:   Criteria{Sort: SortNameDesc, TagIDs: []int64{7}},
		},
		{
			name:   "name without direction",
			filter: &domain.SavedFilter{SortBy: strPtr("name")},
			want:   Criteria{Sort: SortNameAsc, TagIDs: []int64{7}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromSavedFilter(&domain.SavedFilterWithTags{
				SavedFilter: tt.filter,
				Tags:        []*domain.Tag{{ID: 7, Name: "work"}},
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortFieldsRoundTrip(t *testing.T) {
	for _, s := range Sorts {
		by, asc := SortFields(s)
		got := FromSavedFilter(&domain.SavedFilterWithTags{
			SavedFilter: &domain.SavedFilter{SortBy: by, SortAscending: asc},
		})
		assert.Equal(t, s, got.Sort)
	}
}
