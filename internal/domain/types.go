package domain

import "time"

type ClothingItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Size     *string `json:"size,omitempty"`
	Season   *string `json:"season,omitempty"`
	ImageURI *string `json:"imageUri,omitempty"`
}

// Outfit ratings are kept within [MinRating, MaxRating].
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

type Outfit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Occasion  *string   `json:"occasion,omitempty"`
	Season    *string   `json:"season,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClampRating forces r into the valid rating range.
func ClampRating(r int) int {
	return min(max(r, MinRating), MaxRating)
}

type WearEvent struct {
	ID       int64    `json:"id"`
	OutfitID int64    `json:"outfitId"`
	WornDate EpochDay `json:"wornDate"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SavedFilter struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      *string   `json:"category,omitempty"`
	Color         *string   `json:"color,omitempty"`
	Size          *string   `json:"size,omitempty"`
	Season        *string   `json:"season,omitempty"`
	SortBy        *string   `json:"sortBy,omitempty"`
	SortAscending *bool     `json:"sortAscending,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ClothingWithTags struct {
	*ClothingItem
	Tags []*Tag `json:"tags"`
}

type OutfitWithClothes struct {
	*Outfit
	Clothes []*ClothingItem `json:"clothes"`
}

type SavedFilterWithTags struct {
	*SavedFilter
	Tags []*Tag `json:"tags"`
}

// OutfitWearStats is derived from the wear log. LastWorn is nil when the
// outfit has never been worn.
type OutfitWearStats struct {
	OutfitID  int64     `json:"outfitId"`
	Name      string    `json:"name"`
	WearCount int       `json:"wearCount"`
	LastWorn  *EpochDay `json:"lastWorn,omitempty"`
}

// ClothingWearStats counts the wears of every outfit containing the item.
type ClothingWearStats struct {
	ClothingID int64     `json:"clothingId"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	ImageURI   *string   `json:"imageUri,omitempty"`
	WearCount  int       `json:"wearCount"`
	LastWorn   *EpochDay `json:"lastWorn,omitempty"`
}
