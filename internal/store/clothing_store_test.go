package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wardrobe/internal/domain"
)

func TestClothingStoreCreate(t *testing.T) {
	d := openTestDB(t)
	n := &recordingNotifier{}
	clothes := NewClothingStore(d, n)
	ctx := context.Background()

	item, err := clothes.Create(ctx, &domain.ClothingItem{
		Name: "Red Shirt", Category: "T-Shirt", Color: "Red", Season: strPtr("Summer"),
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Red Shirt", item.Name)
	assert.Nil(t, item.Size)
	require.NotNil(t, item.Season)
	assert.Equal(t, "Summer", *item.Season)
	assert.Nil(t, item.ImageURI)
	assert.Contains(t, n.seen(), TableClothes)
}

func TestClothingStoreGetByID_NotFound(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)

	item, err := clothes.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestClothingStoreListNewestFirst(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)

	a := mustCreateClothing(t, clothes, "A")
	b := mustCreateClothing(t, clothes, "B")

	list, err := clothes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestClothingStoreUpdate(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	ctx := context.Background()

	item := mustCreateClothing(t, clothes, "Shirt")
	item.Name = "Blue Shirt"
	item.Color = "Blue"
	item.Size = strPtr("M")
	require.NoError(t, clothes.Update(ctx, item))

	got, err := clothes.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Shirt", got.Name)
	assert.Equal(t, "Blue", got.Color)
	require.NotNil(t, got.Size)
	assert.Equal(t, "M", *got.Size)
}

func TestClothingStoreUpdate_NotFound(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)

	err := clothes.Update(context.Background(), &domain.ClothingItem{ID: 42, Name: "x", Category: "y", Color: "z"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClothingStoreSetImage(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	ctx := context.Background()

	item := mustCreateClothing(t, clothes, "Shirt")
	require.NoError(t, clothes.SetImage(ctx, item.ID, strPtr("clothes/abc.jpg")))

	got, err := clothes.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURI)
	assert.Equal(t, "clothes/abc.jpg", *got.ImageURI)

	require.NoError(t, clothes.SetImage(ctx, item.ID, nil))
	got, err = clothes.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImageURI)
}

func TestClothingStoreDeleteCleansJunctions(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	outfits := NewOutfitStore(d, nil)
	tags := NewTagStore(d, nil)
	ctx := context.Background()

	item := mustCreateClothing(t, clothes, "Shared Jacket")
	other := mustCreateClothing(t, clothes, "Jeans")
	_, err := outfits.CreateWithClothes(ctx, &domain.Outfit{Name: "Work"}, []int64{item.ID, other.ID})
	require.NoError(t, err)
	_, err = outfits.CreateWithClothes(ctx, &domain.Outfit{Name: "Weekend"}, []int64{item.ID})
	require.NoError(t, err)
	_, err = tags.AddTagToItem(ctx, item.ID, "Warm")
	require.NoError(t, err)

	require.NoError(t, clothes.Delete(ctx, item.ID))

	got, err := clothes.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, countRows(t, d, `SELECT COUNT(*) FROM outfit_clothes WHERE clothingId = ?`, item.ID))
	assert.Zero(t, countRows(t, d, `SELECT COUNT(*) FROM clothing_tags WHERE clothingId = ?`, item.ID))
	assert.Equal(t, 1, countRows(t, d, `SELECT COUNT(*) FROM outfit_clothes WHERE clothingId = ?`, other.ID))
}

func TestClothingStoreDelete_NotFound(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)

	err := clothes.Delete(context.Background(), 7)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClothingStoreListWithAllTags(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	tags := NewTagStore(d, nil)
	ctx := context.Background()

	both := mustCreateClothing(t, clothes, "Both")
	onlyA := mustCreateClothing(t, clothes, "Only A")
	none := mustCreateClothing(t, clothes, "None")

	tagA, err := tags.EnsureTagID(ctx, "A")
	require.NoError(t, err)
	tagB, err := tags.EnsureTagID(ctx, "B")
	require.NoError(t, err)
	require.NoError(t, tags.SetTagsForItem(ctx, both.ID, []int64{tagA, tagB}))
	require.NoError(t, tags.SetTagsForItem(ctx, onlyA.ID, []int64{tagA}))

	tests := []struct {
		name   string
		tagIDs []int64
		want   []int64
	}{
		{"no tags returns everything", nil, []int64{none.ID, onlyA.ID, both.ID}},
		{"single tag", []int64{tagA}, []int64{onlyA.ID, both.ID}},
		{"all tags required", []int64{tagA, tagB}, []int64{both.ID}},
		{"duplicates ignored", []int64{tagA, tagB, tagB}, []int64{both.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := clothes.ListWithAllTags(ctx, tt.tagIDs)
			require.NoError(t, err)
			ids := make([]int64, len(list))
			for i, item := range list {
				ids[i] = item.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestClothingStoreGetWithTags(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	tags := NewTagStore(d, nil)
	ctx := context.Background()

	item := mustCreateClothing(t, clothes, "Shirt")
	_, err := tags.AddTagToItem(ctx, item.ID, "work")
	require.NoError(t, err)
	_, err = tags.AddTagToItem(ctx, item.ID, "Casual")
	require.NoError(t, err)

	got, err := clothes.GetWithTags(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "Casual", got.Tags[0].Name)
	assert.Equal(t, "work", got.Tags[1].Name)

	missing, err := clothes.GetWithTags(ctx, item.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClothingStoreCreateWithTags(t *testing.T) {
	d := openTestDB(t)
	n := &recordingNotifier{}
	clothes := NewClothingStore(d, n)
	tags := NewTagStore(d, nil)
	ctx := context.Background()

	summer, err := tags.EnsureTagID(ctx, "summer")
	require.NoError(t, err)

	item, err := clothes.CreateWithTags(ctx, &domain.ClothingItem{Name: "Linen shirt", Category: "Shirt", Color: "White"},
		[]int64{summer, summer})
	require.NoError(t, err)
	require.Len(t, item.Tags, 1)
	assert.Equal(t, "summer", item.Tags[0].Name)
	assert.ElementsMatch(t, []string{TableClothes, TableClothingTags}, n.seen())
}

func TestClothingStoreCreateWithTags_RollsBackOnBadTag(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	ctx := context.Background()

	_, err := clothes.CreateWithTags(ctx, &domain.ClothingItem{Name: "Shirt", Category: "Shirt", Color: "Blue"}, []int64{404})
	require.Error(t, err)
	assert.Zero(t, countRows(t, d, `SELECT COUNT(*) FROM clothes`))
	assert.Zero(t, countRows(t, d, `SELECT COUNT(*) FROM clothing_tags`))
}

func TestClothingStoreUpdateWithTags(t *testing.T) {
	d := openTestDB(t)
	clothes := NewClothingStore(d, nil)
	tags := NewTagStore(d, nil)
	ctx := context.Background()

	work, err := tags.EnsureTagID(ctx, "work")
	require.NoError(t, err)
	created, err := clothes.CreateWithTags(ctx, &domain.ClothingItem{Name: "Shirt", Category: "Shirt", Color: "Blue"}, []int64{work})
	require.NoError(t, err)
	item := created.ClothingItem

	item.Name = "Oxford"
	require.NoError(t, clothes.UpdateWithTags(ctx, item, nil))
	got, err := clothes.GetWithTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oxford", got.Name)
	assert.Len(t, got.Tags, 1, "nil keeps the tag set")

	item.Name = "Broken"
	require.Error(t, clothes.UpdateWithTags(ctx, item, []int64{404}))
	got, err = clothes.GetWithTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oxford", got.Name, "a failed tag write undoes the field update")
	assert.Len(t, got.Tags, 1)

	item.Name = "Oxford"
	require.NoError(t, clothes.UpdateWithTags(ctx, item, []int64{}))
	got, err = clothes.GetWithTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	item.ID = 999
	assert.True(t, errors.Is(clothes.UpdateWithTags(ctx, item, []int64{work}), ErrNotFound))
}
