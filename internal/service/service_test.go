package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vbonduro/wardrobe/internal/db"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/photostore"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/vision"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// stubSuggester is a minimal vision.Suggester for tests.
type stubSuggester struct {
	result *vision.Suggestion
	err    error
	calls  int
}

func (s *stubSuggester) Suggest(_ context.Context, _ io.Reader, _ string) (*vision.Suggestion, error) {
	s.calls++
	return s.result, s.err
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	n     int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _ := io.ReadAll(r)
	s.n++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.n)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[key]
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[key]; !ok {
		return photostore.ErrNotFound
	}
	delete(s.saved, key)
	return nil
}

func (s *stubPhotoStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.saved))
	for k := range s.saved {
		keys = append(keys, k)
	}
	return keys
}

// fixedDay is 2024-06-15.
var fixedDay = domain.EpochDayOf(time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC))

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
}

type testEnv struct {
	hub       *watch.Hub
	photos    *stubPhotoStore
	suggester *stubSuggester
	clothes   *ClothingService
	tags      *TagService
	outfits   *OutfitService
	filters   *SavedFilterService
	insights  *InsightsService
	wears     *store.WearStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	logger := slog.Default()
	hub := watch.NewHub(logger)
	clothingStore := store.NewClothingStore(d, hub)
	tagStore := store.NewTagStore(d, hub)
	outfitStore := store.NewOutfitStore(d, hub)
	wearStore := store.NewWearStore(d, hub)

	env := &testEnv{
		hub:       hub,
		photos:    newStubPhotoStore(),
		suggester: &stubSuggester{result: &vision.Suggestion{Name: "Red polo", Category: "T-Shirt", Color: "Red"}},
		wears:     wearStore,
	}
	env.clothes = NewClothingService(clothingStore, tagStore, env.photos, env.suggester,
		rate.NewLimiter(rate.Every(time.Hour), 2), hub, logger)
	env.tags = NewTagService(tagStore, hub, logger)
	env.outfits = NewOutfitService(outfitStore, wearStore, clothingStore, hub, fixedClock, logger)
	env.filters = NewSavedFilterService(store.NewSavedFilterStore(d, hub), tagStore, env.clothes, hub, logger)
	env.insights = NewInsightsService(store.NewInsightsStore(d), hub, fixedClock, InsightsOptions{})
	return env
}

func strPtr(s string) *string { return &s }

func (e *testEnv) mustClothing(t *testing.T, name string, tags ...string) *domain.ClothingWithTags {
	t.Helper()
	item, err := e.clothes.Create(context.Background(), ClothingInput{Name: name, Category: "Shirt", Color: "Blue", Tags: tags})
	require.NoError(t, err)
	return item
}

func (e *testEnv) mustOutfit(t *testing.T, name string, clothingIDs ...int64) *domain.OutfitWithClothes {
	t.Helper()
	o, err := e.outfits.Create(context.Background(), OutfitInput{Name: name, ClothingIDs: clothingIDs})
	require.NoError(t, err)
	return o
}

// next waits for the next snapshot or fails after a second.
func next[T any](t *testing.T, sub *watch.Subscription[T]) T {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		require.NoError(t, snap.Err)
		return snap.Value
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

// waitFor reads snapshots until ok accepts one or a second passes.
func waitFor[T any](t *testing.T, sub *watch.Subscription[T], ok func(T) bool) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case snap, open := <-sub.C():
			require.True(t, open, "subscription closed")
			require.NoError(t, snap.Err)
			if ok(snap.Value) {
				return snap.Value
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
		}
	}
}
