package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wardrobe/internal/vision"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}

func TestOllamaSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Model   string         `json:"model"`
			Prompt  string         `json:"prompt"`
			Images  []string       `json:"images"`
			Stream  bool           `json:"stream"`
			Options map[string]any `json:"options"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava", req.Model)
		assert.Equal(t, vision.SuggestionPrompt, req.Prompt)
		assert.Len(t, req.Images, 1)
		assert.False(t, req.Stream)
		assert.EqualValues(t, 0, req.Options["temperature"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    req.Model,
			"response": "Red polo | t-shirt | Red | m | summer",
		})
	}))
	defer server.Close()

	s := NewOllamaSuggester(server.URL, "llava")
	got, err := s.Suggest(context.Background(), bytes.NewReader(jpegHeader), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "Red polo", got.Name)
	assert.Equal(t, "T-Shirt", got.Category)
	assert.Equal(t, "Red", got.Color)
	assert.Equal(t, "M", got.Size)
	assert.Equal(t, "Summer", got.Season)
}

func TestOllamaSuggestNoUsableLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "I cannot see any clothing."})
	}))
	defer server.Close()

	_, err := NewOllamaSuggester(server.URL, "llava").Suggest(context.Background(), bytes.NewReader(jpegHeader), "image/jpeg")
	assert.ErrorIs(t, err, vision.ErrNoSuggestion)
}

func TestOllamaSuggestNetworkError(t *testing.T) {
	s := NewOllamaSuggester("http://localhost:99999", "llava")

	_, err := s.Suggest(context.Background(), bytes.NewReader(jpegHeader), "image/jpeg")
	assert.Error(t, err)
}

func TestOllamaSuggestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewOllamaSuggester(server.URL, "llava").Suggest(context.Background(), bytes.NewReader(jpegHeader), "image/jpeg")
	assert.Error(t, err)
}

func TestOllamaSuggestModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": `model "llava" not found, try pulling it first`})
	}))
	defer server.Close()

	_, err := NewOllamaSuggester(server.URL+"/", "llava").Suggest(context.Background(), bytes.NewReader(jpegHeader), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestOllamaSuggestReadError(t *testing.T) {
	s := NewOllamaSuggester("http://localhost:11434", "llava")

	_, err := s.Suggest(context.Background(), failingReader{}, "image/jpeg")
	assert.Error(t, err)
}
