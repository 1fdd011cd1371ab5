package web

import (
	"net/http"
	"strconv"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/filter"
	"github.com/vbonduro/wardrobe/internal/service"
)

// criteriaFromQuery reads the closet view inputs: q, category, color, size,
// season, any number of tag ids and sort.
func criteriaFromQuery(r *http.Request) (filter.Criteria, error) {
	q := r.URL.Query()
	c := filter.Criteria{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Size:     q.Get("size"),
		Season:   q.Get("season"),
	}
	for _, raw := range q["tag"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c, apperr.Validation("invalid tag", map[string]string{"tag": "must be a tag id"})
		}
		c.TagIDs = append(c.TagIDs, id)
	}
	if raw := q.Get("sort"); raw != "" {
		sort, ok := filter.ParseSort(raw)
		if !ok {
			return c, apperr.Validation("invalid sort", map[string]string{"sort": "unknown sort mode"})
		}
		c.Sort = sort
	}
	return c, nil
}

func (s *Server) handleListClothes(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.svc.Clothes.List(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleCreateClothing(w http.ResponseWriter, r *http.Request) {
	var in service.ClothingInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Clothes.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetClothing(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Clothes.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item == nil {
		s.writeError(w, r, apperr.NotFound("clothing item"))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateClothing(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in service.ClothingInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Clothes.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteClothing(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Clothes.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tagNamesRequest struct {
	Tags []string `json:"tags"`
}

// handleSetClothingTags replaces the item's tags with the named ones,
// creating any that do not exist yet.
func (s *Server) handleSetClothingTags(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req tagNamesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tags, err := s.svc.Clothes.SetTags(r.Context(), id, req.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tags))
}
