package web

import (
	"net/http"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/service"
)

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.svc.Filters.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(filters))
}

func (s *Server) handleCreateFilter(w http.ResponseWriter, r *http.Request) {
	var in service.SavedFilterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.Filters.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.Filters.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if f == nil {
		s.writeError(w, r, apperr.NotFound("saved filter"))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in service.SavedFilterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.Filters.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Filters.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyFilter lists the clothes a preset selects, narrowed by q.
func (s *Server) handleApplyFilter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.svc.Filters.Apply(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Insights.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
