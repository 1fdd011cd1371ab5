package web

import (
	"net/http"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/service"
)

func (s *Server) handleListOutfits(w http.ResponseWriter, r *http.Request) {
	outfits, err := s.svc.Outfits.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(outfits))
}

func (s *Server) handleCreateOutfit(w http.ResponseWriter, r *http.Request) {
	var in service.OutfitInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Outfits.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.svc.Outfits.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if detail == nil {
		s.writeError(w, r, apperr.NotFound("outfit"))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in service.OutfitInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Outfits.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleDeleteOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clothingIDsRequest struct {
	ClothingIDs []int64 `json:"clothingIds"`
}

func (s *Server) handleSetOutfitClothes(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req clothingIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Outfits.SetClothes(r.Context(), id, req.ClothingIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleAddOutfitClothing(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	clothingID, err := pathID(r, "clothingID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.AddClothing(r.Context(), id, clothingID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveOutfitClothing(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	clothingID, err := pathID(r, "clothingID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.RemoveClothing(r.Context(), id, clothingID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWears(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wears, err := s.svc.Outfits.WearLog(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(wears))
}

type logWearRequest struct {
	Date *domain.EpochDay `json:"date"`
}

// handleLogWear records a wear on the given YYYY-MM-DD date. Repeated posts
// for one day add separate entries.
func (s *Server) handleLogWear(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req logWearRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Date == nil {
		s.writeError(w, r, apperr.Validation("date is required", map[string]string{"date": "required"}))
		return
	}
	wear, err := s.svc.Outfits.LogWear(r.Context(), id, *req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wear)
}

func (s *Server) handleDeleteWear(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.DeleteWear(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkWornToday(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.MarkWornToday(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnmarkWornToday(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Outfits.UnmarkWornToday(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
