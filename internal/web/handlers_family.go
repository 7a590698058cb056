package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/birthmatrix/internal/core"
)

// CreateFamilyRequest is the POST /api/family body.
type CreateFamilyRequest struct {
	Name  string           `json:"name"`
	Owner core.MemberInput `json:"owner"`
}

// handleCreateFamily starts a tree around the owner in the body.
func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req CreateFamilyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.CreateFamilyTree(r.Context(), req.Name, req.Owner)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/family/"+report.Tree.ID)
	writeJSON(w, http.StatusCreated, report)
}

// handleGetFamily returns a tree with its statistics and recommendations.
func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.FamilyTree(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteFamilyTree(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var in core.MemberInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.service.AddFamilyMember(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleUpdateMember replaces a member with the body.
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var in core.MemberInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.service.UpdateFamilyMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "memberID"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.service.RemoveFamilyMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "memberID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
