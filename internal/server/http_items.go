package server

import (
	"encoding/json"
	"net/http"

	"github.com/kkolinko/jtrac/internal/model"
)

// handleCreateItem handles POST /v1/workspaces/{prefix}/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ws, err := s.store.GetWorkspaceByPrefix(r.Context(), r.PathValue("prefix"))
	if err != nil {
		writeProblem(w, err)
		return
	}

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.CreateItem(r.Context(), ws, &item); err != nil {
		writeProblem(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &item)
}

// handleGetItem handles GET /v1/items/{ref}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.GetItemByRef(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type updateItemInput struct {
	Summary    *string `json:"summary"`
	Detail     *string `json:"detail"`
	Status     *int    `json:"status"`
	AssignedTo *int64  `json:"assigned_to"`
	LoggedBy   int64   `json:"logged_by"`
	Comment    string  `json:"comment"`
}

// handleUpdateItem handles PUT /v1/items/{ref}. The change is recorded as a
// history event attributed to logged_by.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in updateItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.svc.GetItemByRef(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeProblem(w, err)
		return
	}

	if in.Summary != nil {
		item.Summary = *in.Summary
	}
	if in.Detail != nil {
		item.Detail = *in.Detail
	}
	if in.Status != nil {
		item.Status = *in.Status
	}
	if in.AssignedTo != nil {
		item.AssignedTo = *in.AssignedTo
	}

	ev := &model.HistoryEvent{
		LoggedBy: in.LoggedBy,
		Comment:  in.Comment,
	}
	if err := s.svc.UpdateItem(r.Context(), item, ev); err != nil {
		writeProblem(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleMoveItem handles POST /v1/items/{ref}/move. The item is reassigned
// to the target workspace with a fresh sequence number.
func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Workspace string `json:"workspace"` // target prefix code
		LoggedBy  int64  `json:"logged_by"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.svc.GetItemByRef(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeProblem(w, err)
		return
	}
	target, err := s.store.GetWorkspaceByPrefix(r.Context(), in.Workspace)
	if err != nil {
		writeProblem(w, err)
		return
	}

	if err := s.svc.MoveItem(r.Context(), item, target, in.LoggedBy, in.Comment); err != nil {
		writeProblem(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleGetHistory handles GET /v1/items/{ref}/history.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.GetItemByRef(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeProblem(w, err)
		return
	}

	history, err := s.store.GetEvents(r.Context(), item.ID)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if history == nil {
		history = []*model.HistoryEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ref":     item.RefID().String(),
		"history": history,
	})
}
