package server

import (
	"encoding/json"
	"net/http"

	"github.com/kkolinko/jtrac/internal/model"
)

// handleCreateUser handles POST /v1/users.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.CreateUser(r.Context(), &u); err != nil {
		writeProblem(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &u)
}

// handleGetUser handles GET /v1/users/{login}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUserByLogin(r.Context(), r.PathValue("login"))
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type createWorkspaceInput struct {
	model.Workspace
	OwnerLogin string `json:"owner_login"`
}

// handleCreateWorkspace handles POST /v1/workspaces. The owner is granted
// access to the new workspace in the same transaction.
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in createWorkspaceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner, err := s.store.GetUserByLogin(r.Context(), in.OwnerLogin)
	if err != nil {
		writeProblem(w, err)
		return
	}

	if err := s.svc.CreateWorkspace(r.Context(), owner, &in.Workspace); err != nil {
		writeProblem(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &in.Workspace)
}

// handleListWorkspaces handles GET /v1/workspaces.
func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		writeProblem(w, err)
		return
	}
	if workspaces == nil {
		workspaces = []*model.Workspace{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": workspaces})
}

// handleGetWorkspace handles GET /v1/workspaces/{prefix}.
func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.store.GetWorkspaceByPrefix(r.Context(), r.PathValue("prefix"))
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// handleGrantAccess handles POST /v1/workspaces/{prefix}/members.
func (s *Server) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ws, err := s.store.GetWorkspaceByPrefix(r.Context(), r.PathValue("prefix"))
	if err != nil {
		writeProblem(w, err)
		return
	}
	u, err := s.store.GetUserByLogin(r.Context(), in.Login)
	if err != nil {
		writeProblem(w, err)
		return
	}

	if err := s.svc.GrantAccess(r.Context(), u.ID, ws.ID); err != nil {
		writeProblem(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
