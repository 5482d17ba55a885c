package server

import (
	"net/http"
	"strconv"

	"github.com/kkolinko/jtrac/internal/export"
	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
)

// handleSearch handles GET /v1/search. The query string is the bookmarkable
// filter encoding; the "user" parameter names the searching user and "page"
// selects the zero-based result page. The response carries the canonical
// re-encoding of the request as "link" so clients can bookmark it.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	login := q.Get("user")
	if login == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	user, err := s.store.GetUserByLogin(r.Context(), login)
	if err != nil {
		writeProblem(w, err)
		return
	}

	req, err := s.svc.DecodeSearch(r.Context(), user, q)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		req.CurrentPage = n
	}

	resp := map[string]any{
		"page":      req.CurrentPage,
		"page_size": req.PageSize,
		"link":      search.Encode(req).Encode(),
	}

	if req.ShowHistory {
		events, err := s.svc.FindEvents(r.Context(), req)
		if err != nil {
			writeProblem(w, err)
			return
		}
		if events == nil {
			events = []*model.HistoryEvent{}
		}
		resp["total"] = req.ResultCount
		resp["events"] = events
	} else {
		items, err := s.svc.FindItems(r.Context(), req)
		if err != nil {
			writeProblem(w, err)
			return
		}
		if items == nil {
			items = []*model.Item{}
		}
		resp["total"] = req.ResultCount
		resp["items"] = items
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExport handles GET /v1/export, streaming the full tracker contents
// as XML.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	if _, err := export.WriteXML(r.Context(), s.store, w); err != nil {
		// Headers are already out; all we can do is log.
		s.logger.Error("export failed", "error", err)
	}
}
