// Package server exposes the tracker over an HTTP/JSON API.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
	"github.com/kkolinko/jtrac/internal/tracker"
)

// Server holds the handler dependencies. The tracker service carries the
// business rules; the store is used directly for plain lookups.
type Server struct {
	svc    *tracker.Service
	store  store.Store
	logger *slog.Logger
}

// New returns a Server backed by the given service and store.
func New(svc *tracker.Service, st store.Store) *Server {
	return &Server{svc: svc, store: st, logger: slog.Default()}
}

// writeProblem maps domain errors onto HTTP status codes.
func writeProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalid),
		errors.Is(err, search.ErrBadFilterValue),
		errors.Is(err, search.ErrIllegalExpression),
		errors.Is(err, search.ErrUnknownColumn),
		errors.Is(err, search.ErrUnsupportedSort):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, search.ErrWorkspaceForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
