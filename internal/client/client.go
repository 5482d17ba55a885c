// Package client provides a transport-agnostic interface for the jtrac
// service and an HTTP/JSON implementation that talks to the jtrac REST API.
package client

import (
	"context"
	"net/url"

	"github.com/kkolinko/jtrac/internal/model"
)

// TrackerClient is the interface all jtrac CLI commands use to communicate
// with the server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type TrackerClient interface {
	// Users
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, login string) (*model.User, error)

	// Workspaces
	CreateWorkspace(ctx context.Context, ownerLogin string, ws *model.Workspace) (*model.Workspace, error)
	GetWorkspace(ctx context.Context, prefixCode string) (*model.Workspace, error)
	ListWorkspaces(ctx context.Context) ([]*model.Workspace, error)
	GrantAccess(ctx context.Context, prefixCode, login string) error

	// Items
	CreateItem(ctx context.Context, prefixCode string, item *model.Item) (*model.Item, error)
	GetItem(ctx context.Context, refID string) (*model.Item, error)
	UpdateItem(ctx context.Context, refID string, req *UpdateItemRequest) (*model.Item, error)
	MoveItem(ctx context.Context, refID, targetPrefix string, loggedBy int64, comment string) (*model.Item, error)
	GetHistory(ctx context.Context, refID string) ([]*model.HistoryEvent, error)

	// Search runs one page of a filter query. The params are the
	// bookmarkable query-string encoding; page is the zero-based page.
	Search(ctx context.Context, login string, params url.Values, page int) (*SearchResponse, error)

	// Export streams the whole tracker as XML.
	Export(ctx context.Context) ([]byte, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// UpdateItemRequest holds the fields of an item change. Nil pointers leave
// the corresponding field untouched.
type UpdateItemRequest struct {
	Summary    *string `json:"summary,omitempty"`
	Detail     *string `json:"detail,omitempty"`
	Status     *int    `json:"status,omitempty"`
	AssignedTo *int64  `json:"assigned_to,omitempty"`
	LoggedBy   int64   `json:"logged_by"`
	Comment    string  `json:"comment,omitempty"`
}

// SearchResponse is one page of search results. Items is populated for
// item-granularity searches, Events when history granularity was requested.
type SearchResponse struct {
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Link     string                `json:"link"`
	Items    []*model.Item         `json:"items,omitempty"`
	Events   []*model.HistoryEvent `json:"events,omitempty"`
}
