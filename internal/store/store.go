package store

import (
	"context"
	"errors"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
)

// ErrNotFound is returned when a lookup by id, ref id, or login matches
// nothing.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for the tracker.
type Store interface {
	// Workspaces
	CreateWorkspace(ctx context.Context, ws *model.Workspace) error
	GetWorkspace(ctx context.Context, id int64) (*model.Workspace, error)
	GetWorkspaceByPrefix(ctx context.Context, prefixCode string) (*model.Workspace, error)
	UpdateWorkspace(ctx context.Context, ws *model.Workspace) error
	ListWorkspaces(ctx context.Context) ([]*model.Workspace, error)
	FindWorkspacesByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error)

	// Users and workspace membership
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	FindUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	GrantAccess(ctx context.Context, userID, workspaceID int64) error
	VisibleWorkspaces(ctx context.Context, userID int64) ([]*model.Workspace, error)

	// Items and their history
	CreateItem(ctx context.Context, item *model.Item) error // allocates the per-workspace sequence number
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	GetItemByRef(ctx context.Context, ref model.RefID) (*model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	MoveItem(ctx context.Context, item *model.Item, target *model.Workspace) error // allocates a fresh sequence number in the target
	RecordEvent(ctx context.Context, ev *model.HistoryEvent) error
	GetEvents(ctx context.Context, itemID int64) ([]*model.HistoryEvent, error)

	// Search. FindItems and FindEvents run one page of the request and set
	// req.ResultCount as a side effect (except in batch mode, which skips
	// the count query).
	FindItems(ctx context.Context, req *search.Request) ([]*model.Item, error)
	FindEvents(ctx context.Context, req *search.Request) ([]*model.HistoryEvent, error)
	FindItemIDsContainingText(ctx context.Context, req *search.Request, text string) ([]int64, error)
	CountItems(ctx context.Context) (int64, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
