package tracker

import (
	"context"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
)

// mockStore is a minimal in-memory store for tracker tests.
type mockStore struct {
	workspaces  map[int64]*model.Workspace
	users       map[int64]*model.User
	memberships map[int64][]int64 // user id -> workspace ids
	items       map[int64]*model.Item
	history     []*model.HistoryEvent
	seqs        map[int64]int64

	textHits []int64         // canned FindItemIDsContainingText result
	lastReq  *search.Request // captured by FindItems / FindEvents

	nextWorkspaceID int64
	nextUserID      int64
	nextItemID      int64
}

func newMockStore() *mockStore {
	return &mockStore{
		workspaces:  make(map[int64]*model.Workspace),
		users:       make(map[int64]*model.User),
		memberships: make(map[int64][]int64),
		items:       make(map[int64]*model.Item),
		seqs:        make(map[int64]int64),
	}
}

func (m *mockStore) CreateWorkspace(_ context.Context, ws *model.Workspace) error {
	m.nextWorkspaceID++
	ws.ID = m.nextWorkspaceID
	m.workspaces[ws.ID] = ws
	return nil
}

func (m *mockStore) GetWorkspace(_ context.Context, id int64) (*model.Workspace, error) {
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return ws, nil
}

func (m *mockStore) GetWorkspaceByPrefix(_ context.Context, prefixCode string) (*model.Workspace, error) {
	for _, ws := range m.workspaces {
		if ws.PrefixCode == prefixCode {
			return ws, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateWorkspace(_ context.Context, ws *model.Workspace) error {
	m.workspaces[ws.ID] = ws
	return nil
}

func (m *mockStore) ListWorkspaces(_ context.Context) ([]*model.Workspace, error) {
	var out []*model.Workspace
	for _, ws := range m.workspaces {
		out = append(out, ws)
	}
	return out, nil
}

func (m *mockStore) FindWorkspacesByIDs(_ context.Context, ids []int64) ([]*model.Workspace, error) {
	var out []*model.Workspace
	for _, id := range ids {
		if ws, ok := m.workspaces[id]; ok {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (m *mockStore) CreateUser(_ context.Context, u *model.User) error {
	m.nextUserID++
	u.ID = m.nextUserID
	m.users[u.ID] = u
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range m.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) FindUsersByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockStore) GrantAccess(_ context.Context, userID, workspaceID int64) error {
	for _, id := range m.memberships[userID] {
		if id == workspaceID {
			return nil
		}
	}
	m.memberships[userID] = append(m.memberships[userID], workspaceID)
	return nil
}

func (m *mockStore) VisibleWorkspaces(_ context.Context, userID int64) ([]*model.Workspace, error) {
	var out []*model.Workspace
	for _, id := range m.memberships[userID] {
		if ws, ok := m.workspaces[id]; ok {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (m *mockStore) CreateItem(_ context.Context, item *model.Item) error {
	m.seqs[item.WorkspaceID]++
	item.SeqNum = m.seqs[item.WorkspaceID]
	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.ID] = item
	return nil
}

func (m *mockStore) GetItem(_ context.Context, id int64) (*model.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return it, nil
}

func (m *mockStore) GetItemByRef(_ context.Context, ref model.RefID) (*model.Item, error) {
	for _, it := range m.items {
		if it.PrefixCode == ref.PrefixCode && it.SeqNum == ref.SeqNum {
			return it, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateItem(_ context.Context, item *model.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockStore) MoveItem(_ context.Context, item *model.Item, target *model.Workspace) error {
	if _, ok := m.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	m.seqs[target.ID]++
	item.WorkspaceID = target.ID
	item.SeqNum = m.seqs[target.ID]
	item.PrefixCode = target.PrefixCode
	return nil
}

func (m *mockStore) RecordEvent(_ context.Context, ev *model.HistoryEvent) error {
	ev.ID = int64(len(m.history) + 1)
	m.history = append(m.history, ev)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, itemID int64) ([]*model.HistoryEvent, error) {
	var out []*model.HistoryEvent
	for _, ev := range m.history {
		if ev.ItemID == itemID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockStore) FindItems(_ context.Context, req *search.Request) ([]*model.Item, error) {
	m.lastReq = req
	var out []*model.Item
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *mockStore) FindEvents(_ context.Context, req *search.Request) ([]*model.HistoryEvent, error) {
	m.lastReq = req
	return m.history, nil
}

func (m *mockStore) FindItemIDsContainingText(_ context.Context, _ *search.Request, _ string) ([]int64, error) {
	if m.textHits == nil {
		return []int64{}, nil
	}
	return m.textHits, nil
}

func (m *mockStore) CountItems(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
