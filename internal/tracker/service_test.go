package tracker

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/kkolinko/jtrac/internal/events"
	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	topics []string
	events []any
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event any) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func trackerFixture(t *testing.T) (*Service, *mockStore, *capturePublisher, *model.User, *model.Workspace) {
	t.Helper()
	ms := newMockStore()
	pub := &capturePublisher{}
	svc := New(ms, pub, nil)
	ctx := context.Background()

	user := &model.User{Login: "alice", Name: "Alice"}
	if err := svc.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	ws := &model.Workspace{
		PrefixCode: "WEB",
		Name:       "Website",
		Fields: []*model.Field{
			{Key: model.FieldSeverity, Label: "Severity", Options: []model.Option{
				{Key: 10, Label: "low"},
				{Key: 20, Label: "high"},
			}},
		},
	}
	if err := svc.CreateWorkspace(ctx, user, ws); err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	return svc, ms, pub, user, ws
}

func TestCreateWorkspaceGrantsOwnerAccess(t *testing.T) {
	svc, _, pub, user, ws := trackerFixture(t)

	visible, err := svc.store.VisibleWorkspaces(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("VisibleWorkspaces: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != ws.ID {
		t.Errorf("visible = %+v, want the created workspace", visible)
	}
	if len(ws.Statuses) == 0 {
		t.Error("statuses not defaulted")
	}
	if len(pub.topics) == 0 || pub.topics[len(pub.topics)-1] != events.TopicWorkspaceCreated {
		t.Errorf("topics = %v, want workspace.created last", pub.topics)
	}
}

func TestCreateWorkspaceRejectsBadPrefix(t *testing.T) {
	svc, _, _, user, _ := trackerFixture(t)
	err := svc.CreateWorkspace(context.Background(), user, &model.Workspace{PrefixCode: "web", Name: "x"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestCreateItemAllocatesRefAndHistory(t *testing.T) {
	svc, ms, pub, user, ws := trackerFixture(t)
	ctx := context.Background()

	sev := 20
	item := &model.Item{
		Summary:  "login broken",
		Detail:   "cannot sign in with saved password",
		LoggedBy: user.ID,
		Severity: &sev,
	}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.RefID().String() != "WEB-1" {
		t.Errorf("ref id = %s, want WEB-1", item.RefID())
	}
	if item.Status != model.StatusOpen {
		t.Errorf("status = %d, want open", item.Status)
	}

	hist, err := ms.GetEvents(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(hist) != 1 || hist[0].Status != model.StatusOpen {
		t.Errorf("history = %+v, want one opening event", hist)
	}

	last := pub.events[len(pub.events)-1]
	created, ok := last.(events.ItemCreated)
	if !ok || created.Item.ID != item.ID {
		t.Errorf("published %+v, want ItemCreated for the new item", last)
	}
}

func TestCreateItemRejectsUnknownOption(t *testing.T) {
	svc, _, _, user, ws := trackerFixture(t)

	sev := 99
	item := &model.Item{Summary: "x", LoggedBy: user.ID, Severity: &sev}
	if err := svc.CreateItem(context.Background(), ws, item); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestUpdateItemRecordsHistory(t *testing.T) {
	svc, ms, pub, user, ws := trackerFixture(t)
	ctx := context.Background()

	item := &model.Item{Summary: "to close", LoggedBy: user.ID}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	item.Status = 2
	ev := &model.HistoryEvent{LoggedBy: user.ID, Comment: "done"}
	if err := svc.UpdateItem(ctx, item, ev); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	hist, _ := ms.GetEvents(ctx, item.ID)
	if len(hist) != 2 || hist[1].Status != 2 || hist[1].Comment != "done" {
		t.Errorf("history = %+v, want closing event appended", hist)
	}
	if pub.topics[len(pub.topics)-1] != events.TopicItemUpdated {
		t.Errorf("topics = %v, want item.updated last", pub.topics)
	}
}

func TestMoveItemAllocatesNewRef(t *testing.T) {
	svc, ms, pub, user, ws := trackerFixture(t)
	ctx := context.Background()

	target := &model.Workspace{PrefixCode: "APP", Name: "Application"}
	if err := svc.CreateWorkspace(ctx, user, target); err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}

	item := &model.Item{Summary: "wrong workspace", LoggedBy: user.ID}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := svc.MoveItem(ctx, item, target, user.ID, "belongs in APP"); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}

	if got := item.RefID().String(); got != "APP-1" {
		t.Errorf("ref = %q, want APP-1", got)
	}
	if item.WorkspaceID != target.ID {
		t.Errorf("workspace id = %d, want %d", item.WorkspaceID, target.ID)
	}
	hist, _ := ms.GetEvents(ctx, item.ID)
	if len(hist) != 2 || hist[1].Comment != "belongs in APP" {
		t.Errorf("history = %+v, want move event appended", hist)
	}
	if pub.topics[len(pub.topics)-1] != events.TopicItemMoved {
		t.Errorf("topics = %v, want item.moved last", pub.topics)
	}
	moved, ok := pub.events[len(pub.events)-1].(events.ItemMoved)
	if !ok || moved.FromRef != "WEB-1" || moved.FromWorkspace != ws.ID {
		t.Errorf("payload = %+v, want old ref WEB-1", pub.events[len(pub.events)-1])
	}
}

func TestMoveItemRejectsSameWorkspace(t *testing.T) {
	svc, _, _, user, ws := trackerFixture(t)
	ctx := context.Background()

	item := &model.Item{Summary: "stays put", LoggedBy: user.ID}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := svc.MoveItem(ctx, item, ws, user.ID, ""); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestMoveItemValidatesTargetSchema(t *testing.T) {
	svc, _, _, user, ws := trackerFixture(t)
	ctx := context.Background()

	// Target declares severity with a different option set, so the
	// item's value is not legal there.
	target := &model.Workspace{
		PrefixCode: "APP",
		Name:       "Application",
		Fields: []*model.Field{
			{Key: model.FieldSeverity, Label: "Severity", Options: []model.Option{
				{Key: 30, Label: "critical"},
			}},
		},
	}
	if err := svc.CreateWorkspace(ctx, user, target); err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}

	sev := 10
	item := &model.Item{Summary: "severe", LoggedBy: user.ID, Severity: &sev}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := svc.MoveItem(ctx, item, target, user.ID, ""); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestDecodeSearchScopes(t *testing.T) {
	svc, _, _, user, ws := trackerFixture(t)
	ctx := context.Background()

	t.Run("workspace scope", func(t *testing.T) {
		req, err := svc.DecodeSearch(ctx, user, url.Values{"s": {"1"}})
		if err != nil {
			t.Fatalf("DecodeSearch: %v", err)
		}
		if req.Workspace == nil || req.Workspace.ID != ws.ID {
			t.Errorf("workspace = %+v, want id %d", req.Workspace, ws.ID)
		}
		if req.Column("severity") == nil {
			t.Error("custom field column missing from workspace request")
		}
	})

	t.Run("aggregate scope", func(t *testing.T) {
		req, err := svc.DecodeSearch(ctx, user, url.Values{})
		if err != nil {
			t.Fatalf("DecodeSearch: %v", err)
		}
		if req.Workspace != nil {
			t.Errorf("workspace = %+v, want aggregate scope", req.Workspace)
		}
		if len(req.Visible) != 1 {
			t.Errorf("visible = %+v, want one workspace", req.Visible)
		}
	})

	t.Run("invisible workspace", func(t *testing.T) {
		_, err := svc.DecodeSearch(ctx, user, url.Values{"s": {"42"}})
		if !errors.Is(err, search.ErrWorkspaceForbidden) {
			t.Errorf("got %v, want ErrWorkspaceForbidden", err)
		}
	})
}

func TestFindItemsResolvesText(t *testing.T) {
	svc, ms, _, user, ws := trackerFixture(t)
	ctx := context.Background()

	item := &model.Item{Summary: "searchable", LoggedBy: user.ID}
	if err := svc.CreateItem(ctx, ws, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	ms.textHits = []int64{item.ID}

	req := search.NewWorkspaceRequest(ws)
	req.Column("detail").Filter = search.Criterion{
		Expr:  search.ExprContains,
		Value: search.TextOperand("saved password"),
	}
	if _, err := svc.FindItems(ctx, req); err != nil {
		t.Fatalf("FindItems: %v", err)
	}
	if len(req.ItemIDs) != 1 || req.ItemIDs[0] != item.ID {
		t.Errorf("ItemIDs = %v, want index hits bound to the request", req.ItemIDs)
	}
}

func TestFindItemsWithoutTextSkipsIndex(t *testing.T) {
	svc, ms, _, _, ws := trackerFixture(t)

	req := search.NewWorkspaceRequest(ws)
	if _, err := svc.FindItems(context.Background(), req); err != nil {
		t.Fatalf("FindItems: %v", err)
	}
	if req.ItemIDs != nil {
		t.Errorf("ItemIDs = %v, want nil when no text criterion is set", req.ItemIDs)
	}
	if ms.lastReq != req {
		t.Error("request not passed through to the store")
	}
}
