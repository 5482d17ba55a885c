package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/kkolinko/jtrac/internal/events"
	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
)

// mockStore is a minimal in-memory store for export tests. Only the
// methods the export walk touches do real work.
type mockStore struct {
	workspaces []*model.Workspace
	items      []*model.Item
	history    map[int64][]*model.HistoryEvent
}

func (m *mockStore) ListWorkspaces(_ context.Context) ([]*model.Workspace, error) {
	return m.workspaces, nil
}

func (m *mockStore) CountItems(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *mockStore) FindItems(_ context.Context, req *search.Request) ([]*model.Item, error) {
	sorted := append([]*model.Item(nil), m.items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return search.PageSlice(sorted, req.CurrentPage, req.PageSize), nil
}

func (m *mockStore) GetEvents(_ context.Context, itemID int64) ([]*model.HistoryEvent, error) {
	return m.history[itemID], nil
}

func (m *mockStore) CreateWorkspace(context.Context, *model.Workspace) error { return nil }
func (m *mockStore) GetWorkspace(context.Context, int64) (*model.Workspace, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) GetWorkspaceByPrefix(context.Context, string) (*model.Workspace, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) UpdateWorkspace(context.Context, *model.Workspace) error { return nil }
func (m *mockStore) FindWorkspacesByIDs(context.Context, []int64) ([]*model.Workspace, error) {
	return nil, nil
}
func (m *mockStore) CreateUser(context.Context, *model.User) error { return nil }
func (m *mockStore) GetUser(context.Context, int64) (*model.User, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) GetUserByLogin(context.Context, string) (*model.User, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) FindUsersByIDs(context.Context, []int64) ([]*model.User, error) { return nil, nil }
func (m *mockStore) GrantAccess(context.Context, int64, int64) error               { return nil }
func (m *mockStore) VisibleWorkspaces(context.Context, int64) ([]*model.Workspace, error) {
	return nil, nil
}
func (m *mockStore) CreateItem(context.Context, *model.Item) error { return nil }
func (m *mockStore) GetItem(context.Context, int64) (*model.Item, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) GetItemByRef(context.Context, model.RefID) (*model.Item, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) UpdateItem(context.Context, *model.Item) error { return nil }
func (m *mockStore) MoveItem(context.Context, *model.Item, *model.Workspace) error {
	return nil
}
func (m *mockStore) RecordEvent(context.Context, *model.HistoryEvent) error { return nil }
func (m *mockStore) FindEvents(context.Context, *search.Request) ([]*model.HistoryEvent, error) {
	return nil, nil
}
func (m *mockStore) FindItemIDsContainingText(context.Context, *search.Request, string) ([]int64, error) {
	return []int64{}, nil
}
func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}
func (m *mockStore) Close() error { return nil }

func exportFixture() *mockStore {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sev := 20
	return &mockStore{
		workspaces: []*model.Workspace{{
			ID:         7,
			PrefixCode: "WEB",
			Name:       "Website",
			Fields: []*model.Field{
				{Key: model.FieldSeverity, Label: "Severity", Options: []model.Option{{Key: 20, Label: "high"}}},
			},
		}},
		items: []*model.Item{
			{ID: 2, WorkspaceID: 7, SeqNum: 2, PrefixCode: "WEB", Summary: "second", Status: 1, LoggedBy: 3, Timestamp: now},
			{ID: 1, WorkspaceID: 7, SeqNum: 1, PrefixCode: "WEB", Summary: "first", Status: 2, LoggedBy: 3, Timestamp: now, Severity: &sev},
		},
		history: map[int64][]*model.HistoryEvent{
			1: {
				{ID: 1, ItemID: 1, LoggedBy: 3, Status: 1, Timestamp: now},
				{ID: 2, ItemID: 1, LoggedBy: 3, Status: 2, Comment: "fixed", Timestamp: now},
			},
		},
	}
}

// exportDoc mirrors the XML document shape for test decoding.
type exportDoc struct {
	XMLName xml.Name  `xml:"items"`
	Count   int       `xml:"count,attr"`
	Items   []xmlItem `xml:"item"`
}

func TestWriteXML(t *testing.T) {
	ms := exportFixture()
	var buf bytes.Buffer

	n, err := WriteXML(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	var doc exportDoc
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, buf.String())
	}
	if doc.Count != 2 {
		t.Errorf("count attr = %d, want 2", doc.Count)
	}
	if len(doc.Items) != 2 || doc.Items[0].RefID != "WEB-1" || doc.Items[1].RefID != "WEB-2" {
		t.Fatalf("items = %+v, want WEB-1 then WEB-2", doc.Items)
	}

	first := doc.Items[0]
	if len(first.Fields) != 1 || first.Fields[0].Name != "severity" || first.Fields[0].Value != "20" {
		t.Errorf("fields = %+v, want severity 20", first.Fields)
	}
	if len(first.History) != 2 || first.History[1].Comment != "fixed" {
		t.Errorf("history = %+v, want two events ending in the fix", first.History)
	}
}

// memDestination captures export payloads.
type memDestination struct {
	wrote chan []byte
}

func (d *memDestination) Write(_ context.Context, data []byte) error {
	select {
	case d.wrote <- data:
	default:
	}
	return nil
}

type capturePublisher struct {
	published chan any
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event any) error {
	select {
	case p.published <- event:
	default:
	}
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerExportsToDestinations(t *testing.T) {
	ms := exportFixture()
	dest := &memDestination{wrote: make(chan []byte, 1)}
	pub := &capturePublisher{published: make(chan any, 1)}

	sched := NewScheduler(ms, []Destination{dest}, time.Hour, pub, discardLogger())
	sched.Start()
	defer sched.Stop()

	select {
	case data := <-dest.wrote:
		if !bytes.Contains(data, []byte(`refId="WEB-1"`)) {
			t.Errorf("destination payload missing items:\n%s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial export")
	}

	select {
	case ev := <-pub.published:
		done, ok := ev.(events.ExportCompleted)
		if !ok || done.Items != 2 || done.JobID == "" {
			t.Errorf("published %+v, want ExportCompleted with 2 items and a job id", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for export event")
	}
}
