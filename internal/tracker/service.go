// Package tracker implements the application service layer: item and
// workspace lifecycle, and search orchestration over the store, the text
// index, and the event bus.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/kkolinko/jtrac/internal/events"
	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
)

// ErrInvalid indicates invalid user input. Transport layers map it to 400.
var ErrInvalid = errors.New("invalid input")

// prefixPattern constrains workspace prefix codes to the form item ref ids
// are parsed back out of: uppercase, digits and dashes, starting with a
// letter.
var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]{1,9}$`)

// Service wires the store, the event publisher, and a logger into the
// tracker's use cases.
type Service struct {
	store  store.Store
	pub    events.Publisher
	logger *slog.Logger
}

// New returns a Service backed by the given store and publisher.
func New(s store.Store, p events.Publisher, logger *slog.Logger) *Service {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, pub: p, logger: logger}
}

// publish emits an event best-effort; a bus failure is logged, never
// surfaced to the caller.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.pub.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// CreateUser registers a user account.
func (s *Service) CreateUser(ctx context.Context, u *model.User) error {
	if u.Login == "" {
		return fmt.Errorf("%w: login is required", ErrInvalid)
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("created user", "user", u.Login, "id", u.ID)
	return nil
}

// CreateWorkspace creates a workspace and grants the owner access to it.
// Missing statuses default to the standard open/closed pair.
func (s *Service) CreateWorkspace(ctx context.Context, owner *model.User, ws *model.Workspace) error {
	if !prefixPattern.MatchString(ws.PrefixCode) {
		return fmt.Errorf("%w: prefix code %q", ErrInvalid, ws.PrefixCode)
	}
	if ws.Name == "" {
		return fmt.Errorf("%w: workspace name is required", ErrInvalid)
	}
	for _, f := range ws.Fields {
		if !f.Key.IsValid() {
			return fmt.Errorf("%w: unknown field slot %q", ErrInvalid, f.Key)
		}
	}
	if len(ws.Statuses) == 0 {
		ws.Statuses = model.DefaultStatuses()
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateWorkspace(ctx, ws); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		return tx.GrantAccess(ctx, owner.ID, ws.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicWorkspaceCreated, events.WorkspaceCreated{Workspace: ws})
	s.logger.Info("created workspace", "prefix", ws.PrefixCode, "id", ws.ID, "owner", owner.Login)
	return nil
}

// GrantAccess makes a workspace visible to a user.
func (s *Service) GrantAccess(ctx context.Context, userID, workspaceID int64) error {
	return s.store.GrantAccess(ctx, userID, workspaceID)
}

// CreateItem validates the item against its workspace's field schema,
// allocates its ref id, and records the opening history event, all in one
// transaction.
func (s *Service) CreateItem(ctx context.Context, ws *model.Workspace, item *model.Item) error {
	if item.Summary == "" {
		return fmt.Errorf("%w: summary is required", ErrInvalid)
	}
	if item.LoggedBy == 0 {
		return fmt.Errorf("%w: logged-by user is required", ErrInvalid)
	}
	item.WorkspaceID = ws.ID
	item.PrefixCode = ws.PrefixCode
	if item.Status == 0 {
		item.Status = model.StatusOpen
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	if err := validateFieldValues(ws, item); err != nil {
		return err
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return tx.RecordEvent(ctx, &model.HistoryEvent{
			ItemID:     item.ID,
			LoggedBy:   item.LoggedBy,
			AssignedTo: item.AssignedTo,
			Status:     item.Status,
			Comment:    item.Detail,
			Timestamp:  item.Timestamp,
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicItemCreated, events.ItemCreated{Item: item})
	s.logger.Info("created item", "ref", item.RefID().String(), "workspace", ws.PrefixCode)
	return nil
}

// UpdateItem applies a change to an item and appends the corresponding
// history event. The event's status, assignee, and timestamp describe the
// item state after the change.
func (s *Service) UpdateItem(ctx context.Context, item *model.Item, ev *model.HistoryEvent) error {
	if ev.LoggedBy == 0 {
		return fmt.Errorf("%w: logged-by user is required", ErrInvalid)
	}
	ev.ItemID = item.ID
	ev.Status = item.Status
	ev.AssignedTo = item.AssignedTo
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return tx.RecordEvent(ctx, ev)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicItemUpdated, events.ItemUpdated{Item: item, Event: ev})
	s.logger.Info("updated item", "ref", item.RefID().String(), "status", item.Status)
	return nil
}

// MoveItem relocates an item into another workspace. The item is assigned
// the next sequence number there; its old ref id is retired, never reused.
// Custom field values must be valid under the target's schema.
func (s *Service) MoveItem(ctx context.Context, item *model.Item, target *model.Workspace, loggedBy int64, comment string) error {
	if loggedBy == 0 {
		return fmt.Errorf("%w: logged-by user is required", ErrInvalid)
	}
	if item.WorkspaceID == target.ID {
		return fmt.Errorf("%w: item already in workspace %s", ErrInvalid, target.PrefixCode)
	}
	if err := validateFieldValues(target, item); err != nil {
		return err
	}

	fromWorkspace := item.WorkspaceID
	fromRef := item.RefID().String()

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.MoveItem(ctx, item, target); err != nil {
			return fmt.Errorf("move item: %w", err)
		}
		return tx.RecordEvent(ctx, &model.HistoryEvent{
			ItemID:     item.ID,
			LoggedBy:   loggedBy,
			AssignedTo: item.AssignedTo,
			Status:     item.Status,
			Comment:    comment,
			Timestamp:  time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicItemMoved, events.ItemMoved{
		Item:          item,
		FromWorkspace: fromWorkspace,
		FromRef:       fromRef,
	})
	s.logger.Info("moved item", "from", fromRef, "to", item.RefID().String())
	return nil
}

// GetItemByRef loads an item by its "PREFIX-SEQ" ref id.
func (s *Service) GetItemByRef(ctx context.Context, refID string) (*model.Item, error) {
	ref, err := model.ParseRefID(refID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s.store.GetItemByRef(ctx, ref)
}

// DecodeSearch rebuilds a search request for the user from bookmarked
// query-string values. The workspace scope parameter is resolved and
// authorized here; everything else decodes through the search codec.
func (s *Service) DecodeSearch(ctx context.Context, user *model.User, params url.Values) (*search.Request, error) {
	visible, err := s.store.VisibleWorkspaces(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load visible workspaces: %w", err)
	}

	var req *search.Request
	if raw := params.Get(search.ParamWorkspace); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: workspace %q", search.ErrBadFilterValue, raw)
		}
		var ws *model.Workspace
		for _, v := range visible {
			if v.ID == id {
				ws = v
				break
			}
		}
		if ws == nil {
			return nil, fmt.Errorf("%w: workspace %d", search.ErrWorkspaceForbidden, id)
		}
		req = search.NewWorkspaceRequest(ws)
		req.User = user
		req.Visible = visible
	} else {
		req = search.NewAggregateRequest(user, visible)
	}

	if err := search.DecodeInto(ctx, req, params, s.store); err != nil {
		return nil, err
	}
	return req, nil
}

// FindItems runs one page of an item search. A detail-text criterion is
// resolved through the text index first; when the index finds nothing the
// search is over without touching the items table.
func (s *Service) FindItems(ctx context.Context, req *search.Request) ([]*model.Item, error) {
	if err := s.resolveText(ctx, req); err != nil {
		return nil, err
	}
	return s.store.FindItems(ctx, req)
}

// FindEvents runs one page of a history search.
func (s *Service) FindEvents(ctx context.Context, req *search.Request) ([]*model.HistoryEvent, error) {
	if err := s.resolveText(ctx, req); err != nil {
		return nil, err
	}
	return s.store.FindEvents(ctx, req)
}

func (s *Service) resolveText(ctx context.Context, req *search.Request) error {
	text := req.SearchText()
	if text == "" {
		return nil
	}
	ids, err := s.store.FindItemIDsContainingText(ctx, req, text)
	if err != nil {
		return fmt.Errorf("text search: %w", err)
	}
	req.ItemIDs = ids
	return nil
}

// validateFieldValues rejects enumerated values the workspace's field
// schema does not define.
func validateFieldValues(ws *model.Workspace, item *model.Item) error {
	for _, f := range ws.Fields {
		if !f.Key.Type().IsEnumerated() {
			continue
		}
		key, ok := item.OptionKey(f.Key)
		if !ok {
			continue
		}
		if !f.HasOption(key) {
			return fmt.Errorf("%w: field %s has no option %d", ErrInvalid, f.Key, key)
		}
	}
	if !statusDefined(ws, item.Status) {
		return fmt.Errorf("%w: workspace has no status %d", ErrInvalid, item.Status)
	}
	return nil
}

func statusDefined(ws *model.Workspace, status int) bool {
	for _, st := range ws.Statuses {
		if st.Key == status {
			return true
		}
	}
	return false
}
