package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kkolinko/jtrac/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanWorkspace scans a single row into a model.Workspace, decoding the
// JSONB schema column into fields and statuses.
func scanWorkspace(row scannable) (*model.Workspace, error) {
	var ws model.Workspace
	var schema []byte
	if err := row.Scan(&ws.ID, &ws.PrefixCode, &ws.Name, &ws.Description, &schema); err != nil {
		return nil, err
	}
	if len(schema) > 0 {
		if err := ws.UnmarshalSchema(json.RawMessage(schema)); err != nil {
			return nil, err
		}
	}
	return &ws, nil
}

// scanWorkspaces scans multiple rows into a slice of model.Workspace pointers.
func scanWorkspaces(rows *sql.Rows) ([]*model.Workspace, error) {
	var out []*model.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanUser scans a single row into a model.User.
func scanUser(row scannable) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Login, &u.Name); err != nil {
		return nil, err
	}
	return &u, nil
}

// itemScanDest holds the nullable intermediates for one item row and wires
// them to scan destinations in itemColumns order.
type itemScanDest struct {
	item       model.Item
	assignedTo sql.NullInt64
	severity   sql.NullInt64
	priority   sql.NullInt64
	cusInt01   sql.NullInt64
	cusInt02   sql.NullInt64
	cusInt03   sql.NullInt64
	cusDbl01   sql.NullFloat64
	cusDbl02   sql.NullFloat64
	cusTim01   sql.NullTime
	cusTim02   sql.NullTime
}

func (d *itemScanDest) targets() []any {
	return []any{
		&d.item.ID,
		&d.item.WorkspaceID,
		&d.item.SeqNum,
		&d.item.PrefixCode,
		&d.item.Summary,
		&d.item.Detail,
		&d.item.Status,
		&d.item.LoggedBy,
		&d.assignedTo,
		&d.item.Timestamp,
		&d.severity,
		&d.priority,
		&d.cusInt01,
		&d.cusInt02,
		&d.cusInt03,
		&d.cusDbl01,
		&d.cusDbl02,
		&d.item.CusStr01,
		&d.item.CusStr02,
		&d.cusTim01,
		&d.cusTim02,
	}
}

func (d *itemScanDest) build() *model.Item {
	it := d.item
	it.AssignedTo = d.assignedTo.Int64
	it.Severity = intPtr(d.severity)
	it.Priority = intPtr(d.priority)
	it.CusInt01 = intPtr(d.cusInt01)
	it.CusInt02 = intPtr(d.cusInt02)
	it.CusInt03 = intPtr(d.cusInt03)
	it.CusDbl01 = floatPtr(d.cusDbl01)
	it.CusDbl02 = floatPtr(d.cusDbl02)
	it.CusTim01 = timePtr(d.cusTim01)
	it.CusTim02 = timePtr(d.cusTim02)
	return &it
}

// scanItem scans a single row into a model.Item. The row must contain
// columns in the order defined by itemColumns.
func scanItem(row scannable) (*model.Item, error) {
	var d itemScanDest
	if err := row.Scan(d.targets()...); err != nil {
		return nil, err
	}
	return d.build(), nil
}

// scanItems scans multiple rows into a slice of model.Item pointers.
func scanItems(rows *sql.Rows) ([]*model.Item, error) {
	var items []*model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// scanEvent scans a bare history row, without the parent item.
func scanEvent(row scannable) (*model.HistoryEvent, error) {
	var ev model.HistoryEvent
	var assignedTo sql.NullInt64
	err := row.Scan(&ev.ID, &ev.ItemID, &ev.LoggedBy, &assignedTo, &ev.Status, &ev.Comment, &ev.Timestamp)
	if err != nil {
		return nil, err
	}
	ev.AssignedTo = assignedTo.Int64
	return &ev, nil
}

// scanEventWithItem scans a history row followed by its parent item's
// columns, in eventColumns order.
func scanEventWithItem(row scannable) (*model.HistoryEvent, error) {
	var ev model.HistoryEvent
	var assignedTo sql.NullInt64
	var d itemScanDest
	dest := append([]any{
		&ev.ID, &ev.ItemID, &ev.LoggedBy, &assignedTo, &ev.Status, &ev.Comment, &ev.Timestamp,
	}, d.targets()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	ev.AssignedTo = assignedTo.Int64
	ev.Item = d.build()
	return &ev, nil
}

// scanEventsWithItems scans multiple joined rows into history events.
func scanEventsWithItems(rows *sql.Rows) ([]*model.HistoryEvent, error) {
	var events []*model.HistoryEvent
	for rows.Next() {
		ev, err := scanEventWithItem(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullIntPtr converts a *int to a sql.NullInt64.
func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// nullFloatPtr converts a *float64 to a sql.NullFloat64.
func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullID converts an entity id to sql.NullInt64; zero means unset.
func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
