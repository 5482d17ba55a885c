package search

import (
	"strings"

	"github.com/kkolinko/jtrac/internal/model"
)

const (
	// DefaultPageSize is the page size of a freshly constructed request.
	DefaultPageSize = 25

	// PageSizeUnbounded disables paging: the whole result set is returned.
	PageSizeUnbounded = -1
)

// Request is one search: its scope, the ordered column list with their
// filter criteria, sorting, and paging state. Requests are built fresh per
// web request or CLI invocation, mutated only by decoding and UI-bound
// setters, and discarded once the response is produced.
type Request struct {
	// Workspace is the single-workspace scope; nil means aggregate scope
	// over the workspaces visible to User.
	Workspace *model.Workspace
	User      *model.User
	// Visible is the caller's visible workspace set; required for aggregate
	// scope and consulted when validating explicit workspace filters.
	Visible []*model.Workspace

	Columns []*Column

	SortColumn     string
	SortDescending bool
	PageSize       int
	CurrentPage    int // 0-based

	// ResultCount is filled in by the pager, never set by callers.
	ResultCount int

	// ShowHistory switches from item granularity to one row per history
	// event joined to its parent item.
	ShowHistory bool

	// BatchMode disables the count sub-query; batch callers walk pages in
	// increasing offset order and do not need a live count.
	BatchMode bool

	// RelatingItemRef carries the link/relate workflow marker. It does not
	// influence translation; the codec passes it through.
	RelatingItemRef string

	// ItemIDs holds full-text hits for the detail criterion, resolved by the
	// external index before translation. nil means no full-text restriction;
	// an empty non-nil set short-circuits to zero results.
	ItemIDs []int64

	defaultVisible string
}

// NewWorkspaceRequest builds the default request for single-workspace scope:
// the fixed columns plus the workspace's custom fields, in display order.
func NewWorkspaceRequest(ws *model.Workspace) *Request {
	cols := []*Column{
		newFixedColumn(ColID),
		newFixedColumn(ColSummary),
		newFixedColumn(ColDetail),
		newFixedColumn(ColStatus),
		newFixedColumn(ColLoggedBy),
		newFixedColumn(ColAssignedTo),
	}
	for _, f := range ws.Fields {
		cols = append(cols, newFieldColumn(f))
	}
	cols = append(cols, newFixedColumn(ColTimestamp))

	r := &Request{
		Workspace:      ws,
		Columns:        cols,
		SortColumn:     string(ColID),
		SortDescending: true,
		PageSize:       DefaultPageSize,
	}
	r.defaultVisible = r.VisibleFlags()
	return r
}

// NewAggregateRequest builds the default request for aggregate scope: the
// fixed columns only, across every workspace visible to the user.
func NewAggregateRequest(user *model.User, visible []*model.Workspace) *Request {
	cols := []*Column{
		newFixedColumn(ColID),
		newFixedColumn(ColWorkspace),
		newFixedColumn(ColSummary),
		newFixedColumn(ColDetail),
		newFixedColumn(ColLoggedBy),
		newFixedColumn(ColAssignedTo),
		newFixedColumn(ColTimestamp),
	}
	r := &Request{
		User:           user,
		Visible:        visible,
		Columns:        cols,
		SortColumn:     string(ColID),
		SortDescending: true,
		PageSize:       DefaultPageSize,
	}
	r.defaultVisible = r.VisibleFlags()
	return r
}

// Column resolves a lookup key (fixed name or custom field key) to the
// request's column, or nil.
func (r *Request) Column(key string) *Column {
	for _, c := range r.Columns {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// VisibleColumns returns the columns that currently render in result tables.
func (r *Request) VisibleColumns() []*Column {
	out := make([]*Column, 0, len(r.Columns))
	for _, c := range r.Columns {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

// VisibleFlags renders column visibility as a positional bitmask string.
func (r *Request) VisibleFlags() string {
	var b strings.Builder
	for _, c := range r.Columns {
		if c.Visible {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// DefaultVisibleFlags returns the visibility bitmask of the freshly
// constructed request, before any caller changes.
func (r *Request) DefaultVisibleFlags() string {
	return r.defaultVisible
}

// ApplyVisibleFlags sets column visibility from a positional bitmask. Flags
// beyond the column list are ignored, as are missing trailing flags.
func (r *Request) ApplyVisibleFlags(flags string) {
	for i, c := range r.Columns {
		if i >= len(flags) {
			break
		}
		c.Visible = flags[i] == '1'
	}
}

// ToggleSortDirection flips the sort direction in place.
func (r *Request) ToggleSortDirection() {
	r.SortDescending = !r.SortDescending
}

// scalarText returns a column's trimmed scalar text value, resetting the
// criterion when the value is blank so it cannot leak into translation or
// encoding as a zero-value predicate.
func (r *Request) scalarText(name ColumnName) string {
	c := r.Column(string(name))
	if c == nil || c.Filter.Expr == 0 || c.Filter.Expr.IsSet() {
		return ""
	}
	v, _ := c.Filter.Scalar()
	s := strings.TrimSpace(v.Str)
	if s == "" {
		c.Filter.Reset()
		return ""
	}
	return s
}

// RefIDText returns the ref-id filter ("PREFIX-SEQ"), or "".
func (r *Request) RefIDText() string {
	return r.scalarText(ColID)
}

// SearchText returns the long free-text filter destined for the external
// full-text index, or "".
func (r *Request) SearchText() string {
	return r.scalarText(ColDetail)
}

// SelectedWorkspaces returns the workspaces an aggregate-scope search is
// restricted to: the explicit workspace filter when set, otherwise the whole
// visible set. An empty explicit filter is reset to inactive.
func (r *Request) SelectedWorkspaces() []*model.Workspace {
	c := r.Column(string(ColWorkspace))
	if c == nil || !c.Filter.IsActive() {
		if c != nil {
			c.Filter.Reset()
		}
		return r.Visible
	}
	out := make([]*model.Workspace, 0, len(c.Filter.List()))
	for _, o := range c.Filter.List() {
		for _, ws := range r.Visible {
			if ws.ID == o.Ref {
				out = append(out, ws)
				break
			}
		}
	}
	return out
}

// SetStatus restricts the status column to a single state.
func (r *Request) SetStatus(key int) {
	if c := r.Column(string(ColStatus)); c != nil {
		c.Filter = Criterion{Expr: ExprIn, Values: []Operand{RefOperand(int64(key), "")}}
	}
}

// SetLoggedBy restricts the loggedBy column to a single user.
func (r *Request) SetLoggedBy(u *model.User) {
	if c := r.Column(string(ColLoggedBy)); c != nil {
		c.Filter = Criterion{Expr: ExprIn, Values: []Operand{RefOperand(u.ID, u.Name)}}
	}
}

// SetAssignedTo restricts the assignedTo column to a single user.
func (r *Request) SetAssignedTo(u *model.User) {
	if c := r.Column(string(ColAssignedTo)); c != nil {
		c.Filter = Criterion{Expr: ExprIn, Values: []Operand{RefOperand(u.ID, u.Name)}}
	}
}
