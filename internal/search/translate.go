package search

import (
	"fmt"

	"github.com/kkolinko/jtrac/internal/model"
)

// CondOp is the comparison operator of a single storage predicate.
type CondOp int

const (
	OpEq CondOp = iota + 1
	OpNotEq
	OpGt
	OpLt
	OpIn
	OpContains // case-insensitive substring
)

// Cond is one storage predicate in neutral form: a logical column name, an
// operator and its arguments. The storage layer renders it into its own
// dialect. OnItem routes the predicate in history queries: true targets the
// parent item row, false the history event row. Item queries ignore it.
type Cond struct {
	Col    string
	Op     CondOp
	Args   []any
	OnItem bool
}

// OrderKey is one key of the result ordering, outermost first.
type OrderKey struct {
	Col    string
	Desc   bool
	OnItem bool
}

// Query is the storage-neutral translation of a search request. ShortCircuit
// means the request provably matches nothing and no storage round trip is
// needed. MemorySort, when set, tells the pager to fetch the full unordered
// result and sort it by option rank in memory.
type Query struct {
	Conds        []Cond
	Order        []OrderKey
	MemorySort   *model.Field
	ShortCircuit bool
}

// Logical column names with no single physical column behind them. The
// storage layer maps them onto its own joins.
const (
	condWorkspaceID   = "workspace_id"
	condWorkspaceName = "workspace_name"
	condPrefixCode    = "prefix_code"
	condSeqNum        = "seq_num"
	condItemID        = "item_id"
	condID            = "id"
)

// Translate turns the request's active criteria into a Query. It fails on
// an unknown sort column, an expression outside its column's legality
// table, or an ordering the engine cannot honor consistently.
func Translate(req *Request) (*Query, error) {
	q := &Query{}

	translateScope(req, q)
	translateFullText(req, q)

	for _, col := range req.Columns {
		if !col.Filter.IsActive() {
			continue
		}
		if err := checkLegal(col, col.Filter.Expr); err != nil {
			return nil, err
		}
		switch col.class() {
		case classRefID:
			translateRefID(req, col, q)
		case classWorkspace, classDetail:
			// Workspace membership already narrowed the scope above, and
			// detail text is resolved into ItemIDs before translation.
		default:
			strategies[col.class()].predicate(col, condTarget(req, col), q)
		}
	}

	if err := translateOrder(req, q); err != nil {
		return nil, err
	}
	return q, nil
}

// condTarget decides which row a column's predicate applies to. With
// history granularity the status, user and timestamp columns describe the
// event itself; everything else describes the parent item.
func condTarget(req *Request, col *Column) bool {
	if !req.ShowHistory {
		return true
	}
	return col.parentTarget()
}

func translateScope(req *Request, q *Query) {
	if req.Workspace != nil {
		q.Conds = append(q.Conds, Cond{Col: condWorkspaceID, Op: OpEq, Args: []any{req.Workspace.ID}, OnItem: true})
		return
	}
	selected := req.SelectedWorkspaces()
	if len(selected) == 0 {
		q.ShortCircuit = true
		return
	}
	args := make([]any, 0, len(selected))
	for _, ws := range selected {
		args = append(args, ws.ID)
	}
	q.Conds = append(q.Conds, Cond{Col: condWorkspaceID, Op: OpIn, Args: args, OnItem: true})
}

// translateFullText narrows the result to the ids the text index returned.
// A nil slice means no text search ran; an empty one means the index found
// nothing and the whole query is moot.
func translateFullText(req *Request, q *Query) {
	if req.ItemIDs == nil {
		return
	}
	if len(req.ItemIDs) == 0 {
		q.ShortCircuit = true
		return
	}
	args := make([]any, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		args = append(args, id)
	}
	q.Conds = append(q.Conds, Cond{Col: condID, Op: OpIn, Args: args, OnItem: true})
}

func translateRefID(req *Request, col *Column, q *Query) {
	v, _ := col.Filter.Scalar()
	ref, err := model.ParseRefID(v.Str)
	if err != nil {
		// Decoding validated the value; a raw malformed ref just matches
		// nothing.
		q.ShortCircuit = true
		return
	}
	if req.Workspace != nil {
		if ref.PrefixCode != req.Workspace.PrefixCode {
			q.ShortCircuit = true
			return
		}
		q.Conds = append(q.Conds, Cond{Col: condSeqNum, Op: OpEq, Args: []any{ref.SeqNum}, OnItem: true})
		return
	}
	q.Conds = append(q.Conds,
		Cond{Col: condPrefixCode, Op: OpEq, Args: []any{ref.PrefixCode}, OnItem: true},
		Cond{Col: condSeqNum, Op: OpEq, Args: []any{ref.SeqNum}, OnItem: true},
	)
}

func translateOrder(req *Request, q *Query) error {
	col := req.Column(req.SortColumn)
	if col == nil {
		return fmt.Errorf("%w: sort column %q", ErrUnknownColumn, req.SortColumn)
	}

	if col.IsField() && col.Field.Key.Type().IsEnumerated() {
		// Option keys carry no rank in storage; ordering by display rank
		// has to happen in memory over the full result. That is only sound
		// when one workspace defines the option list and rows are items.
		if req.Workspace == nil || req.ShowHistory {
			return fmt.Errorf("%w: cannot sort by %q here", ErrUnsupportedSort, col.Key())
		}
		q.MemorySort = col.Field
		return nil
	}

	switch col.Name {
	case ColID, ColWorkspace:
		// Sorting by id and by workspace are the same ordering: aggregate
		// results group by workspace name first, then item id, with every
		// key following the requested direction. A single workspace needs
		// no grouping key.
		if req.Workspace == nil {
			q.Order = append(q.Order, OrderKey{Col: condWorkspaceName, Desc: req.SortDescending, OnItem: true})
		}
		if req.ShowHistory {
			q.Order = append(q.Order,
				OrderKey{Col: condItemID, Desc: req.SortDescending},
				OrderKey{Col: condID, Desc: req.SortDescending},
			)
		} else {
			q.Order = append(q.Order, OrderKey{Col: condID, Desc: req.SortDescending})
		}
	default:
		q.Order = append(q.Order,
			OrderKey{Col: col.storageColumn(), Desc: req.SortDescending, OnItem: condTarget(req, col)},
			OrderKey{Col: condID},
		)
	}
	return nil
}
