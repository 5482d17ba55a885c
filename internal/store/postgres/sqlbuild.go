package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
)

// itemColRef maps a logical search column onto its reference in an item
// query, where every predicate binds to the item row.
func itemColRef(col string, _ bool) string {
	switch col {
	case "workspace_id":
		return "i.workspace_id"
	case "workspace_name":
		return "w.name"
	case "prefix_code":
		return "w.prefix_code"
	case "seq_num":
		return "i.seq_num"
	case "id", "item_id":
		return "i.id"
	}
	return "i." + col
}

// eventColRef maps a logical search column onto its reference in a history
// query. Predicates flagged for the parent item bind through the join;
// everything else binds to the history row itself.
func eventColRef(col string, onItem bool) string {
	if onItem {
		return itemColRef(col, true)
	}
	switch col {
	case "id":
		return "h.id"
	case "item_id":
		return "h.item_id"
	}
	return "h." + col
}

// renderWhere renders the query's predicates into a WHERE clause with $n
// placeholders, or "" when there are none.
func renderWhere(conds []search.Cond, colRef func(string, bool) string) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	nextArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range conds {
		ref := colRef(c.Col, c.OnItem)
		switch c.Op {
		case search.OpEq:
			clauses = append(clauses, ref+" = "+nextArg(c.Args[0]))
		case search.OpNotEq:
			clauses = append(clauses, ref+" <> "+nextArg(c.Args[0]))
		case search.OpGt:
			clauses = append(clauses, ref+" > "+nextArg(c.Args[0]))
		case search.OpLt:
			clauses = append(clauses, ref+" < "+nextArg(c.Args[0]))
		case search.OpIn:
			placeholders := make([]string, len(c.Args))
			for i, a := range c.Args {
				placeholders[i] = nextArg(a)
			}
			clauses = append(clauses, ref+" IN ("+strings.Join(placeholders, ", ")+")")
		case search.OpContains:
			clauses = append(clauses, ref+" ILIKE "+nextArg("%"+fmt.Sprint(c.Args[0])+"%"))
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// renderOrder renders the ordering keys, or "" when the query carries none.
func renderOrder(order []search.OrderKey, colRef func(string, bool) string) string {
	if len(order) == 0 {
		return ""
	}
	keys := make([]string, len(order))
	for i, k := range order {
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		keys[i] = colRef(k.Col, k.OnItem) + dir
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}

// queryFindItems runs one page of an item search. The count runs as a
// separate unordered query, skipped in batch mode. When the translation
// asks for a memory sort the full result is fetched, sorted by option
// rank, counted, and sliced.
func queryFindItems(ctx context.Context, db executor, req *search.Request) ([]*model.Item, error) {
	q, err := search.Translate(req)
	if err != nil {
		return nil, err
	}
	if q.ShortCircuit {
		if !req.BatchMode {
			req.ResultCount = 0
		}
		return nil, nil
	}

	where, args := renderWhere(q.Conds, itemColRef)

	if q.MemorySort != nil {
		rows, err := db.QueryContext(ctx, `SELECT `+itemColumns+itemFrom+where+` ORDER BY i.id`, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		items, err := scanItems(rows)
		if err != nil {
			return nil, err
		}
		search.SortItemsByOption(items, q.MemorySort, req.SortDescending)
		if !req.BatchMode {
			req.ResultCount = len(items)
		}
		return search.PageSlice(items, req.CurrentPage, req.PageSize), nil
	}

	if !req.BatchMode {
		var count int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+itemFrom+where, args...).Scan(&count); err != nil {
			return nil, err
		}
		req.ResultCount = count
	}

	stmt := `SELECT ` + itemColumns + itemFrom + where + renderOrder(q.Order, itemColRef)
	if req.PageSize != search.PageSizeUnbounded {
		stmt += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, req.PageSize, req.CurrentPage*req.PageSize)
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// queryFindEvents runs one page of a history search, each event joined to
// its parent item.
func queryFindEvents(ctx context.Context, db executor, req *search.Request) ([]*model.HistoryEvent, error) {
	q, err := search.Translate(req)
	if err != nil {
		return nil, err
	}
	if q.ShortCircuit {
		if !req.BatchMode {
			req.ResultCount = 0
		}
		return nil, nil
	}

	where, args := renderWhere(q.Conds, eventColRef)

	if !req.BatchMode {
		var count int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+eventFrom+where, args...).Scan(&count); err != nil {
			return nil, err
		}
		req.ResultCount = count
	}

	stmt := `SELECT ` + eventColumns + eventFrom + where + renderOrder(q.Order, eventColRef)
	if req.PageSize != search.PageSizeUnbounded {
		stmt += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, req.PageSize, req.CurrentPage*req.PageSize)
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEventsWithItems(rows)
}

// queryFindItemIDsContainingText returns the ids of items in the request's
// scope whose summary or detail contains the text, case-insensitively. The
// result is never nil: an empty slice means the text matched nothing, which
// callers treat as a definitive empty search result.
func queryFindItemIDsContainingText(ctx context.Context, db executor, req *search.Request, text string) ([]int64, error) {
	var (
		scope string
		args  []any
	)
	nextArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if req.Workspace != nil {
		scope = "workspace_id = " + nextArg(req.Workspace.ID)
	} else {
		selected := req.SelectedWorkspaces()
		if len(selected) == 0 {
			return []int64{}, nil
		}
		placeholders := make([]string, len(selected))
		for i, ws := range selected {
			placeholders[i] = nextArg(ws.ID)
		}
		scope = "workspace_id IN (" + strings.Join(placeholders, ", ") + ")"
	}

	pattern := "%" + text + "%"
	stmt := `SELECT id FROM items WHERE ` + scope +
		" AND (summary ILIKE " + nextArg(pattern) + " OR detail ILIKE " + nextArg(pattern) + ") ORDER BY id"

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
