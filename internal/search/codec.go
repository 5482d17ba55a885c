package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Reserved query-string parameter names. Everything else is either a column
// key or ignored.
const (
	ParamWorkspace     = "s"
	ParamVisibleCols   = "cols"
	ParamShowHistory   = "showHistory"
	ParamPageSize      = "pageSize"
	ParamSortAscending = "sortAscending"
	ParamSortField     = "sortFieldName"
	ParamRelatingRef   = "relatingItemRefId"
)

var reservedParams = map[string]bool{
	ParamWorkspace:     true,
	ParamVisibleCols:   true,
	ParamShowHistory:   true,
	ParamPageSize:      true,
	ParamSortAscending: true,
	ParamSortField:     true,
	ParamRelatingRef:   true,
}

// Encode serializes the request into bookmarkable query-string values.
// Settings at their scope defaults are omitted, so a fresh request encodes
// to just its workspace scope. Each active criterion becomes one parameter,
// keyed by its column, with the expression code and operand tokens joined
// by underscores.
func Encode(req *Request) url.Values {
	v := url.Values{}
	if req.Workspace != nil {
		v.Set(ParamWorkspace, strconv.FormatInt(req.Workspace.ID, 10))
	}
	if flags := req.VisibleFlags(); flags != req.DefaultVisibleFlags() {
		v.Set(ParamVisibleCols, flags)
	}
	if req.ShowHistory {
		v.Set(ParamShowHistory, "true")
	}
	if req.PageSize != DefaultPageSize {
		v.Set(ParamPageSize, strconv.Itoa(req.PageSize))
	}
	if !req.SortDescending {
		v.Set(ParamSortAscending, "true")
	}
	if req.SortColumn != string(ColID) {
		v.Set(ParamSortField, req.SortColumn)
	}
	if req.RelatingItemRef != "" {
		v.Set(ParamRelatingRef, req.RelatingItemRef)
	}
	for _, col := range req.Columns {
		if !col.Filter.IsActive() {
			continue
		}
		v.Set(col.Key(), encodeCriterion(&col.Filter))
	}
	return v
}

func encodeCriterion(c *Criterion) string {
	tokens := []string{c.Expr.Code()}
	if c.Expr.IsSet() {
		for _, o := range c.List() {
			tokens = append(tokens, o.Token())
		}
	} else {
		v, v2 := c.Scalar()
		tokens = append(tokens, v.Token())
		if c.Expr == ExprBetween {
			tokens = append(tokens, v2.Token())
		}
	}
	return strings.Join(tokens, "_")
}

// DecodeInto restores a request's settings and criteria from query-string
// values. The request must already be scoped: workspace resolution (the "s"
// parameter) is the caller's job, since it needs storage and an
// authorization check. Parameters that are neither reserved nor a known
// column key are ignored, so stale bookmarks survive schema changes.
// Malformed values in recognized parameters are decode faults.
func DecodeInto(ctx context.Context, req *Request, params url.Values, res Resolver) error {
	if flags := params.Get(ParamVisibleCols); flags != "" {
		req.ApplyVisibleFlags(flags)
	}
	if params.Get(ParamShowHistory) == "true" {
		req.ShowHistory = true
	}
	if raw := params.Get(ParamPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || (n <= 0 && n != PageSizeUnbounded) {
			return fmt.Errorf("%w: page size %q", ErrBadFilterValue, raw)
		}
		req.PageSize = n
	}
	if params.Get(ParamSortAscending) == "true" {
		req.SortDescending = false
	}
	if field := params.Get(ParamSortField); field != "" {
		if req.Column(field) == nil {
			return fmt.Errorf("%w: sort column %q", ErrUnknownColumn, field)
		}
		req.SortColumn = field
	}
	req.RelatingItemRef = params.Get(ParamRelatingRef)

	for key, vals := range params {
		if reservedParams[key] || len(vals) == 0 || vals[0] == "" {
			continue
		}
		col := req.Column(key)
		if col == nil {
			continue
		}
		if err := decodeCriterion(ctx, req, col, vals[0], res); err != nil {
			return err
		}
	}
	return nil
}

func decodeCriterion(ctx context.Context, req *Request, col *Column, raw string, res Resolver) error {
	tokens := strings.Split(raw, "_")
	expr, err := ParseExpression(tokens[0])
	if err != nil {
		return fmt.Errorf("column %q: %w", col.Key(), err)
	}
	if err := checkLegal(col, expr); err != nil {
		return err
	}
	return strategies[col.class()].decodeOperands(ctx, col, expr, tokens[1:], req, res)
}
