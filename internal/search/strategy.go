package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kkolinko/jtrac/internal/model"
)

// Resolver rehydrates entity-reference operands during decoding. The store
// satisfies it.
type Resolver interface {
	FindUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	FindWorkspacesByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error)
}

// columnClass buckets columns by the shape of their predicates and operands.
// Each class owns one strategy: its legal expressions, its operand codec,
// and its predicate builder. Adding a new field type means adding one
// registration here.
type columnClass int

const (
	classEnum columnClass = iota + 1 // custom enumerated fields: membership on option keys
	classStatus                      // fixed status column: membership on status codes
	classUserSet                     // loggedBy / assignedTo: membership on user ids
	classWorkspace                   // workspace column: membership on workspace ids
	classDecimal
	classDate
	classText   // short free text: case-insensitive substring
	classDetail // long text body: resolved by the external full-text index
	classRefID  // id column: equality on the "PREFIX-SEQ" ref id
)

type strategy struct {
	legal []Expression

	// decodeOperands parses the "_"-split tokens (the expression code
	// already stripped) into typed operands on the column's criterion.
	decodeOperands func(ctx context.Context, col *Column, expr Expression, tokens []string, req *Request, res Resolver) error

	// predicate appends the column's storage predicate to q. nil for the
	// classes the translator handles as special cases (refid, detail,
	// workspace scope).
	predicate func(col *Column, onItem bool, q *Query)
}

var strategies = map[columnClass]strategy{
	classEnum: {
		legal:          []Expression{ExprIn},
		decodeOperands: decodeRefSet,
		predicate:      membershipPredicate,
	},
	classStatus: {
		legal:          []Expression{ExprIn},
		decodeOperands: decodeRefSet,
		predicate:      membershipPredicate,
	},
	classUserSet: {
		legal:          []Expression{ExprIn},
		decodeOperands: decodeUserSet,
		predicate:      membershipPredicate,
	},
	classWorkspace: {
		legal:          []Expression{ExprIn},
		decodeOperands: decodeWorkspaceSet,
		// Scope membership is emitted by the translator, not per column.
	},
	classDecimal: {
		legal:          []Expression{ExprEquals, ExprNotEquals, ExprGreaterThan, ExprLessThan, ExprBetween},
		decodeOperands: decodeScalar(parseNumberOperand),
		predicate:      comparisonPredicate,
	},
	classDate: {
		legal:          []Expression{ExprEquals, ExprNotEquals, ExprGreaterThan, ExprLessThan, ExprBetween},
		decodeOperands: decodeScalar(parseDateOperand),
		predicate:      comparisonPredicate,
	},
	classText: {
		legal:          []Expression{ExprContains},
		decodeOperands: decodeText,
		predicate:      containsPredicate,
	},
	classDetail: {
		legal:          []Expression{ExprContains},
		decodeOperands: decodeText,
		// Resolved through the full-text index into an id membership
		// predicate by the translator.
	},
	classRefID: {
		legal:          []Expression{ExprEquals},
		decodeOperands: decodeRefID,
		// Expanded by the translator into seq-num and prefix predicates.
	},
}

// legalExpression reports whether the expression is in the legality table
// for the class.
func legalExpression(cls columnClass, e Expression) bool {
	for _, l := range strategies[cls].legal {
		if l == e {
			return true
		}
	}
	return false
}

// checkLegal wraps the table lookup in the fatal configuration fault.
func checkLegal(col *Column, e Expression) error {
	if !legalExpression(col.class(), e) {
		return fmt.Errorf("%w: %s on column %q", ErrIllegalExpression, e.Code(), col.Key())
	}
	return nil
}

//
// Operand decoding
//

func decodeRefSet(_ context.Context, col *Column, expr Expression, tokens []string, _ *Request, _ Resolver) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: column %q: empty membership set", ErrBadFilterValue, col.Key())
	}
	values := make([]Operand, 0, len(tokens))
	for _, t := range tokens {
		key, err := strconv.Atoi(t)
		if err != nil {
			return fmt.Errorf("%w: column %q: bad option key %q", ErrBadFilterValue, col.Key(), t)
		}
		label := ""
		if col.IsField() {
			label = col.Field.OptionLabel(key)
		}
		values = append(values, RefOperand(int64(key), label))
	}
	col.Filter = Criterion{Expr: expr, Values: values}
	return nil
}

func decodeUserSet(ctx context.Context, col *Column, expr Expression, tokens []string, _ *Request, res Resolver) error {
	ids, err := parseIDTokens(col, tokens)
	if err != nil {
		return err
	}
	users, err := res.FindUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve users for column %q: %w", col.Key(), err)
	}
	values := make([]Operand, 0, len(users))
	for _, u := range users {
		values = append(values, RefOperand(u.ID, u.Name))
	}
	col.Filter = Criterion{Expr: expr, Values: values}
	return nil
}

func decodeWorkspaceSet(ctx context.Context, col *Column, expr Expression, tokens []string, req *Request, res Resolver) error {
	ids, err := parseIDTokens(col, tokens)
	if err != nil {
		return err
	}
	// Authorization check happens here, before any query executes: every
	// referenced workspace must be in the caller's visible set.
	visible := make(map[int64]bool, len(req.Visible))
	for _, ws := range req.Visible {
		visible[ws.ID] = true
	}
	for _, id := range ids {
		if !visible[id] {
			return fmt.Errorf("%w: workspace %d", ErrWorkspaceForbidden, id)
		}
	}
	workspaces, err := res.FindWorkspacesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve workspaces: %w", err)
	}
	values := make([]Operand, 0, len(workspaces))
	for _, ws := range workspaces {
		values = append(values, RefOperand(ws.ID, ws.Name))
	}
	col.Filter = Criterion{Expr: expr, Values: values}
	return nil
}

func parseIDTokens(col *Column, tokens []string) ([]int64, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: column %q: empty membership set", ErrBadFilterValue, col.Key())
	}
	ids := make([]int64, 0, len(tokens))
	for _, t := range tokens {
		id, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: bad id %q", ErrBadFilterValue, col.Key(), t)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeScalar builds a decoder for scalar criteria from a token parser.
// Between takes exactly two operands, every other expression exactly one.
func decodeScalar(parse func(string) (Operand, error)) func(context.Context, *Column, Expression, []string, *Request, Resolver) error {
	return func(_ context.Context, col *Column, expr Expression, tokens []string, _ *Request, _ Resolver) error {
		want := 1
		if expr == ExprBetween {
			want = 2
		}
		if len(tokens) != want {
			return fmt.Errorf("%w: column %q: expected %d operand(s), got %d", ErrBadFilterValue, col.Key(), want, len(tokens))
		}
		v, err := parse(tokens[0])
		if err != nil {
			return fmt.Errorf("%w: column %q: %v", ErrBadFilterValue, col.Key(), err)
		}
		c := Criterion{Expr: expr, Value: v}
		if expr == ExprBetween {
			v2, err := parse(tokens[1])
			if err != nil {
				return fmt.Errorf("%w: column %q: %v", ErrBadFilterValue, col.Key(), err)
			}
			c.Value2 = v2
		}
		col.Filter = c
		return nil
	}
}

func parseNumberOperand(t string) (Operand, error) {
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return Operand{}, fmt.Errorf("bad number %q", t)
	}
	return NumberOperand(f), nil
}

func parseDateOperand(t string) (Operand, error) {
	d, err := time.Parse(DateFormat, t)
	if err != nil {
		return Operand{}, fmt.Errorf("bad date %q", t)
	}
	return DateOperand(d), nil
}

// decodeText treats everything after the expression code as one verbatim
// value: free text may itself contain the separator.
func decodeText(_ context.Context, col *Column, expr Expression, tokens []string, _ *Request, _ Resolver) error {
	s := strings.Join(tokens, "_")
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: column %q: empty text value", ErrBadFilterValue, col.Key())
	}
	col.Filter = Criterion{Expr: expr, Value: TextOperand(s)}
	return nil
}

func decodeRefID(_ context.Context, col *Column, expr Expression, tokens []string, _ *Request, _ Resolver) error {
	s := strings.Join(tokens, "_")
	if _, err := model.ParseRefID(s); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFilterValue, err)
	}
	col.Filter = Criterion{Expr: expr, Value: TextOperand(s)}
	return nil
}

//
// Predicate building
//

func membershipPredicate(col *Column, onItem bool, q *Query) {
	list := col.Filter.List()
	args := make([]any, 0, len(list))
	for _, o := range list {
		args = append(args, o.Ref)
	}
	q.Conds = append(q.Conds, Cond{Col: col.storageColumn(), Op: OpIn, Args: args, OnItem: onItem})
}

func comparisonPredicate(col *Column, onItem bool, q *Query) {
	v, v2 := col.Filter.Scalar()
	sc := col.storageColumn()
	switch col.Filter.Expr {
	case ExprEquals:
		q.Conds = append(q.Conds, Cond{Col: sc, Op: OpEq, Args: []any{v.Arg()}, OnItem: onItem})
	case ExprNotEquals:
		q.Conds = append(q.Conds, Cond{Col: sc, Op: OpNotEq, Args: []any{v.Arg()}, OnItem: onItem})
	case ExprGreaterThan:
		q.Conds = append(q.Conds, Cond{Col: sc, Op: OpGt, Args: []any{v.Arg()}, OnItem: onItem})
	case ExprLessThan:
		q.Conds = append(q.Conds, Cond{Col: sc, Op: OpLt, Args: []any{v.Arg()}, OnItem: onItem})
	case ExprBetween:
		// Both bounds are strict: (value, value2) is an open interval. The
		// boundary values themselves never match.
		q.Conds = append(q.Conds,
			Cond{Col: sc, Op: OpGt, Args: []any{v.Arg()}, OnItem: onItem},
			Cond{Col: sc, Op: OpLt, Args: []any{v2.Arg()}, OnItem: onItem},
		)
	}
}

func containsPredicate(col *Column, onItem bool, q *Query) {
	v, _ := col.Filter.Scalar()
	q.Conds = append(q.Conds, Cond{Col: col.storageColumn(), Op: OpContains, Args: []any{v.Str}, OnItem: onItem})
}
