package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the fixed, locale-independent calendar format used for date
// operands in the query-string form.
const DateFormat = "2006-01-02"

// Expression is a filter comparison. Which expressions are legal depends on
// the owning column's value type; see the strategy table in strategy.go.
type Expression int

const (
	ExprIn Expression = iota + 1
	ExprEquals
	ExprNotEquals
	ExprGreaterThan
	ExprLessThan
	ExprBetween
	ExprContains
)

var exprCodes = map[Expression]string{
	ExprIn:          "in",
	ExprEquals:      "eq",
	ExprNotEquals:   "neq",
	ExprGreaterThan: "gt",
	ExprLessThan:    "lt",
	ExprBetween:     "bet",
	ExprContains:    "con",
}

// Code returns the short code used as the first query-string token.
func (e Expression) Code() string {
	return exprCodes[e]
}

// ParseExpression resolves a query-string code to an expression. An unknown
// code is a decode fault; the caller must not substitute a default.
func ParseExpression(code string) (Expression, error) {
	for e, c := range exprCodes {
		if c == code {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown expression code %q", ErrBadFilterValue, code)
}

// IsSet reports whether the expression takes a set of operands rather than
// one scalar (with an optional second bound).
func (e Expression) IsSet() bool {
	return e == ExprIn
}

// OperandKind tags the scalar type held by an Operand.
type OperandKind int

const (
	OperandNumber OperandKind = iota + 1
	OperandDate
	OperandText
	OperandRef // entity or option identity: user id, workspace id, option key
)

// Operand is one typed filter operand.
type Operand struct {
	Kind  OperandKind
	Num   float64
	Time  time.Time
	Str   string
	Ref   int64
	Label string // display label for resolved refs; not part of identity
}

// NumberOperand returns a decimal operand.
func NumberOperand(v float64) Operand { return Operand{Kind: OperandNumber, Num: v} }

// DateOperand returns a calendar-date operand.
func DateOperand(t time.Time) Operand { return Operand{Kind: OperandDate, Time: t} }

// TextOperand returns a free-text operand.
func TextOperand(s string) Operand { return Operand{Kind: OperandText, Str: s} }

// RefOperand returns an identity operand (option key or entity id).
func RefOperand(id int64, label string) Operand {
	return Operand{Kind: OperandRef, Ref: id, Label: label}
}

// IsZero reports whether the operand holds no usable value. Text operands
// are empty when blank after trimming.
func (o Operand) IsZero() bool {
	if o.Kind == 0 {
		return true
	}
	if o.Kind == OperandText {
		return strings.TrimSpace(o.Str) == ""
	}
	return false
}

// Token renders the operand in its canonical query-string form.
func (o Operand) Token() string {
	switch o.Kind {
	case OperandNumber:
		return strconv.FormatFloat(o.Num, 'f', -1, 64)
	case OperandDate:
		return o.Time.Format(DateFormat)
	case OperandText:
		return o.Str
	case OperandRef:
		return strconv.FormatInt(o.Ref, 10)
	}
	return ""
}

// Arg returns the operand as a storage-level query argument.
func (o Operand) Arg() any {
	switch o.Kind {
	case OperandNumber:
		return o.Num
	case OperandDate:
		return o.Time
	case OperandText:
		return o.Str
	case OperandRef:
		return o.Ref
	}
	return nil
}

// Criterion is one filter condition bound to a column. The zero value is the
// unset state. A criterion is either scalar (Value, and Value2 for Between)
// or a set (Values, for In); which form applies follows from the expression.
type Criterion struct {
	Expr   Expression
	Value  Operand
	Value2 Operand
	Values []Operand
}

// IsActive reports whether the criterion contributes a predicate: the
// expression must be set, and the operands non-empty. Inactive criteria are
// ignored by translation and omitted from the serialized form.
func (c *Criterion) IsActive() bool {
	if c.Expr == 0 {
		return false
	}
	if c.Expr.IsSet() {
		return len(c.Values) > 0
	}
	return !c.Value.IsZero()
}

// List returns the operand set. Calling it on a scalar-form criterion is a
// programming error: the codec and translator dispatch on the legality
// table, so the mismatch can only come from a bug.
func (c *Criterion) List() []Operand {
	if !c.Expr.IsSet() {
		panic(fmt.Sprintf("search: List called on scalar criterion (expr %s)", c.Expr.Code()))
	}
	return c.Values
}

// Scalar returns the scalar operand pair. The second operand is only set for
// Between. Calling it on a set-form criterion is a programming error.
func (c *Criterion) Scalar() (Operand, Operand) {
	if c.Expr.IsSet() {
		panic("search: Scalar called on set criterion")
	}
	return c.Value, c.Value2
}

// Reset clears the criterion back to the unset state.
func (c *Criterion) Reset() {
	*c = Criterion{}
}
