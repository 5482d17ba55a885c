package search

import "errors"

// Sentinel errors surfaced by translation and decoding. All are deterministic
// logical errors: they are reported to the immediate caller and never retried.
var (
	// ErrUnknownColumn reports a column or sort key that resolves to no
	// descriptor. This is a caller bug or a tampered URL.
	ErrUnknownColumn = errors.New("unknown search column")

	// ErrIllegalExpression reports an expression outside the legality table
	// for the column's value type.
	ErrIllegalExpression = errors.New("expression not legal for column")

	// ErrBadFilterValue reports a malformed operand token: wrong arity, or a
	// token that fails to parse as its expected scalar type.
	ErrBadFilterValue = errors.New("invalid filter value")

	// ErrWorkspaceForbidden reports a workspace reference outside the
	// caller's visible set. Checked at decode time, before any query runs.
	ErrWorkspaceForbidden = errors.New("workspace not visible to user")

	// ErrUnsupportedSort reports a sort the engine refuses rather than
	// returning wrongly-ordered results: an enumerated custom-field sort in
	// aggregate scope or at event granularity.
	ErrUnsupportedSort = errors.New("unsupported sort")
)
