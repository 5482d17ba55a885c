package search

import (
	"github.com/kkolinko/jtrac/internal/model"
)

// ColumnName identifies one of the fixed columns every scope shares. Custom
// fields are identified by their model.FieldKey instead.
type ColumnName string

const (
	ColID         ColumnName = "id"
	ColSummary    ColumnName = "summary"
	ColDetail     ColumnName = "detail"
	ColLoggedBy   ColumnName = "loggedBy"
	ColStatus     ColumnName = "status"
	ColAssignedTo ColumnName = "assignedTo"
	ColTimestamp  ColumnName = "timestamp"
	ColWorkspace  ColumnName = "workspace"
)

// Column is one queryable attribute of a search: a fixed column or a
// per-workspace custom field, its visibility in result tables, and its owned
// filter criterion. Identity is the field key when custom, the fixed name
// otherwise; the two sets never collide because field keys are drawn from
// the closed slot list in model.
type Column struct {
	Name    ColumnName   // fixed column; empty when Field is set
	Field   *model.Field // custom field; nil for fixed columns
	Label   string
	Visible bool
	Filter  Criterion
}

// newFixedColumn builds a fixed column. Detail and workspace start hidden:
// one is a long text body, the other is implied by single-workspace scope.
func newFixedColumn(name ColumnName) *Column {
	return &Column{
		Name:    name,
		Label:   string(name),
		Visible: name != ColDetail && name != ColWorkspace,
	}
}

// newFieldColumn builds a column for a workspace custom field.
func newFieldColumn(f *model.Field) *Column {
	return &Column{Field: f, Label: f.Label, Visible: true}
}

// IsField reports whether the column is a custom field.
func (c *Column) IsField() bool {
	return c.Field != nil
}

// Key returns the column's lookup key: the custom field key, or the fixed
// column name. This is also the query-string parameter name.
func (c *Column) Key() string {
	if c.IsField() {
		return c.Field.Key.String()
	}
	return string(c.Name)
}

// class buckets the column for the strategy registry.
func (c *Column) class() columnClass {
	if c.IsField() {
		switch c.Field.Type() {
		case model.FieldEnum, model.FieldEnumMulti, model.FieldEnumStatus:
			return classEnum
		case model.FieldDecimal:
			return classDecimal
		case model.FieldDate:
			return classDate
		case model.FieldFreeText:
			return classText
		}
		return 0
	}
	switch c.Name {
	case ColID:
		return classRefID
	case ColSummary:
		return classText
	case ColDetail:
		return classDetail
	case ColLoggedBy, ColAssignedTo:
		return classUserSet
	case ColStatus:
		return classStatus
	case ColTimestamp:
		return classDate
	case ColWorkspace:
		return classWorkspace
	}
	return 0
}

// fieldColumns maps each custom-field slot to its physical storage column.
var fieldColumns = map[model.FieldKey]string{
	model.FieldSeverity: "severity",
	model.FieldPriority: "priority",
	model.FieldCusInt01: "cus_int_01",
	model.FieldCusInt02: "cus_int_02",
	model.FieldCusInt03: "cus_int_03",
	model.FieldCusDbl01: "cus_dbl_01",
	model.FieldCusDbl02: "cus_dbl_02",
	model.FieldCusStr01: "cus_str_01",
	model.FieldCusStr02: "cus_str_02",
	model.FieldCusTim01: "cus_tim_01",
	model.FieldCusTim02: "cus_tim_02",
}

// storageColumn returns the physical column a predicate or order key binds
// to. The id and workspace columns are handled as special cases by the
// translator and have no single mapping here.
func (c *Column) storageColumn() string {
	if c.IsField() {
		return fieldColumns[c.Field.Key]
	}
	switch c.Name {
	case ColSummary:
		return "summary"
	case ColDetail:
		return "detail"
	case ColLoggedBy:
		return "logged_by"
	case ColStatus:
		return "status"
	case ColAssignedTo:
		return "assigned_to"
	case ColTimestamp:
		return "ts"
	}
	return ""
}

// parentTarget reports whether, at event granularity, the column's predicate
// binds to the parent item row rather than the history row. Custom fields,
// text bodies, and identity columns live on the item; the per-event state
// (status, actors, timestamp) lives on the history row.
func (c *Column) parentTarget() bool {
	if c.IsField() {
		return true
	}
	switch c.Name {
	case ColID, ColSummary, ColDetail, ColWorkspace:
		return true
	}
	return false
}
