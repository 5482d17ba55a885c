package model

// FieldKey identifies a custom-field slot. The set of slots is closed: each
// key maps to one physical column of the items table, and its value type is
// fixed by the slot. A workspace schema activates a subset of these slots.
type FieldKey string

const (
	FieldSeverity FieldKey = "severity"
	FieldPriority FieldKey = "priority"
	FieldCusInt01 FieldKey = "cusInt01"
	FieldCusInt02 FieldKey = "cusInt02"
	FieldCusInt03 FieldKey = "cusInt03"
	FieldCusDbl01 FieldKey = "cusDbl01"
	FieldCusDbl02 FieldKey = "cusDbl02"
	FieldCusStr01 FieldKey = "cusStr01"
	FieldCusStr02 FieldKey = "cusStr02"
	FieldCusTim01 FieldKey = "cusTim01"
	FieldCusTim02 FieldKey = "cusTim02"
)

// FieldType classifies a custom-field slot. The type decides which filter
// expressions are legal and what shape the storage predicate takes.
type FieldType int

const (
	FieldEnum       FieldType = iota + 1 // single-select option list
	FieldEnumMulti                       // multi-select option list
	FieldEnumStatus                      // status-like option list
	FieldDecimal
	FieldFreeText
	FieldDate
)

// fieldTypes maps each slot to its fixed value type. Severity and priority
// are status-like; the generic integer slots are plain option lists.
var fieldTypes = map[FieldKey]FieldType{
	FieldSeverity: FieldEnumStatus,
	FieldPriority: FieldEnumStatus,
	FieldCusInt01: FieldEnum,
	FieldCusInt02: FieldEnum,
	FieldCusInt03: FieldEnumMulti,
	FieldCusDbl01: FieldDecimal,
	FieldCusDbl02: FieldDecimal,
	FieldCusStr01: FieldFreeText,
	FieldCusStr02: FieldFreeText,
	FieldCusTim01: FieldDate,
	FieldCusTim02: FieldDate,
}

// Type returns the value type fixed for this slot, or 0 for an unknown key.
func (k FieldKey) Type() FieldType {
	return fieldTypes[k]
}

// IsValid reports whether the key names a known custom-field slot.
func (k FieldKey) IsValid() bool {
	_, ok := fieldTypes[k]
	return ok
}

// String returns the string representation of the field key.
func (k FieldKey) String() string {
	return string(k)
}

// IsEnumerated reports whether values of this type are drawn from a closed,
// ordered option set.
func (t FieldType) IsEnumerated() bool {
	return t == FieldEnum || t == FieldEnumMulti || t == FieldEnumStatus
}

// Option is one legal value of an enumerated field. Options are ordered;
// the position in the list is the field's display rank.
type Option struct {
	Key   int    `json:"key"`
	Label string `json:"label"`
}

// Field is one active custom-field slot in a workspace schema.
type Field struct {
	Key   FieldKey `json:"key"`
	Label string   `json:"label"`

	// Options is the ordered option list; only meaningful for enumerated slots.
	Options []Option `json:"options,omitempty"`
}

// Type returns the field's value type, fixed by its slot.
func (f *Field) Type() FieldType {
	return f.Key.Type()
}

// OptionRank returns the position of the given option key within the field's
// declared option order, or -1 when the key is absent. Rows with absent
// values therefore group deterministically at one end when sorting by rank.
func (f *Field) OptionRank(key int) int {
	for i, o := range f.Options {
		if o.Key == key {
			return i
		}
	}
	return -1
}

// OptionLabel returns the display label for an option key, or "" if unknown.
func (f *Field) OptionLabel(key int) string {
	for _, o := range f.Options {
		if o.Key == key {
			return o.Label
		}
	}
	return ""
}

// HasOption reports whether the key is one of the field's declared options.
func (f *Field) HasOption(key int) bool {
	return f.OptionRank(key) >= 0
}
