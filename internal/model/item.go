package model

import "time"

// StatusOpen is the fixed option key for the initial item state. Every
// workspace's status option list starts with it; the remaining states are
// workspace-defined.
const StatusOpen = 1

// Item is the core tracked record: the fixed columns every workspace shares
// plus one nullable slot per custom field. A nil slot means the field has no
// value on this item (distinct from a zero value).
type Item struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	SeqNum      int64     `json:"seq_num"`
	PrefixCode  string    `json:"prefix_code"` // denormalized from the workspace for ref-id display
	Summary     string    `json:"summary"`
	Detail      string    `json:"detail,omitempty"`
	Status      int       `json:"status"`
	LoggedBy    int64     `json:"logged_by"`
	AssignedTo  int64     `json:"assigned_to,omitempty"` // 0 = unassigned
	Timestamp   time.Time `json:"timestamp"`

	Severity *int       `json:"severity,omitempty"`
	Priority *int       `json:"priority,omitempty"`
	CusInt01 *int       `json:"cusInt01,omitempty"`
	CusInt02 *int       `json:"cusInt02,omitempty"`
	CusInt03 *int       `json:"cusInt03,omitempty"`
	CusDbl01 *float64   `json:"cusDbl01,omitempty"`
	CusDbl02 *float64   `json:"cusDbl02,omitempty"`
	CusStr01 string     `json:"cusStr01,omitempty"`
	CusStr02 string     `json:"cusStr02,omitempty"`
	CusTim01 *time.Time `json:"cusTim01,omitempty"`
	CusTim02 *time.Time `json:"cusTim02,omitempty"`
}

// RefID returns the human-readable reference id, e.g. "WEB-42".
func (it *Item) RefID() RefID {
	return RefID{PrefixCode: it.PrefixCode, SeqNum: it.SeqNum}
}

// OptionKey returns the option key stored in an enumerated slot, or
// (0, false) when the slot is empty or not enumerated.
func (it *Item) OptionKey(key FieldKey) (int, bool) {
	var p *int
	switch key {
	case FieldSeverity:
		p = it.Severity
	case FieldPriority:
		p = it.Priority
	case FieldCusInt01:
		p = it.CusInt01
	case FieldCusInt02:
		p = it.CusInt02
	case FieldCusInt03:
		p = it.CusInt03
	default:
		return 0, false
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Value returns the value stored in a custom-field slot, or nil when the
// slot is empty. String slots return "" when empty.
func (it *Item) Value(key FieldKey) any {
	switch key {
	case FieldSeverity, FieldPriority, FieldCusInt01, FieldCusInt02, FieldCusInt03:
		if k, ok := it.OptionKey(key); ok {
			return k
		}
		return nil
	case FieldCusDbl01:
		if it.CusDbl01 != nil {
			return *it.CusDbl01
		}
		return nil
	case FieldCusDbl02:
		if it.CusDbl02 != nil {
			return *it.CusDbl02
		}
		return nil
	case FieldCusStr01:
		return it.CusStr01
	case FieldCusStr02:
		return it.CusStr02
	case FieldCusTim01:
		if it.CusTim01 != nil {
			return *it.CusTim01
		}
		return nil
	case FieldCusTim02:
		if it.CusTim02 != nil {
			return *it.CusTim02
		}
		return nil
	}
	return nil
}

// HistoryEvent is one entry in an item's change history: a status change,
// reassignment, or comment. Events are searched joined to their parent item.
type HistoryEvent struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	LoggedBy   int64     `json:"logged_by"`
	AssignedTo int64     `json:"assigned_to,omitempty"`
	Status     int       `json:"status"`
	Comment    string    `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Item is the parent item, populated by event-granularity searches.
	Item *Item `json:"item,omitempty"`
}
