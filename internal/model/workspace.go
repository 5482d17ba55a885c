package model

import "encoding/json"

// Workspace is one project area of a jtrac installation. Items live inside
// exactly one workspace, and the workspace's schema determines both the
// custom fields its items carry and the status states items move through.
type Workspace struct {
	ID          int64  `json:"id"`
	PrefixCode  string `json:"prefix_code"` // uppercase short code, part of every item ref id
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Fields is the ordered custom-field schema for this workspace.
	Fields []*Field `json:"fields,omitempty"`

	// Statuses is the ordered status option list. The first entry is always
	// the fixed Open state; the rest are workspace-defined.
	Statuses []Option `json:"statuses,omitempty"`
}

// DefaultStatuses returns the minimal status list every workspace starts with.
func DefaultStatuses() []Option {
	return []Option{{Key: StatusOpen, Label: "Open"}}
}

// Field returns the schema field with the given key, or nil.
func (w *Workspace) Field(key FieldKey) *Field {
	for _, f := range w.Fields {
		if f.Key == key {
			return f
		}
	}
	return nil
}

// StatusLabel returns the display label of a status key, or "" if unknown.
func (w *Workspace) StatusLabel(key int) string {
	for _, o := range w.Statuses {
		if o.Key == key {
			return o.Label
		}
	}
	return ""
}

// workspaceSchema is the JSONB shape the store persists for a workspace.
type workspaceSchema struct {
	Fields   []*Field `json:"fields,omitempty"`
	Statuses []Option `json:"statuses,omitempty"`
}

// MarshalSchema encodes the field and status schema for a JSONB column.
func (w *Workspace) MarshalSchema() (json.RawMessage, error) {
	if len(w.Fields) == 0 && len(w.Statuses) == 0 {
		return nil, nil
	}
	return json.Marshal(workspaceSchema{Fields: w.Fields, Statuses: w.Statuses})
}

// UnmarshalSchema decodes a JSONB schema into the workspace.
func (w *Workspace) UnmarshalSchema(raw json.RawMessage) error {
	if len(raw) == 0 {
		w.Fields = nil
		w.Statuses = nil
		return nil
	}
	var s workspaceSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	w.Fields = s.Fields
	w.Statuses = s.Statuses
	return nil
}
