package events

import (
	"context"

	"github.com/kkolinko/jtrac/internal/model"
)

// Event topic constants
const (
	TopicItemCreated = "jtrac.item.created"
	TopicItemUpdated = "jtrac.item.updated"
	TopicItemMoved   = "jtrac.item.moved"

	TopicWorkspaceCreated = "jtrac.workspace.created"

	// Export lifecycle events
	TopicExportCompleted = "jtrac.export.completed"

	// TopicAll matches every jtrac event subject.
	TopicAll = "jtrac.>"
)

// Event types

type ItemCreated struct {
	Item *model.Item `json:"item"`
}

type ItemUpdated struct {
	Item  *model.Item         `json:"item"`
	Event *model.HistoryEvent `json:"event"` // the history entry recorded for this change
}

type ItemMoved struct {
	Item          *model.Item `json:"item"`
	FromWorkspace int64       `json:"from_workspace"` // workspace id before the move
	FromRef       string      `json:"from_ref"`       // old ref id, retired by the move
}

type WorkspaceCreated struct {
	Workspace *model.Workspace `json:"workspace"`
}

type ExportCompleted struct {
	JobID    string `json:"job_id"`
	Location string `json:"location"`
	Items    int    `json:"items"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
