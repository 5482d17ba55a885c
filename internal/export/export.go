// Package export writes tracker data as a portable XML snapshot and ships
// snapshots to configured destinations on a schedule.
package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
)

// batchSize is the number of items fetched per round trip during a full
// export walk.
const batchSize = 500

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlEvent struct {
	LoggedBy   int64     `xml:"loggedBy,attr"`
	AssignedTo int64     `xml:"assignedTo,attr,omitempty"`
	Status     int       `xml:"status,attr"`
	Timestamp  time.Time `xml:"timestamp,attr"`
	Comment    string    `xml:",chardata"`
}

type xmlItem struct {
	XMLName    xml.Name   `xml:"item"`
	RefID      string     `xml:"refId,attr"`
	Status     int        `xml:"status,attr"`
	LoggedBy   int64      `xml:"loggedBy,attr"`
	AssignedTo int64      `xml:"assignedTo,attr,omitempty"`
	Timestamp  time.Time  `xml:"timestamp,attr"`
	Summary    string     `xml:"summary"`
	Detail     string     `xml:"detail,omitempty"`
	Fields     []xmlField `xml:"field"`
	History    []xmlEvent `xml:"history>event"`
}

// WriteXML walks every item in every workspace in batches and streams them
// to w as one XML document. It returns the number of items written. The
// walk runs in batch mode: ascending id order, a fixed page size, and no
// count query per page.
func WriteXML(ctx context.Context, s store.Store, w io.Writer) (int, error) {
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return 0, fmt.Errorf("list workspaces: %w", err)
	}

	total, err := s.CountItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	root := xml.StartElement{
		Name: xml.Name{Local: "items"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "count"}, Value: fmt.Sprintf("%d", total)}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return 0, fmt.Errorf("encode root: %w", err)
	}

	req := search.NewAggregateRequest(nil, workspaces)
	req.BatchMode = true
	req.PageSize = batchSize
	req.SortDescending = false

	written := 0
	for page := 0; ; page++ {
		req.CurrentPage = page
		items, err := s.FindItems(ctx, req)
		if err != nil {
			return written, fmt.Errorf("fetch batch %d: %w", page, err)
		}
		for _, it := range items {
			history, err := s.GetEvents(ctx, it.ID)
			if err != nil {
				return written, fmt.Errorf("fetch history for %s: %w", it.RefID(), err)
			}
			if err := enc.Encode(toXMLItem(workspaces, it, history)); err != nil {
				return written, fmt.Errorf("encode item %s: %w", it.RefID(), err)
			}
			written++
		}
		if len(items) < batchSize {
			break
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return written, fmt.Errorf("encode root end: %w", err)
	}
	return written, enc.Flush()
}

func toXMLItem(workspaces []*model.Workspace, it *model.Item, history []*model.HistoryEvent) xmlItem {
	out := xmlItem{
		RefID:      it.RefID().String(),
		Status:     it.Status,
		LoggedBy:   it.LoggedBy,
		AssignedTo: it.AssignedTo,
		Timestamp:  it.Timestamp,
		Summary:    it.Summary,
		Detail:     it.Detail,
	}

	var ws *model.Workspace
	for _, w := range workspaces {
		if w.ID == it.WorkspaceID {
			ws = w
			break
		}
	}
	if ws != nil {
		for _, f := range ws.Fields {
			v := it.Value(f.Key)
			if v == nil || v == "" {
				continue
			}
			out.Fields = append(out.Fields, xmlField{Name: f.Key.String(), Value: fieldText(v)})
		}
	}

	for _, ev := range history {
		out.History = append(out.History, xmlEvent{
			LoggedBy:   ev.LoggedBy,
			AssignedTo: ev.AssignedTo,
			Status:     ev.Status,
			Timestamp:  ev.Timestamp,
			Comment:    ev.Comment,
		})
	}
	return out
}

// fieldText renders a custom-field value for the XML form.
func fieldText(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
