package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// statusLabel maps a status key through the workspace's status list, falling
// back to the raw number when the workspace is unknown.
func statusLabel(ws *model.Workspace, status int) string {
	if ws != nil {
		for _, o := range ws.Statuses {
			if o.Key == status {
				return o.Label
			}
		}
	}
	return fmt.Sprintf("%d", status)
}

func renderStatus(ws *model.Workspace, status int) string {
	label := statusLabel(ws, status)
	if status == model.StatusOpen {
		return ui.RenderOpen(label)
	}
	return label
}

func printItemTable(ws *model.Workspace, item *model.Item) {
	fmt.Printf("Ref:         %s\n", ui.RenderRef(item.RefID().String()))
	fmt.Printf("Summary:     %s\n", item.Summary)
	fmt.Printf("Status:      %s\n", renderStatus(ws, item.Status))
	fmt.Printf("Logged By:   %d\n", item.LoggedBy)
	if item.AssignedTo != 0 {
		fmt.Printf("Assigned To: %d\n", item.AssignedTo)
	}
	if item.Detail != "" {
		fmt.Printf("Detail:      %s\n", item.Detail)
	}
	if ws != nil {
		for _, f := range ws.Fields {
			v := item.Value(f.Key)
			if v == nil || v == "" {
				continue
			}
			label := f.Label
			if f.Type().IsEnumerated() {
				if key, ok := item.OptionKey(f.Key); ok {
					v = f.OptionLabel(key)
				}
			}
			fmt.Printf("%-12s %v\n", label+":", v)
		}
	}
	if !item.Timestamp.IsZero() {
		fmt.Printf("Logged At:   %s\n", item.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

func printItemListTable(items []*model.Item, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REF\tSTATUS\tSUMMARY\tLOGGED BY\tASSIGNED TO")
	for _, it := range items {
		summary := it.Summary
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		assigned := ""
		if it.AssignedTo != 0 {
			assigned = fmt.Sprintf("%d", it.AssignedTo)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			it.RefID().String(),
			it.Status,
			summary,
			it.LoggedBy,
			assigned,
		)
	}
	w.Flush()
	fmt.Printf("\n%d items (%d total)\n", len(items), total)
}

func printEventListTable(events []*model.HistoryEvent, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REF\tSTATUS\tLOGGED BY\tCOMMENT\tAT")
	for _, ev := range events {
		ref := ""
		if ev.Item != nil {
			ref = ev.Item.RefID().String()
		}
		comment := ev.Comment
		if len(comment) > 40 {
			comment = comment[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			ref,
			ev.Status,
			ev.LoggedBy,
			comment,
			ev.Timestamp.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d events (%d total)\n", len(events), total)
}

func printHistoryTable(ws *model.Workspace, history []*model.HistoryEvent) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tSTATUS\tLOGGED BY\tCOMMENT")
	for _, ev := range history {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			ev.Timestamp.Format("2006-01-02 15:04"),
			statusLabel(ws, ev.Status),
			ev.LoggedBy,
			ev.Comment,
		)
	}
	w.Flush()
}

func printWorkspaceListTable(workspaces []*model.Workspace) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PREFIX\tNAME\tFIELDS\tDESCRIPTION")
	for _, ws := range workspaces {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", ws.PrefixCode, ws.Name, len(ws.Fields), ws.Description)
	}
	w.Flush()
}
