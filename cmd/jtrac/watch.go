package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/events"
	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream item changes live from the event bus",
	GroupID: "items",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = os.Getenv("JTRAC_NATS_URL")
		}
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL == "" {
			return fmt.Errorf("no NATS URL; pass --nats or set JTRAC_NATS_URL")
		}

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer sub.Close()

		created, cancelCreated, err := sub.Subscribe(events.TopicItemCreated)
		if err != nil {
			return err
		}
		defer cancelCreated()
		updated, cancelUpdated, err := sub.Subscribe(events.TopicItemUpdated)
		if err != nil {
			return err
		}
		defer cancelUpdated()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Fprintln(os.Stderr, "watching for item changes (Ctrl-C to stop)")
		for {
			select {
			case <-ctx.Done():
				return nil
			case data, ok := <-created:
				if !ok {
					return nil
				}
				printWatchEvent("created", data)
			case data, ok := <-updated:
				if !ok {
					return nil
				}
				printWatchEvent("updated", data)
			}
		}
	},
}

func printWatchEvent(kind string, data []byte) {
	var payload struct {
		Item  *model.Item         `json:"item"`
		Event *model.HistoryEvent `json:"event"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Item == nil {
		fmt.Printf("%s  %s\n", kind, string(data))
		return
	}
	line := fmt.Sprintf("%s  %s  %s", ui.RenderRef(payload.Item.RefID().String()), kind, payload.Item.Summary)
	if payload.Event != nil && payload.Event.Comment != "" {
		line += "  " + ui.RenderMuted(payload.Event.Comment)
	}
	fmt.Println(line)
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS server URL")
}
