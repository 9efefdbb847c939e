package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
	"github.com/mmcdole/tabstash/internal/tui"
	"github.com/spf13/cobra"
)

var browseTag string

var browseCmd = &cobra.Command{
	Use:   "browse <collection>",
	Short: "Browse and filter a collection interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal() {
			return errors.New("browse needs an interactive terminal")
		}
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		return tui.Run(ctx, d, tagOrDefault(browseTag), current.logger)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <collection>",
	Short: "Print the events of a collection as they happen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if current.channel == nil {
			return errors.New("watch needs a relay; pass --relay or set relay.url")
		}
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}

		bc := d.Events()
		var subs []events.Subscription
		for _, name := range domain.CollectionEvents {
			subs = append(subs, bc.On(name, func(_ context.Context, e events.Event) error {
				fmt.Println(describeEvent(e))
				return nil
			}))
		}
		defer func() {
			for _, sub := range subs {
				bc.Forget(sub)
			}
		}()

		fmt.Printf("Watching %s, press Ctrl+C to stop\n", d.ID())
		<-ctx.Done()
		return nil
	},
}

func describeEvent(e events.Event) string {
	switch e.Name {
	case domain.EventRename:
		var details domain.RenameDetails
		if err := e.Decode(&details); err == nil {
			return fmt.Sprintf("rename: %q -> %q", details.OldName, details.NewName)
		}
	case domain.EventReorder:
		var details domain.ReorderDetails
		if err := e.Decode(&details); err == nil {
			return fmt.Sprintf("reorder: %d -> %d", details.OldIndex, details.NewIndex)
		}
	case domain.EventDelete:
		var details domain.DeleteDetails
		if err := e.Decode(&details); err == nil {
			return fmt.Sprintf("delete: was at %d", details.Index)
		}
	}
	if len(e.Details) == 0 {
		return e.Name
	}
	return e.Name + ": " + strings.TrimSpace(string(e.Details))
}

func init() {
	browseCmd.Flags().StringVar(&browseTag, "tag", "", "initial query syntax")
	rootCmd.AddCommand(browseCmd, watchCmd)
}
