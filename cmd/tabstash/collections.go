package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List collections in order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ids, err := current.registry.All(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No collections.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tITEMS\tID")
		for i, id := range ids {
			d, err := current.registry.Load(ctx, id)
			if err != nil {
				return err
			}
			root, err := d.Root(ctx)
			if err != nil {
				fmt.Fprintf(w, "%d\t(missing)\t-\t%s\n", i, id)
				continue
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i, root.Name, root.CountItems(), id)
		}
		return w.Flush()
	},
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}
		d, err := current.registry.Create(cmd.Context(), name)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("a collection named %q already exists", name)
		}
		created, err := d.Name(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Created %q (%s)\n", created, d.ID())
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <collection> <name>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		ok, err := d.SetName(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot rename to %q: empty, unchanged, or already taken", args[1])
		}
		fmt.Printf("Renamed to %q\n", args[1])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <collection>",
	Aliases: []string{"rm"},
	Short:   "Delete a collection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		name, err := d.Name(ctx)
		if err != nil {
			name = d.ID()
		}
		if !confirm(fmt.Sprintf("Delete %q?", name)) {
			return nil
		}
		if err := d.Delete(ctx); err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", name)
		return nil
	},
}

var duplicateCmd = &cobra.Command{
	Use:     "duplicate <collection>",
	Aliases: []string{"dup"},
	Short:   "Copy a collection under a new name",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		dup, err := d.Duplicate(ctx)
		if err != nil {
			return err
		}
		name, err := dup.Name(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Created %q (%s)\n", name, dup.ID())
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <collection> <index>",
	Short: "Move a collection to a new position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		if err := d.SetIndex(ctx, index); err != nil {
			return err
		}
		now, err := d.Index(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Moved to position %d\n", now)
		return nil
	},
}

var showRoutes bool

var showCmd = &cobra.Command{
	Use:   "show <collection>",
	Short: "Print a collection as indented text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		if !showRoutes {
			text, err := d.Text(ctx)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}

		root, err := d.Root(ctx)
		if err != nil {
			return err
		}
		return printEntries(root, nil)
	},
}

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find a collection by name prefix or fuzzy match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.registry.Find(ctx, args[0])
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, args[0])
		}
		name, err := d.Name(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", d.ID(), name)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showRoutes, "routes", "r", false, "list items with their routes")

	rootCmd.AddCommand(listCmd, createCmd, renameCmd, deleteCmd, duplicateCmd, moveCmd, showCmd, findCmd)
}
