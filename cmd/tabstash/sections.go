package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/spf13/cobra"
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Edit the sections of a collection",
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Edit the items of a collection",
}

var sectionAddCmd = &cobra.Command{
	Use:   "add <collection> [path] [name]",
	Short: "Add a section under path (the root by default)",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		var path []int
		var name string
		if len(args) > 1 {
			if path, err = parsePath(args[1]); err != nil {
				return err
			}
		}
		if len(args) > 2 {
			name = args[2]
		}
		if _, err := checkPath(root, path); err != nil {
			return err
		}
		return d.AddSection(ctx, path, name)
	},
}

var sectionRenameCmd = &cobra.Command{
	Use:   "rename <collection> <path> <name>",
	Short: "Rename a section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		path, err := parsePath(args[1])
		if err != nil {
			return err
		}
		if _, err := checkPath(root, path); err != nil {
			return err
		}
		ok, err := d.RenameSection(cmd.Context(), path, args[2])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot rename to %q", args[2])
		}
		return nil
	},
}

var sectionRemoveCmd = &cobra.Command{
	Use:   "remove <collection> <path>",
	Short: "Remove a section and everything in it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		path, err := parsePath(args[1])
		if err != nil {
			return err
		}
		if len(path) == 0 {
			return fmt.Errorf("the root section cannot be removed; delete the collection instead")
		}
		section, err := checkPath(root, path)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Remove section %q and its %d item(s)?", section.Name, section.CountItems())) {
			return nil
		}
		return d.RemoveSection(cmd.Context(), path)
	},
}

var sectionMoveCmd = &cobra.Command{
	Use:   "move <collection> <parent path> <from> <to>",
	Short: "Reorder the subsections of a section",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		path, from, to, err := parseMove(args[1:])
		if err != nil {
			return err
		}
		parent, err := checkPath(root, path)
		if err != nil {
			return err
		}
		if from >= len(parent.Sections) {
			return fmt.Errorf("section has %d subsections", len(parent.Sections))
		}
		return d.MoveSection(cmd.Context(), path, from, to)
	},
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <collection> <route>",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		route, err := parseRoute(args[1])
		if err != nil {
			return err
		}
		if err := checkRoute(root, route); err != nil {
			return err
		}
		item, err := d.RemoveItem(cmd.Context(), route)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", item.URL)
		return nil
	},
}

var itemInsertCmd = &cobra.Command{
	Use:   "insert <collection> <path> <index> <url> [title]",
	Short: "Insert an item into a section",
	Args:  cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		path, err := parsePath(args[1])
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[2])
		}
		if _, err := checkPath(root, path); err != nil {
			return err
		}
		item := domain.Item{URL: args[3], Time: time.Now().UnixMilli()}
		if len(args) > 4 {
			item.Title = args[4]
		}
		return d.InsertItem(cmd.Context(), path, index, item)
	},
}

var itemMoveCmd = &cobra.Command{
	Use:   "move <collection> <route> <section path>",
	Short: "Move an item to the top of another section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		route, err := parseRoute(args[1])
		if err != nil {
			return err
		}
		dest, err := parsePath(args[2])
		if err != nil {
			return err
		}
		if err := checkRoute(root, route); err != nil {
			return err
		}
		if _, err := checkPath(root, dest); err != nil {
			return err
		}
		return d.MoveItem(cmd.Context(), route, dest)
	},
}

var itemReorderCmd = &cobra.Command{
	Use:   "reorder <collection> <path> <from> <to>",
	Short: "Reorder the items of a section",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, root, err := loadTree(cmd, args[0])
		if err != nil {
			return err
		}
		path, from, to, err := parseMove(args[1:])
		if err != nil {
			return err
		}
		section, err := checkPath(root, path)
		if err != nil {
			return err
		}
		if from >= len(section.Items) {
			return fmt.Errorf("section has %d items", len(section.Items))
		}
		return d.MoveItemWithin(cmd.Context(), path, from, to)
	},
}

func init() {
	sectionCmd.AddCommand(sectionAddCmd, sectionRenameCmd, sectionRemoveCmd, sectionMoveCmd)
	itemCmd.AddCommand(itemRemoveCmd, itemInsertCmd, itemMoveCmd, itemReorderCmd)
	rootCmd.AddCommand(sectionCmd, itemCmd)
}

func loadTree(cmd *cobra.Command, ref string) (*divider.Divider, domain.Section, error) {
	ctx := cmd.Context()
	d, err := current.resolve(ctx, ref)
	if err != nil {
		return nil, domain.Section{}, err
	}
	root, err := d.Root(ctx)
	if err != nil {
		return nil, domain.Section{}, err
	}
	return d, root, nil
}

func parseMove(args []string) (path []int, from, to int, err error) {
	if path, err = parsePath(args[0]); err != nil {
		return nil, 0, 0, err
	}
	if from, err = strconv.Atoi(args[1]); err != nil || from < 0 {
		return nil, 0, 0, fmt.Errorf("invalid index %q", args[1])
	}
	if to, err = strconv.Atoi(args[2]); err != nil || to < 0 {
		return nil, 0, 0, fmt.Errorf("invalid index %q", args[2])
	}
	return path, from, to, nil
}
