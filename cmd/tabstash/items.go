package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mmcdole/tabstash/internal/adapter"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/query"
	"github.com/spf13/cobra"
)

var (
	addTitle string
	addMatch string
	addTag   string
)

var addCmd = &cobra.Command{
	Use:   "add <collection> <url>...",
	Short: "Save tabs at the top of a collection",
	Long: `Save one or more tabs at the top of a collection. They keep the order
given: the first url ends up as the collection's first item.

With --match only the urls whose title or address match the query are
saved; the query uses the --tag syntax (see "tabstash filter --help").`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		urls := args[1:]
		if addTitle != "" && len(urls) > 1 {
			return fmt.Errorf("--title applies to a single url")
		}

		m, err := query.New(tagOrDefault(addTag), addMatch)
		if err != nil {
			return err
		}
		n, err := stashURLs(ctx, d, current.launcher, urls, addTitle, m)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d tab(s)\n", n)
		return nil
	},
}

var (
	openDirect bool
	openTake   bool
)

var openCmd = &cobra.Command{
	Use:     "open <collection> <route>",
	Aliases: []string{"expand"},
	Short:   "Open a saved tab",
	Long: `Open the item at route in the browser. --take also removes it from the
collection. Routes are listed by "show --routes" and "filter".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		route, err := parseRoute(args[1])
		if err != nil {
			return err
		}
		root, err := d.Root(ctx)
		if err != nil {
			return err
		}
		if err := checkRoute(root, route); err != nil {
			return err
		}

		item, err := d.Expand(ctx, route, openDirect, openTake)
		if err != nil {
			return err
		}
		fmt.Printf("Opened %s\n", item.URL)
		return nil
	},
}

var filterTag string

var filterCmd = &cobra.Command{
	Use:   "filter <collection> <query>",
	Short: "List the items matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := current.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		m, err := query.New(tagOrDefault(filterTag), args[1])
		if err != nil {
			return err
		}
		root, err := d.Root(ctx)
		if err != nil {
			return err
		}
		return printEntries(root, m)
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "title of the saved tab")
	addCmd.Flags().StringVar(&addMatch, "match", "", "only save urls matching this query")
	addCmd.Flags().StringVar(&addTag, "tag", "", "query syntax for --match")

	openCmd.Flags().BoolVarP(&openDirect, "direct", "d", false, "replace the current tab instead of opening a new one")
	openCmd.Flags().BoolVarP(&openTake, "take", "t", false, "remove the item after opening it")

	filterCmd.Flags().StringVar(&filterTag, "tag", "", "query syntax: "+strings.Join(query.Tags(), ", "))
	filterCmd.Long = "List the items matching a query.\n\n" + describeTags()

	rootCmd.AddCommand(addCmd, openCmd, filterCmd)
}

// stashURLs saves urls at the front of d, first url first. The command
// line stands in for a browser window: each url becomes a view and the
// command itself is the current view. A non-nil m keeps only the urls it
// matches.
func stashURLs(ctx context.Context, d *divider.Divider, l *adapter.Launcher, urls []string, title string, m query.Matcher) (int, error) {
	self := l.AddView("tabstash", "", false, true)
	l.SetCurrent(self.ID)

	if len(urls) == 1 && m == nil {
		v := l.AddView(title, urls[0], true, false)
		return d.Compress(ctx, divider.ViewByID(v.ID))
	}

	// Compress puts each view in front of the previous one, so add them
	// last url first
	for _, u := range slices.Backward(urls) {
		l.AddView(title, u, false, false)
	}
	return d.Compress(ctx, divider.ViewsMatching(func(_, v domain.View) bool {
		return m == nil || m.Match(domain.Item{Title: v.Title, URL: v.URL}, nil)
	}))
}

func tagOrDefault(tag string) string {
	if tag != "" {
		return tag
	}
	if current != nil && current.cfg.Filter.DefaultTag != "" {
		return current.cfg.Filter.DefaultTag
	}
	return query.DefaultTag
}

func describeTags() string {
	var b strings.Builder
	for _, tag := range query.Tags() {
		// Constructors only need some text to describe themselves
		m, err := query.New(tag, "x")
		if err != nil || m == nil {
			continue
		}
		fmt.Fprintf(&b, "%s:\n  %s\n\n", tag, strings.ReplaceAll(m.Description(), "\n", "\n  "))
	}
	return strings.TrimSpace(b.String())
}

// printEntries lists the items of root that m matches, with their routes
func printEntries(root domain.Section, m query.Matcher) error {
	entries := query.Filter(root, m)
	if len(entries) == 0 {
		fmt.Println("No items.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		title := e.Item.Title
		if title == "" {
			title = divider.UnknownTitle
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatRoute(e.Route), sectionLabel(e.Path), title, e.Item.URL)
	}
	return w.Flush()
}

// sectionLabel shows enclosing section names outermost first
func sectionLabel(path []string) string {
	if len(path) == 0 {
		return "-"
	}
	names := make([]string, len(path))
	for i, name := range path {
		names[len(path)-1-i] = name
	}
	return strings.Join(names, " / ")
}
