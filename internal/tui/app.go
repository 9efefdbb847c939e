package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
	"github.com/mmcdole/tabstash/internal/query"
	"github.com/mmcdole/tabstash/internal/tui/styles"
)

// Vertical chrome: header, filter line, status line, help line
const ChromeHeight = 4

const statusDuration = 3 * time.Second

// Model is the Bubble Tea model showing one collection
type Model struct {
	Divider *divider.Divider
	Keys    KeyMap
	events  <-chan events.Event
	logger  *slog.Logger

	// Data
	Root domain.Section
	Rows []row

	// Dimensions
	Width  int
	Height int

	// Selection
	Cursor int
	Offset int

	// Filter state
	FilterInput textinput.Model
	Tags        []string
	TagIndex    int
	Matcher     query.Matcher
	FilterErr   error

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Deleted     bool
}

// NewModel creates a model for d. eventCh delivers the collection's
// events; tag selects the initial matcher.
func NewModel(d *divider.Divider, eventCh <-chan events.Event, tag string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.PlaceholderStyle = styles.DimStyle

	tags := query.Tags()
	tagIndex := 0
	for i, t := range tags {
		if t == tag {
			tagIndex = i
		}
	}

	return Model{
		Divider:     d,
		Keys:        DefaultKeyMap(),
		events:      eventCh,
		logger:      logger,
		FilterInput: ti,
		Tags:        tags,
		TagIndex:    tagIndex,
	}
}

// Init loads the tree and starts listening for events
func (m Model) Init() tea.Cmd {
	return tea.Batch(LoadTreeCmd(m.Divider), WaitForEventCmd(m.events))
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.FilterInput.Width = max(10, msg.Width-20)
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TreeLoadedMsg:
		m.Root = msg.Root
		m.rebuild()
		return m, nil

	case CollectionEventMsg:
		return m.handleEvent(msg.Event)

	case ExpandedMsg:
		verb := "Opened"
		if msg.Destructive {
			verb = "Took"
		}
		return m, m.setStatus(fmt.Sprintf("%s %s", verb, msg.Item.Title), false)

	case ErrMsg:
		if errors.Is(msg.Err, ErrStaleRoute) {
			m.logger.Debug("selected row is stale", "context", msg.Context)
			return m, tea.Batch(m.setStatus(msg.Err.Error(), true), LoadTreeCmd(m.Divider))
		}
		m.logger.Error("tui operation failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleEvent(e events.Event) (tea.Model, tea.Cmd) {
	next := WaitForEventCmd(m.events)
	m.logger.Debug("collection event", "event", e.Name)

	switch e.Name {
	case domain.EventDelete:
		m.Deleted = true
		m.Rows = nil
		return m, tea.Batch(m.setStatus("Collection was deleted", true), tea.Quit)
	case domain.EventRename:
		var details domain.RenameDetails
		if err := e.Decode(&details); err == nil {
			m.Root.Name = details.NewName
		}
		return m, next
	default:
		return m, tea.Batch(LoadTreeCmd(m.Divider), next)
	}
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter typing mode
	if m.FilterInput.Focused() {
		switch {
		case key.Matches(msg, m.Keys.Escape):
			m.clearFilter()
			return m, nil
		case key.Matches(msg, m.Keys.Expand):
			m.FilterInput.Blur()
			return m, nil
		case key.Matches(msg, m.Keys.CycleTag):
			m.cycleTag()
			return m, nil
		}

		var cmd tea.Cmd
		m.FilterInput, cmd = m.FilterInput.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.Keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.Keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.Keys.Home):
		m.moveCursor(-len(m.Rows))
	case key.Matches(msg, m.Keys.End):
		m.moveCursor(len(m.Rows))
	case key.Matches(msg, m.Keys.Filter):
		return m, m.FilterInput.Focus()
	case key.Matches(msg, m.Keys.CycleTag):
		m.cycleTag()
	case key.Matches(msg, m.Keys.Escape):
		m.clearFilter()
	case key.Matches(msg, m.Keys.Refresh):
		return m, LoadTreeCmd(m.Divider)
	case key.Matches(msg, m.Keys.Expand):
		return m, m.expandSelected(false, false)
	case key.Matches(msg, m.Keys.ExpandDirect):
		return m, m.expandSelected(true, false)
	case key.Matches(msg, m.Keys.Take):
		return m, m.expandSelected(false, true)
	}
	return m, nil
}

// expandSelected opens the selected item. Routes come from the current
// snapshot; a destructive expand triggers a reload through changeContents.
func (m Model) expandSelected(direct, destructive bool) tea.Cmd {
	r, ok := m.selected()
	if !ok || !r.IsItem {
		return nil
	}
	return ExpandCmd(m.Divider, r.Route, r.Item, direct, destructive)
}

func (m Model) selected() (row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return row{}, false
	}
	return m.Rows[m.Cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.Cursor = max(0, min(m.Cursor+delta, len(m.Rows)-1))
	m.ensureVisible()
}

func (m *Model) cycleTag() {
	if len(m.Tags) == 0 {
		return
	}
	m.TagIndex = (m.TagIndex + 1) % len(m.Tags)
	m.applyFilter()
}

// Tag returns the active matcher tag
func (m Model) Tag() string {
	if len(m.Tags) == 0 {
		return query.DefaultTag
	}
	return m.Tags[m.TagIndex]
}

// applyFilter rebuilds the matcher from the filter text. A query that does
// not parse hides nothing.
func (m *Model) applyFilter() {
	matcher, err := query.New(m.Tag(), m.FilterInput.Value())
	m.Matcher = matcher
	m.FilterErr = err
	m.rebuild()
}

func (m *Model) clearFilter() {
	m.FilterInput.SetValue("")
	m.FilterInput.Blur()
	m.Matcher = nil
	m.FilterErr = nil
	m.rebuild()
}

func (m *Model) rebuild() {
	m.Rows = buildRows(m.Root, m.Matcher)
	m.Cursor = max(0, min(m.Cursor, len(m.Rows)-1))
	m.ensureVisible()
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusDuration)
}

func (m Model) listHeight() int {
	return max(1, m.Height-ChromeHeight)
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	} else if m.Cursor >= m.Offset+h {
		m.Offset = m.Cursor - h + 1
	}
	m.Offset = max(0, min(m.Offset, len(m.Rows)-1))
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	header := styles.TitleStyle.Render(m.Root.Name)
	count := styles.CountStyle.Render(fmt.Sprintf(" %d items", m.Root.CountItems()))
	b.WriteString(header + count + "\n")

	end := min(len(m.Rows), m.Offset+m.listHeight())
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(m.Rows[i], i == m.Cursor) + "\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(styles.DimStyle.Render("  nothing to show") + "\n")
	}

	b.WriteString(m.renderFilter() + "\n")

	status := ""
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			status = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			status = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}
	b.WriteString(status + "\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	indent := strings.Repeat("  ", r.Depth)
	width := max(20, m.Width)

	if !r.IsItem {
		return styles.Row([]styles.Segment{
			{Text: indent + "▾ " + r.Section, Color: styles.Crimson},
		}, selected, width)
	}

	title := r.Item.Title
	if title == "" {
		title = divider.UnknownTitle
	}
	title = styles.Truncate(title, width/2)
	rest := width - lipgloss.Width(indent+title) - 8
	return styles.Row([]styles.Segment{
		{Text: indent + "• " + title + " "},
		{Text: styles.Truncate(r.Item.URL, max(0, rest)), Color: styles.DimGray},
	}, selected, width)
}

func (m Model) renderFilter() string {
	tag := styles.TagStyle.Render(m.Tag())
	line := tag + " " + m.FilterInput.View()
	if m.FilterErr != nil {
		line += " " + styles.ErrorStyle.Render("✗ "+m.FilterErr.Error())
	}
	return line
}

func (m Model) renderHelp() string {
	var parts []string
	for _, b := range m.Keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// Run shows d until the user quits or the collection is deleted
func Run(ctx context.Context, d *divider.Divider, tag string, logger *slog.Logger) error {
	observer := NewEventObserver(d.Events(),
		domain.EventChangeContents, domain.EventRename, domain.EventDelete)
	defer observer.Close()

	p := tea.NewProgram(NewModel(d, observer.Events(), tag, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
