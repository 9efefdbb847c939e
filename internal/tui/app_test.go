package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
	"github.com/mmcdole/tabstash/internal/query"
	"github.com/mmcdole/tabstash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripTree() domain.Section {
	return domain.Section{
		Name: "Trip",
		Sections: []domain.Section{
			{Name: "Hotels", Items: []domain.Item{{Title: "Hôtel Lutetia", URL: "https://lutetia.example"}}},
			{Name: "Empty"},
		},
		Items: []domain.Item{
			{Title: "Flights", URL: "https://flights.example"},
			{Title: "Hotel map", URL: "https://maps.example"},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	reg := divider.NewRegistry(store.NewMemory(), nil, nil, nil)
	d, err := reg.Create(context.Background(), "Trip")
	require.NoError(t, err)
	require.NoError(t, d.SetRoot(context.Background(), tripTree()))

	m := NewModel(d, nil, query.DefaultTag, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	updated, _ = updated.Update(TreeLoadedMsg{Root: tripTree()})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func itemTitles(rows []row) []string {
	var titles []string
	for _, r := range rows {
		if r.IsItem {
			titles = append(titles, r.Item.Title)
		}
	}
	return titles
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(tripTree(), nil)
	require.Len(t, rows, 5)

	assert.Equal(t, "Hotels", rows[0].Section)
	assert.Equal(t, domain.Route{Path: []int{0}, Index: 0}, rows[1].Route)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, "Empty", rows[2].Section)
	assert.Equal(t, domain.Route{Index: 1}, rows[4].Route)
}

func TestBuildRows_FilterHidesEmptySections(t *testing.T) {
	m, err := query.New(query.DefaultTag, "hotel")
	require.NoError(t, err)

	rows := buildRows(tripTree(), m)
	assert.Equal(t, []string{"Hôtel Lutetia", "Hotel map"}, itemTitles(rows))
	assert.Equal(t, "Hotels", rows[0].Section)
	for _, r := range rows {
		assert.NotEqual(t, "Empty", r.Section)
	}
}

func TestModel_FilterTyping(t *testing.T) {
	m := newTestModel(t)
	m = send(m, keyRunes("/"))
	require.True(t, m.FilterInput.Focused())

	m = send(m, keyRunes("m"), keyRunes("a"), keyRunes("p"))
	assert.Equal(t, "map", m.FilterInput.Value())
	assert.Equal(t, []string{"Hotel map"}, itemTitles(m.Rows))

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.FilterInput.Focused())
	assert.Len(t, itemTitles(m.Rows), 3)
}

func TestModel_SyntaxErrorHidesNothing(t *testing.T) {
	m := newTestModel(t)
	m = send(m, keyRunes("/"), keyRunes(`"`), keyRunes("x"))

	var syntaxErr *query.SyntaxError
	assert.ErrorAs(t, m.FilterErr, &syntaxErr)
	assert.Nil(t, m.Matcher)
	assert.Len(t, itemTitles(m.Rows), 3)
	assert.Contains(t, m.View(), "✗")
}

func TestModel_CycleTag(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "standard", m.Tag())

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, query.Tags()[1], m.Tag())

	for range query.Tags()[1:] {
		m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, "standard", m.Tag(), "cycling wraps around")
}

func TestModel_CursorBounds(t *testing.T) {
	m := newTestModel(t)
	m = send(m, keyRunes("k"))
	assert.Equal(t, 0, m.Cursor)

	m = send(m, keyRunes("G"))
	assert.Equal(t, len(m.Rows)-1, m.Cursor)

	m = send(m, keyRunes("j"))
	assert.Equal(t, len(m.Rows)-1, m.Cursor)
}

func TestModel_ExpandOnSectionDoesNothing(t *testing.T) {
	m := newTestModel(t)
	require.False(t, m.Rows[0].IsItem)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m = send(m, keyRunes("j"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestModel_ExpandStaleRow(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string // Selected item title
	}{
		{"route now out of range", []string{"G"}, "Hotel map"},
		{"route now holds another item", []string{"G", "k"}, "Flights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := newTestModel(t)
			for _, k := range tt.keys {
				m = send(m, keyRunes(k))
			}
			r, ok := m.selected()
			require.True(t, ok)
			require.Equal(t, tt.want, r.Item.Title)

			// Another surface removes the first top-level item
			_, err := m.Divider.RemoveItem(ctx, domain.Route{Index: 0})
			require.NoError(t, err)

			_, cmd := m.Update(keyRunes("x"))
			require.NotNil(t, cmd)
			msg := cmd()

			errMsg, ok := msg.(ErrMsg)
			require.True(t, ok, "got %T", msg)
			assert.ErrorIs(t, errMsg.Err, ErrStaleRoute)

			root, err := m.Divider.Root(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Item{{Title: "Hotel map", URL: "https://maps.example"}}, root.Items)

			updated, reload := m.Update(msg)
			assert.Equal(t, ErrStaleRoute.Error(), updated.(Model).StatusMsg)
			assert.NotNil(t, reload)
		})
	}
}

func TestModel_Events(t *testing.T) {
	m := newTestModel(t)

	details := []byte(`{"oldName":"Trip","newName":"Journey"}`)
	m = send(m, CollectionEventMsg{Event: events.Event{Name: domain.EventRename, Details: details}})
	assert.Equal(t, "Journey", m.Root.Name)

	updated, cmd := m.Update(CollectionEventMsg{Event: events.Event{Name: domain.EventDelete, Details: []byte(`{"index":0}`)}})
	m = updated.(Model)
	assert.True(t, m.Deleted)
	assert.NotNil(t, cmd)
}

func TestEventObserver(t *testing.T) {
	b := events.NewBroadcaster("divider#x", nil, nil, domain.CollectionEvents...)
	o := NewEventObserver(b, domain.EventChangeContents)

	require.NoError(t, b.Fire(context.Background(), domain.EventChangeContents, nil))
	e := <-o.Events()
	assert.Equal(t, domain.EventChangeContents, e.Name)

	o.Close()
	require.NoError(t, b.Fire(context.Background(), domain.EventChangeContents, nil))
	select {
	case <-o.Events():
		t.Fatal("closed observer still receives events")
	default:
	}
}
