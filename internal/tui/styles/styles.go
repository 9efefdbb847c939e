package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Firebrick  = lipgloss.Color("#B22222")
	Crimson    = lipgloss.Color("#DC143C")
	SlateBlue  = lipgloss.Color("#6A5ACD")
	SlateDark  = lipgloss.Color("#292E3E")
	SlateLight = lipgloss.Color("#2C3348")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#E6DBDB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	CountStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Italic(true)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(White)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(SlateBlue).
				Bold(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Firebrick).
			Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(SlateBlue)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Truncate shortens s to at most width cells, ending in an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "…"
}

// Segment is a run of row text. A nil Color uses the row default.
type Segment struct {
	Text  string
	Color lipgloss.TerminalColor
}

// Row renders segments as one line padded to width with a one cell
// margin. Every cell of a selected row shares the selection background,
// so each segment is rendered with the full style rather than nested.
func Row(segments []Segment, selected bool, width int) string {
	base := lipgloss.NewStyle()
	text := lipgloss.TerminalColor(LightGray)
	if selected {
		base = base.Background(SlateLight)
		text = White
	}

	var b strings.Builder
	b.WriteString(base.Render(" "))
	used := 0
	for _, seg := range segments {
		color := seg.Color
		if color == nil {
			color = text
		}
		b.WriteString(base.Foreground(color).Render(seg.Text))
		used += lipgloss.Width(seg.Text)
	}
	if fill := width - used - 2; fill > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", fill)))
	}
	b.WriteString(base.Render(" "))
	return b.String()
}
