package divider

import (
	"context"
	"strings"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Text renders the collection as indented plain text
func (d *Divider) Text(ctx context.Context) (string, error) {
	root, err := d.Root(ctx)
	if err != nil {
		return "", err
	}
	return Render(root), nil
}

// Render writes s as "name:" followed by its subsections and then its
// items as "title <url>", each level indented by a tab. Empty subsections
// are left out.
func Render(s domain.Section) string {
	var b strings.Builder
	b.WriteString(s.Name + ":\n")

	for _, sub := range s.Sections {
		if len(sub.Sections) == 0 && len(sub.Items) == 0 {
			continue
		}
		for _, line := range strings.Split(Render(sub), "\n") {
			b.WriteString("\t" + line + "\n")
		}
	}
	for _, item := range s.Items {
		b.WriteString("\t" + item.Title + " <" + item.URL + ">\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
