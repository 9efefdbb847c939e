package query

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/tabstash/internal/domain"
)

// Linear matches titles containing the query
type Linear struct {
	query string
}

func NewLinear(text string) (Matcher, error) {
	return &Linear{query: Simplify(text)}, nil
}

func (m *Linear) Description() string {
	return "Search for items with the query contained in them"
}

func (m *Linear) Match(item domain.Item, _ []string) bool {
	return strings.Contains(Simplify(item.Title), m.query)
}

// Not matches titles that do not contain the query
type Not struct {
	Linear
}

func NewNot(text string) (Matcher, error) {
	return &Not{Linear{query: Simplify(text)}}, nil
}

func (m *Not) Description() string {
	return "Matches when the phrase is not contained in the title"
}

func (m *Not) Match(item domain.Item, path []string) bool {
	return !m.Linear.Match(item, path)
}

// URL matches items whose address contains the query
type URL struct {
	query string
}

func NewURL(text string) (Matcher, error) {
	return &URL{query: Simplify(text)}, nil
}

func (m *URL) Description() string {
	return "Matches when the phrase is contained in the url"
}

func (m *URL) Match(item domain.Item, _ []string) bool {
	return strings.Contains(Simplify(item.URL), m.query)
}

// Regex applies a regular expression to the simplified title. The pattern
// is used as written, so it sees lowercase text.
type Regex struct {
	re *regexp.Regexp
}

func NewRegex(text string) (Matcher, error) {
	re, err := regexp.Compile(text)
	if err != nil {
		return nil, &SyntaxError{Query: text, Term: text, Reason: err.Error()}
	}
	return &Regex{re: re}, nil
}

func (m *Regex) Description() string {
	return "Matches when regex is applicable to the title"
}

func (m *Regex) Match(item domain.Item, _ []string) bool {
	return m.re.MatchString(Simplify(item.Title))
}

// Set requires every whitespace-separated term in the title; a term
// prefixed with '-' must be absent. No quoting or regex terms.
type Set struct {
	terms []string
}

func NewSet(text string) (Matcher, error) {
	return &Set{terms: strings.Fields(Simplify(text))}, nil
}

func (m *Set) Description() string {
	return "Matches when all of the space separated terms are found in the title"
}

func (m *Set) Match(item domain.Item, _ []string) bool {
	title := Simplify(item.Title)

	for _, term := range m.terms {
		if excluded, ok := strings.CutPrefix(term, "-"); ok {
			if excluded != "" && strings.Contains(title, excluded) {
				return false
			}
		} else if !strings.Contains(title, term) {
			return false
		}
	}
	return true
}

// Fuzzy matches titles containing the query's characters in order
type Fuzzy struct {
	query string
}

func NewFuzzy(text string) (Matcher, error) {
	return &Fuzzy{query: Simplify(strings.TrimSpace(text))}, nil
}

func (m *Fuzzy) Description() string {
	return "Matches when the characters of the query appear in order in the title"
}

func (m *Fuzzy) Match(item domain.Item, _ []string) bool {
	return fuzzy.Match(m.query, Simplify(item.Title))
}
