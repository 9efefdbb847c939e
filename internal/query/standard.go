package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mmcdole/tabstash/internal/domain"
)

// SyntaxError reports a query term that could not be parsed
type SyntaxError struct {
	Query  string
	Offset int // Byte offset of the term in Query
	Term   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("term %q at offset %d is invalid: %s", e.Term, e.Offset, e.Reason)
}

// TermKind distinguishes parsed terms
type TermKind int

const (
	TermText TermKind = iota
	TermRegex
)

// Term is one parsed query term
type Term struct {
	Kind    TermKind
	Text    string         // Simplified text for TermText
	Regex   *regexp.Regexp // Case-insensitive pattern for TermRegex
	Include bool           // False when the term was prefixed with '-'
}

// Standard is the full query grammar: whitespace separated terms, each a
// bare word, a "quoted phrase" or a /regex/, optionally prefixed with '-'
// to exclude it. Every term must hold for an item to match.
type Standard struct {
	terms []Term
}

// NewStandard parses text. Any span that is not a valid term fails the
// whole parse.
func NewStandard(text string) (Matcher, error) {
	terms, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &Standard{terms: terms}, nil
}

func (m *Standard) Description() string {
	return `Matches when all of the space separated terms are found in the title.

Surrounding a term with double quotes allows the term to include spaces.

A term beginning and ending with '/' will be used as regex against the title.

Any term may be prefixed with '-' to ensure it is not present in title.`
}

// Terms returns the parsed terms
func (m *Standard) Terms() []Term {
	return m.terms
}

func (m *Standard) Match(item domain.Item, _ []string) bool {
	content := Simplify(item.Title)

	for _, term := range m.terms {
		var conforms bool
		switch term.Kind {
		case TermText:
			conforms = strings.Contains(content, term.Text)
		case TermRegex:
			conforms = term.Regex.MatchString(content)
		}

		if conforms != term.Include {
			return false
		}
	}
	return true
}

// Parse splits text into terms, left to right
func Parse(text string) ([]Term, error) {
	var terms []Term

	i := 0
	for {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i >= len(text) {
			return terms, nil
		}

		start := i
		term := Term{Include: true}
		if text[i] == '-' {
			term.Include = false
			i++
		}

		end, err := scanTerm(text, i, &term)
		if err != nil {
			return nil, &SyntaxError{
				Query:  text,
				Offset: start,
				Term:   text[start:spanEnd(text, start)],
				Reason: err.Error(),
			}
		}
		if end < len(text) && !isSpace(text[end]) {
			return nil, &SyntaxError{
				Query:  text,
				Offset: start,
				Term:   text[start:spanEnd(text, start)],
				Reason: "term must be followed by whitespace",
			}
		}

		terms = append(terms, term)
		i = end
	}
}

// scanTerm parses the term body starting at i and returns where it ends
func scanTerm(text string, i int, term *Term) (int, error) {
	if i >= len(text) || isSpace(text[i]) {
		return i, fmt.Errorf("empty term")
	}

	switch text[i] {
	case '"':
		body, end, err := scanDelimited(text, i, '"')
		if err != nil {
			return end, err
		}
		term.Kind = TermText
		term.Text = Simplify(unescape(body))
		return end, nil

	case '/':
		body, end, err := scanDelimited(text, i, '/')
		if err != nil {
			return end, err
		}
		re, err := regexp.Compile("(?i)" + body)
		if err != nil {
			return end, err
		}
		term.Kind = TermRegex
		term.Regex = re
		return end, nil

	default:
		end := i
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !isWordRune(r) {
				break
			}
			end += size
		}
		if end == i {
			r, _ := utf8.DecodeRuneInString(text[i:])
			return i, fmt.Errorf("unexpected character %q", r)
		}
		term.Kind = TermText
		term.Text = Simplify(text[i:end])
		return end, nil
	}
}

// scanDelimited reads a non-empty body between delim characters starting
// at text[i] == delim. A backslash escapes the following byte.
func scanDelimited(text string, i int, delim byte) (string, int, error) {
	j := i + 1
	for j < len(text) {
		switch text[j] {
		case '\\':
			if j+1 >= len(text) {
				return "", j, fmt.Errorf("dangling escape")
			}
			j += 2
			continue
		case delim:
			if j == i+1 {
				return "", j + 1, fmt.Errorf("empty %c%c term", delim, delim)
			}
			return text[i+1 : j], j + 1, nil
		}
		j++
	}
	return "", j, fmt.Errorf("missing closing %c", delim)
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func spanEnd(text string, start int) int {
	end := start
	for end < len(text) && !isSpace(text[end]) {
		end++
	}
	return end
}

func isSpace(c byte) bool {
	return c < 0x80 && unicode.IsSpace(rune(c))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
