package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	timePattern    = regexp.MustCompile(`\b(\d{1,2}:\d{2} [AP]M)\b`)
	accusedPattern = regexp.MustCompile(`v\.\s*(.+)`)
)

const hearingTypeClass = "hearing-type"

// Entry is one aligned (time, hearing type, accused) triple. Time is the raw token.
type Entry struct {
	Time        string
	HearingType string
	Accused     string
}

// Listing holds the three independently scanned sequences of one payload.
type Listing struct {
	Times        []string
	HearingTypes []string
	Headers      []string
}

// Len is the number of entries the listing yields: the shortest of the three sequences.
func (l *Listing) Len() int {
	return min(len(l.Times), len(l.HearingTypes), len(l.Headers))
}

// Dropped counts scanned items beyond the aligned length.
func (l *Listing) Dropped() int {
	n := l.Len()
	return len(l.Times) + len(l.HearingTypes) + len(l.Headers) - 3*n
}

// Entries zips the sequences positionally, truncating to the shortest.
func (l *Listing) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i := range l.Len() {
			e := Entry{
				Time:        l.Times[i],
				HearingType: l.HearingTypes[i],
				Accused:     AccusedName(l.Headers[i]),
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Extract lazily parses a hearing-list payload into aligned entries.
func Extract(payload []byte) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range Parse(payload).Entries() {
			if !yield(e) {
				return
			}
		}
	}
}

// Parse scans the markup embedded in payload. It never fails: unreadable
// markup yields an empty listing.
func Parse(payload []byte) *Listing {
	l := &Listing{}
	doc, err := html.Parse(strings.NewReader(markup(payload)))
	if err != nil {
		return l
	}
	l.scan(doc)
	return l
}

func (l *Listing) scan(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if m := timePattern.FindStringSubmatch(n.Data); m != nil {
			l.Times = append(l.Times, m[1])
		}
	case html.ElementNode:
		switch {
		case n.DataAtom == atom.Div && hasClass(n, hearingTypeClass):
			l.HearingTypes = append(l.HearingTypes, strings.TrimSpace(textContent(n)))
		case n.DataAtom == atom.H4:
			if text := strings.TrimSpace(textContent(n)); strings.Contains(text, "v.") {
				l.Headers = append(l.Headers, text)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.scan(c)
	}
}

// AccusedName returns the party named after the first "v." in a case header,
// or the header unchanged when it has none.
func AccusedName(header string) string {
	m := accusedPattern.FindStringSubmatch(header)
	if m == nil {
		return header
	}
	return strings.TrimSpace(m[1])
}

// markup joins the payload's JSON strings in document order. A payload that
// is not JSON is treated as markup as-is.
func markup(payload []byte) string {
	dec := json.NewDecoder(bytes.NewReader(payload))
	var parts []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return string(payload)
		}
		if s, ok := tok.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
