package extractor

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

type listing struct {
	times   []string
	types   []string
	headers []string
}

func buildPayload(t *testing.T, l listing) []byte {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<div class="hearing-list">`)
	for _, tm := range l.times {
		sb.WriteString(`<div class="hearing-time"><span>` + tm + `</span></div>`)
	}
	for _, ht := range l.types {
		sb.WriteString(`<div class="hearing-type badge">` + ht + `</div>`)
	}
	for _, h := range l.headers {
		sb.WriteString(`<h4>` + h + `</h4>`)
	}
	sb.WriteString(`</div>`)

	payload, err := json.Marshal(map[string]any{
		"listPartialView": sb.String(),
		"totalCount":      len(l.headers),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestExtract_TruncatesToShortest(t *testing.T) {
	payload := buildPayload(t, listing{
		times:   []string{"9:30 AM", "10:00 AM", "2:30 PM"},
		types:   []string{"Mention", "Trial"},
		headers: []string{"PP v. Alice Lim", "PP v. Bob Ng", "PP v. Carol Teo", "PP v. Dan Wu"},
	})

	entries := slices.Collect(Extract(payload))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	want := []Entry{
		{Time: "9:30 AM", HearingType: "Mention", Accused: "Alice Lim"},
		{Time: "10:00 AM", HearingType: "Trial", Accused: "Bob Ng"},
	}
	for i, w := range want {
		if entries[i] != w {
			t.Errorf("entry[%d] = %+v, want %+v", i, entries[i], w)
		}
	}
}

func TestParse_Dropped(t *testing.T) {
	l := Parse(buildPayload(t, listing{
		times:   []string{"9:30 AM", "10:00 AM", "2:30 PM"},
		types:   []string{"Mention", "Trial"},
		headers: []string{"PP v. A", "PP v. B", "PP v. C", "PP v. D"},
	}))
	if l.Len() != 2 {
		t.Errorf("expected len 2, got %d", l.Len())
	}
	if l.Dropped() != 3 {
		t.Errorf("expected 3 dropped, got %d", l.Dropped())
	}
}

func TestExtract_HeadersWithoutSeparatorAreSkipped(t *testing.T) {
	payload := buildPayload(t, listing{
		times:   []string{"9:30 AM"},
		types:   []string{"Mention"},
		headers: []string{"Hearing List", "Public Prosecutor v. John Tan"},
	})
	entries := slices.Collect(Extract(payload))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Accused != "John Tan" {
		t.Errorf("expected John Tan, got %q", entries[0].Accused)
	}
}

func TestExtract_TimeTokenInsideLongerText(t *testing.T) {
	payload := []byte(`{"html":"<p>Listed at 9:05 AM in chambers</p><div class=\"hearing-type\">  Further Mention  </div><h4>\n PP v. Ed Koh \n</h4>"}`)
	entries := slices.Collect(Extract(payload))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Time != "9:05 AM" {
		t.Errorf("expected 9:05 AM, got %q", entries[0].Time)
	}
	if entries[0].HearingType != "Further Mention" {
		t.Errorf("expected trimmed hearing type, got %q", entries[0].HearingType)
	}
	if entries[0].Accused != "Ed Koh" {
		t.Errorf("expected Ed Koh, got %q", entries[0].Accused)
	}
}

func TestExtract_MarkupAcrossMultipleStrings(t *testing.T) {
	payload := []byte(`{"a":"<span>11:00 AM</span>","b":["<div class=\"hearing-type\">Hearing</div>","<h4>PP v. Fay Ong</h4>"]}`)
	entries := slices.Collect(Extract(payload))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].HearingType != "Hearing" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestExtract_EmptyAndGarbage(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte(`{}`), []byte(`{"listPartialView":""}`), []byte(`not json <h4>`)} {
		if n := len(slices.Collect(Extract(payload))); n != 0 {
			t.Errorf("payload %q: expected 0 entries, got %d", payload, n)
		}
	}
}

func TestExtract_StopsEarly(t *testing.T) {
	payload := buildPayload(t, listing{
		times:   []string{"9:30 AM", "10:00 AM"},
		types:   []string{"Mention", "Trial"},
		headers: []string{"PP v. A", "PP v. B"},
	})
	count := 0
	for range Extract(payload) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected to stop after 1, got %d", count)
	}
}

func TestAccusedName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Public Prosecutor v. John Tan", "John Tan"},
		{"Re Application XYZ", "Re Application XYZ"},
		{"PP v.Mary Lee", "Mary Lee"},
		{"PP v. A v. B", "A v. B"},
		{"Trailing v.", "Trailing v."},
	}
	for _, tt := range tests {
		if got := AccusedName(tt.in); got != tt.want {
			t.Errorf("AccusedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
