package summary

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
)

const fieldSep = ", "

// Aggregate groups one session's records by court, in first-seen court order.
func Aggregate(session hearing.Session, records []hearing.Record) []hearing.AggregatedRow {
	var order []string
	groups := make(map[string][]hearing.Record)
	for _, r := range records {
		if _, ok := groups[r.Court]; !ok {
			order = append(order, r.Court)
		}
		groups[r.Court] = append(groups[r.Court], r)
	}

	rows := make([]hearing.AggregatedRow, 0, len(order))
	for _, court := range order {
		rows = append(rows, buildRow(court, session, groups[court]))
	}
	return rows
}

func buildRow(court string, session hearing.Session, records []hearing.Record) hearing.AggregatedRow {
	row := hearing.AggregatedRow{
		Court:   court,
		Session: session,
		Records: make([]hearing.Record, len(records)),
	}
	copy(row.Records, records)

	times := make([]string, len(records))
	types := make([]string, len(records))
	accused := make([]string, len(records))
	for i, r := range records {
		switch r.Indicator {
		case hearing.IndicatorMention:
			row.MentionCount++
		case hearing.IndicatorHearing:
			row.HearingCount++
		default:
			row.UnknownCount++
		}
		times[i] = r.Time
		types[i] = r.HearingType
		accused[i] = r.Accused
	}

	row.Times = strings.Join(times, fieldSep)
	row.HearingTypes = strings.Join(types, fieldSep)
	row.Accused = strings.Join(accused, fieldSep)
	row.Label = Label(row.MentionCount, row.HearingCount, row.UnknownCount)
	return row
}

// Label renders counts as e.g. "3M 1H 2?", omitting zero counts.
func Label(mention, hearingCount, unknown int) string {
	var parts []string
	if mention > 0 {
		parts = append(parts, fmt.Sprintf("%dM", mention))
	}
	if hearingCount > 0 {
		parts = append(parts, fmt.Sprintf("%dH", hearingCount))
	}
	if unknown > 0 {
		parts = append(parts, fmt.Sprintf("%d?", unknown))
	}
	return strings.Join(parts, " ")
}

// Flatten returns the records behind rows, in row order.
func Flatten(rows []hearing.AggregatedRow) []hearing.Record {
	var out []hearing.Record
	for _, row := range rows {
		out = append(out, row.Records...)
	}
	return out
}
