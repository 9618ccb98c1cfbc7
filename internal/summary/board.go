package summary

import "github.com/MikeSquared-Agency/docket/internal/hearing"

// BoardRow is one court's line on the daily status board.
type BoardRow struct {
	Court   string `json:"court"`
	AMLabel string `json:"am_label"`
	PMLabel string `json:"pm_label"`
}

// Active reports whether the court sits in either session.
func (b BoardRow) Active() bool {
	return b.AMLabel != "" || b.PMLabel != ""
}

// Board lays out one row per court in courts order with its AM and PM labels.
func Board(courts []string, am, pm []hearing.AggregatedRow) []BoardRow {
	amLabels := labelsByCourt(am)
	pmLabels := labelsByCourt(pm)

	rows := make([]BoardRow, 0, len(courts))
	for _, court := range courts {
		rows = append(rows, BoardRow{
			Court:   court,
			AMLabel: amLabels[court],
			PMLabel: pmLabels[court],
		})
	}
	return rows
}

// ActiveRows filters the board to courts sitting in either session.
func ActiveRows(board []BoardRow) []BoardRow {
	var out []BoardRow
	for _, b := range board {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out
}

// PMFollowUp lists the courts to track into the afternoon: every PM row with
// records, then AM rows carrying hearings or unclassified items. A court
// appears once, at its first position.
func PMFollowUp(am, pm []hearing.AggregatedRow) []hearing.AggregatedRow {
	var out []hearing.AggregatedRow
	seen := make(map[string]bool)
	add := func(r hearing.AggregatedRow) {
		if seen[r.Court] {
			return
		}
		seen[r.Court] = true
		out = append(out, r)
	}
	for _, r := range pm {
		if r.Total() > 0 {
			add(r)
		}
	}
	for _, r := range am {
		if r.HearingCount > 0 || r.UnknownCount > 0 {
			add(r)
		}
	}
	return out
}

func labelsByCourt(rows []hearing.AggregatedRow) map[string]string {
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.Court] = r.Label
	}
	return m
}
