package summary

import (
	"errors"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
)

// DefaultCutoff is the first minute of the afternoon session.
var DefaultCutoff = hearing.MustParseClock("12:30 PM")

// Split partitions records into AM (strictly before cutoff) and PM (at or
// after cutoff). An unparsable time fails the whole split.
func Split(records []hearing.Record, cutoff hearing.Clock) (am, pm []hearing.Record, err error) {
	for _, r := range records {
		clock, perr := hearing.ParseClock(r.Time)
		if perr != nil {
			var pe *hearing.ParseError
			if errors.As(perr, &pe) {
				pe.Court = r.Court
			}
			return nil, nil, perr
		}
		if clock < cutoff {
			am = append(am, r)
		} else {
			pm = append(pm, r)
		}
	}
	return am, pm, nil
}
