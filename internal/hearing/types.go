package hearing

// Indicator classifies a hearing record.
type Indicator string

const (
	IndicatorMention Indicator = "M"
	IndicatorHearing Indicator = "H"
	IndicatorUnknown Indicator = "U"
)

// Session is the half of the court day a record falls in.
type Session string

const (
	SessionAM Session = "AM"
	SessionPM Session = "PM"
)

// DefaultCourts is the fixed list of court codes polled each run.
var DefaultCourts = []string{
	"4A", "4B", "7A", "7B", "8A", "10A", "10B", "10C", "10D", "11A", "11B", "11C", "11D",
	"13A", "13B", "13C", "13D", "15A", "15B", "15C", "18A", "18B", "18C",
	"19A", "19B", "19C", "19D", "24A", "24B", "24C", "24D",
	"29A", "29B", "29C", "29D", "30A", "30B", "30C", "30D",
	"32A", "32B", "32C", "32D",
}

// Record is one accused/hearing-type/time triple from a single court's listing.
type Record struct {
	Court       string    `json:"court"`
	Time        string    `json:"time"` // raw "h:mm AM/PM" token
	HearingType string    `json:"hearing_type"`
	Accused     string    `json:"accused"`
	Indicator   Indicator `json:"indicator"`
}

// AggregatedRow summarises one court's records within one session.
type AggregatedRow struct {
	Court        string  `json:"court"`
	Session      Session `json:"session"`
	MentionCount int     `json:"mention_count"`
	HearingCount int     `json:"hearing_count"`
	UnknownCount int     `json:"unknown_count"`
	Label        string  `json:"label"`
	Times        string  `json:"times"`
	HearingTypes string  `json:"hearing_types"`
	Accused      string  `json:"accused"`

	Records []Record `json:"-"`
}

// Total returns the number of records behind the row.
func (r AggregatedRow) Total() int {
	return r.MentionCount + r.HearingCount + r.UnknownCount
}
