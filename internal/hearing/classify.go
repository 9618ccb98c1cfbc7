package hearing

import "strings"

// Classify maps a free-text hearing type to an indicator.
// Matching is case-sensitive and "Mention" takes precedence over the hearing keywords.
func Classify(hearingType string) Indicator {
	switch {
	case strings.Contains(hearingType, "Mention"):
		return IndicatorMention
	case strings.Contains(hearingType, "Trial"),
		strings.Contains(hearingType, "Heard"),
		strings.Contains(hearingType, "Hearing"):
		return IndicatorHearing
	default:
		return IndicatorUnknown
	}
}

// NewRecord builds a classified record for a court.
func NewRecord(court, clock, hearingType, accused string) Record {
	return Record{
		Court:       court,
		Time:        clock,
		HearingType: hearingType,
		Accused:     accused,
		Indicator:   Classify(hearingType),
	}
}
