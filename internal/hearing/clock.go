package hearing

import (
	"fmt"
	"time"
)

const clockLayout = "3:04 PM"

// Clock is a wall-clock time of day, stored as minutes after midnight.
type Clock int

// ParseError reports a record time that does not match the "h:mm AM/PM" layout.
type ParseError struct {
	Court string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Court != "" {
		return fmt.Sprintf("court %s: parse time %q: %v", e.Court, e.Value, e.Err)
	}
	return fmt.Sprintf("parse time %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseClock parses a token such as "9:30 AM" or "12:30 PM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, &ParseError{Value: s, Err: err}
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustParseClock is ParseClock for compile-time constants.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	t := time.Date(0, 1, 1, int(c)/60, int(c)%60, 0, 0, time.UTC)
	return t.Format(clockLayout)
}
