package models

import "fmt"

const minutesPerDay = 24 * 60

// Clock is a time of day on a 24-hour clock with minute precision.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// NewClock normalises hour and minute into a valid time of day, wrapping around midnight.
func NewClock(hour, minute int) Clock {
	return clockFromMinutes(hour*60 + minute)
}

func clockFromMinutes(total int) Clock {
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return Clock{Hour: total / 60, Minute: total % 60} //nolint:mnd // minutes in an hour
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute //nolint:mnd // minutes in an hour
}

// Add returns the clock moved by the given number of minutes. Negative values move backwards.
func (c Clock) Add(minutes int) Clock {
	return clockFromMinutes(c.Minutes() + minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Hour, c.Minute)
}

// TimeWindow is the span between two clock times. The window may wrap past midnight.
type TimeWindow struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Around returns the window [center-before, center+after].
func Around(center Clock, before, after int) TimeWindow {
	return TimeWindow{Start: center.Add(-before), End: center.Add(after)}
}

// Duration returns the length of the window in minutes.
func (w TimeWindow) Duration() int {
	d := w.End.Minutes() - w.Start.Minutes()
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// Contains reports whether c falls inside the window, honouring wraparound.
func (w TimeWindow) Contains(c Clock) bool {
	offset := c.Minutes() - w.Start.Minutes()
	if offset < 0 {
		offset += minutesPerDay
	}
	return offset <= w.Duration()
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s to %s", w.Start, w.End)
}
