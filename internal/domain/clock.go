package domain

import "github.com/jonboulle/clockwork"

// clock stamps reports. Tests freeze it via SetClock so report output is
// reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the report time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
