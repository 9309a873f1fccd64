package core

import "time"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// TimeTeller can be used to get the current time. Containers stamp emitted
// states through a TimeTeller so tests can substitute a controlled clock.
type TimeTeller interface {
	Now() time.Time
}

// WallClock is a TimeTeller backed by the system clock.
type WallClock struct{}

// Now returns the current wall-clock time.
func (WallClock) Now() time.Time {
	return time.Now()
}
