package search

import "time"

// Limits captures every field the UCI `go` command can supply.
type Limits struct {
	Depth      int
	WTime      time.Duration
	BTime      time.Duration
	WInc       time.Duration
	BInc       time.Duration
	MoveTime   time.Duration
	MovesToGo  int
	Infinite   bool
}

// HasClock reports whether clock-based time management applies.
func (l Limits) HasClock() bool {
	return l.WTime > 0 || l.BTime > 0
}
