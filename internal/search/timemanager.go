package search

import (
	"time"

	"github.com/corvidchess/corvid/internal/types"
)

// Deadlines are the soft (aim to stop by) and hard (must stop by) limits
// for the current search, derived from the UCI go fields.
type Deadlines struct {
	Soft, Hard time.Duration
	Infinite   bool
}

const (
	moveOverhead   = 200 * time.Millisecond
	minMoveTime    = 5 * time.Millisecond
	defaultMovesToGo = 40
)

// ComputeDeadlines derives soft/hard search deadlines per §4.L.
func ComputeDeadlines(l Limits, us types.Color) Deadlines {
	if l.Infinite || (l.Depth > 0 && !l.HasClock() && l.MoveTime == 0) {
		return Deadlines{Infinite: true}
	}

	if l.MoveTime > 0 {
		soft := l.MoveTime - moveOverhead
		if soft < minMoveTime {
			soft = minMoveTime
		}
		hard := l.MoveTime - 5*time.Millisecond
		if hard < minMoveTime {
			hard = minMoveTime
		}
		return Deadlines{Soft: soft, Hard: hard}
	}

	var timeLeft, inc time.Duration
	if us == types.White {
		timeLeft, inc = l.WTime, l.WInc
	} else {
		timeLeft, inc = l.BTime, l.BInc
	}
	if timeLeft <= 0 {
		return Deadlines{Infinite: true}
	}

	usable := timeLeft - moveOverhead
	if usable < minMoveTime {
		usable = minMoveTime
	}

	var soft time.Duration
	if l.MovesToGo > 0 {
		soft = usable/time.Duration(l.MovesToGo) + (inc*3)/4
	} else {
		soft = usable/defaultMovesToGo + (inc*3)/4
		greedyCap := usable/5 + inc/2
		if soft > greedyCap {
			soft = greedyCap
		}
	}
	if soft < minMoveTime {
		soft = minMoveTime
	}

	hard := soft + soft/2 + 200*time.Millisecond
	maxHard := timeLeft - 100*time.Millisecond
	if maxHard < minMoveTime {
		maxHard = minMoveTime
	}
	if hard > maxHard {
		hard = maxHard
	}
	return Deadlines{Soft: soft, Hard: hard}
}
