package types

// Direction is a square delta expressed from White's point of view; Black
// moves use the negated values via Color.Direction().
type Direction int8

const (
	North     Direction = 8
	South     Direction = -8
	East      Direction = 1
	West      Direction = -1
	Northeast Direction = North + East
	Northwest Direction = North + West
	Southeast Direction = South + East
	Southwest Direction = South + West
)

// Orientation indexes the eight ray directions used by rays/intermediate
// lookup tables, independent of color.
type Orientation int8

const (
	N Orientation = iota
	E
	S
	W
	NE
	NW
	SE
	SW
	OrientationLength
)
