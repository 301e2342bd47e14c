// Package tb defines the Syzygy endgame tablebase oracle contract the
// search consumes. The actual probing code (cgo bindings to the Syzygy C
// library) is out of scope per the engine's external-interface contract;
// this package is the interface plus a null prober used whenever no
// tablebase path is configured.
package tb

import "github.com/corvidchess/corvid/internal/types"

// Wdl is a win/draw/loss classification from the probing side's
// perspective.
type Wdl int

const (
	WdlLoss Wdl = iota
	WdlBlessedLoss
	WdlDraw
	WdlCursedWin
	WdlWin
	WdlNone
)

// RootProbe is the result of probing the tablebase for the best move at
// the search root.
type RootProbe struct {
	From, To types.Square
	Promo    types.PieceType
	Wdl      Wdl
}

// Position is the minimal read-only surface the prober needs from a
// board, satisfied by *position.Position without an import cycle.
type Position interface {
	Pieces(c types.Color, pt types.PieceType) types.Bitboard
	SideToMove() types.Color
	CastlingRights() types.CastlingRights
	EpSquare() types.Square
}

// Prober is the oracle interface the search depends on.
type Prober interface {
	// MaxPieces is the largest total piece count (both sides, including
	// kings) this prober can answer for.
	MaxPieces() int
	ProbeWDL(p Position) (Wdl, bool)
	ProbeRoot(p Position) (RootProbe, bool)
}

// NullProber always reports "no information", used whenever SyzygyPath is
// empty or failed to initialize.
type NullProber struct{}

func (NullProber) MaxPieces() int                          { return 0 }
func (NullProber) ProbeWDL(Position) (Wdl, bool)           { return WdlNone, false }
func (NullProber) ProbeRoot(Position) (RootProbe, bool)    { return RootProbe{}, false }

// Init attempts to initialize a tablebase prober rooted at path. Until a
// real Syzygy binding is wired in, this always returns a NullProber plus
// an error when path is non-empty so callers can log and fall back
// exactly as the "resource-optional failure" error class requires.
func Init(path string) (Prober, error) {
	if path == "" {
		return NullProber{}, nil
	}
	return NullProber{}, errUnavailable(path)
}

type errUnavailable string

func (e errUnavailable) Error() string {
	return "tb: syzygy support not compiled in; ignoring path " + string(e)
}
