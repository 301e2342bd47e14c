// Package types holds the primitive board representation shared by every
// other package in the engine: squares, colors, piece types, bitboards,
// magic attack tables and the packed move encoding. Everything here is a
// pure function of its inputs except the package-level init() which builds
// the precomputed tables described in the design notes of each file.
package types

import (
	"fmt"
	"strings"
)

// Square is a board square index 0..63. 0=a1, 7=h1, 56=a8, 63=h8 (little
// endian rank-file mapping).
type Square int8

// File is a board file a..h, 0-based.
type File int8

// Rank is a board rank 1..8, 0-based.
type Rank int8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
	FileLength
	FileNone = FileLength
)

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	RankLength
	RankNone = RankLength
)

// Square constants for all 64 squares plus the sentinel SqNone.
const (
	SqA1 Square = iota
	SqB1
	SqC1
	SqD1
	SqE1
	SqF1
	SqG1
	SqH1
	SqA2
	SqB2
	SqC2
	SqD2
	SqE2
	SqF2
	SqG2
	SqH2
	SqA3
	SqB3
	SqC3
	SqD3
	SqE3
	SqF3
	SqG3
	SqH3
	SqA4
	SqB4
	SqC4
	SqD4
	SqE4
	SqF4
	SqG4
	SqH4
	SqA5
	SqB5
	SqC5
	SqD5
	SqE5
	SqF5
	SqG5
	SqH5
	SqA6
	SqB6
	SqC6
	SqD6
	SqE6
	SqF6
	SqG6
	SqH6
	SqA7
	SqB7
	SqC7
	SqD7
	SqE7
	SqF7
	SqG7
	SqH7
	SqA8
	SqB8
	SqC8
	SqD8
	SqE8
	SqF8
	SqG8
	SqH8
	SqLength
	SqNone = SqLength
)

// NewSquare builds a square from a 0-based file and rank.
func NewSquare(f File, r Rank) Square {
	return Square(int8(r)*8 + int8(f))
}

// IsValid reports whether the square is on the board.
func (sq Square) IsValid() bool {
	return sq >= SqA1 && sq < SqLength
}

// FileOf returns the file of the square.
func (sq Square) FileOf() File {
	return File(sq & 7)
}

// RankOf returns the rank of the square.
func (sq Square) RankOf() Rank {
	return Rank(sq >> 3)
}

// To returns the square reached by moving one step in the given direction,
// or SqNone if that would leave the board.
func (sq Square) To(d Direction) Square {
	to := Square(int8(sq) + int8(d))
	if !to.IsValid() || fileDistance(sq.FileOf(), to.FileOf()) > 2 {
		return SqNone
	}
	return to
}

func fileDistance(a, b File) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

// String renders the square in algebraic notation, e.g. "e4".
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.FileOf()), byte('1' + sq.RankOf())})
}

// SquareFromString parses algebraic square notation such as "e4".
func SquareFromString(s string) (Square, error) {
	if s == "-" {
		return SqNone, nil
	}
	if len(s) != 2 {
		return SqNone, fmt.Errorf("invalid square %q", s)
	}
	f := s[0]
	r := s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return SqNone, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(File(f-'a'), Rank(r-'1')), nil
}

// String renders the file as a lowercase letter.
func (f File) String() string {
	return string(rune('a' + f))
}

// String renders the rank as a digit.
func (r Rank) String() string {
	return string(rune('1' + r))
}

// Flip mirrors a rank across the middle of the board (used to reuse
// White piece-square tables for Black).
func (r Rank) Flip() Rank {
	return Rank(7 - r)
}

// FlipVertical mirrors a square vertically (a1 <-> a8).
func (sq Square) FlipVertical() Square {
	return Square(int8(sq) ^ 56)
}

// FlipHorizontal mirrors a square across the d/e file boundary.
func (sq Square) FlipHorizontal() Square {
	return Square(int8(sq) ^ 7)
}

// squareNames is used by debug printers.
func squareNames() string {
	var b strings.Builder
	for sq := SqA1; sq < SqLength; sq++ {
		b.WriteString(sq.String())
		if sq < SqH8 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
