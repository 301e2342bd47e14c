// Package book reads PolyGlot-format opening books: a flat, key-sorted
// array of 16-byte records probed by binary search on the current Zobrist
// hash, with one move sampled proportional to weight among ties.
package book

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/corvidchess/corvid/internal/types"
)

// entry is one on-disk PolyGlot record.
type entry struct {
	key    uint64
	move   uint16
	weight uint16
	learn  uint32
}

// Book is a loaded, binary-searchable PolyGlot opening book.
type Book struct {
	entries []entry
}

// Load reads and validates a PolyGlot .bin file.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", path, err)
	}
	if len(data)%16 != 0 {
		return nil, fmt.Errorf("book: %s: size %d is not a multiple of 16", path, len(data))
	}
	n := len(data) / 16
	b := &Book{entries: make([]entry, n)}
	for i := 0; i < n; i++ {
		row := data[i*16 : i*16+16]
		b.entries[i] = entry{
			key:    binary.BigEndian.Uint64(row[0:8]),
			move:   binary.BigEndian.Uint16(row[8:10]),
			weight: binary.BigEndian.Uint16(row[10:12]),
			learn:  binary.BigEndian.Uint32(row[12:16]),
		}
	}
	sort.Slice(b.entries, func(i, j int) bool { return b.entries[i].key < b.entries[j].key })
	return b, nil
}

// Probe returns a move sampled proportional to weight among all entries
// matching key, or (MoveNone, false) if the position is not in the book.
func (b *Book) Probe(key uint64) (types.Move, bool) {
	lo := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].key >= key })
	if lo == len(b.entries) || b.entries[lo].key != key {
		return types.MoveNone, false
	}
	hi := lo
	var totalWeight int
	for hi < len(b.entries) && b.entries[hi].key == key {
		totalWeight += int(b.entries[hi].weight)
		hi++
	}
	if totalWeight == 0 {
		return decodeMove(b.entries[lo].move), true
	}
	pick := rand.Intn(totalWeight)
	for i := lo; i < hi; i++ {
		pick -= int(b.entries[i].weight)
		if pick < 0 {
			return decodeMove(b.entries[i].move), true
		}
	}
	return decodeMove(b.entries[hi-1].move), true
}

// decodeMove converts a PolyGlot-encoded move (bits 0-5 to, 6-11 from,
// 12-14 promotion: 0=none,1=knight,2=bishop,3=rook,4=queen) into the
// engine's own packed Move encoding. Castling in PolyGlot is encoded as
// king-takes-own-rook, which callers must special-case against the
// current position before trusting the from/to squares literally; this
// decoder produces the raw squares and lets move validation in the search
// layer match it against a generated legal move.
func decodeMove(pg uint16) types.Move {
	to := types.Square(pg & 0x3F)
	from := types.Square((pg >> 6) & 0x3F)
	promo := (pg >> 12) & 0x7

	flag := types.FlagQuiet
	switch promo {
	case 1:
		flag = types.FlagPromoKnight
	case 2:
		flag = types.FlagPromoBishop
	case 3:
		flag = types.FlagPromoRook
	case 4:
		flag = types.FlagPromoQueen
	}
	return types.NewMove(from, to, flag)
}
