// Package tt implements the lock-free, bucketed, generation-aged shared
// transposition table. Each cluster is four entries; each entry's key and
// packed payload are stored in separate atomic words, using Crafty/Hyatt's
// XOR-checksum technique: the key word holds realKey^data rather than
// realKey itself. A reader that lands mid-write and combines an old half
// with a new half recomputes a checksum that (bar an astronomical
// coincidence) matches no real key, so a torn read degrades to a safe miss
// instead of a wrong hit.
package tt

import (
	"sync/atomic"

	"github.com/corvidchess/corvid/internal/types"
)

// Bound is the TT entry's score-bound flag.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower
	BoundUpper
)

const entriesPerCluster = 4

// entry is the atomic-word pair backing one TTEntry slot. key holds
// realKey^data, not the raw key; see the package doc comment.
type entry struct {
	key  atomic.Uint64
	data atomic.Uint64
}

// store writes data then the key checksum, in that order: a concurrent
// Probe can only ever observe the new key word once the new data word is
// already visible, which is what makes a torn read detectable rather than
// silently serving mismatched key/data halves as a hit.
func (e *entry) store(key, data uint64) {
	e.data.Store(data)
	e.key.Store(key ^ data)
}

// load returns the raw key word and data word. Callers wanting the
// checksum-verified real key must XOR them together and compare.
func (e *entry) load() (keyWord, data uint64) {
	data = e.data.Load()
	keyWord = e.key.Load()
	return
}

// packed data layout within the 64-bit data word:
//   bits 0-15  move (uint16)
//   bits 16-31 score (int16, stored as its two's-complement uint16 bits)
//   bits 32-39 depth (uint8)
//   bits 40-47 generation (uint8)
//   bits 48-49 bound (2 bits)
const (
	shiftMove  = 0
	shiftScore = 16
	shiftDepth = 32
	shiftGen   = 40
	shiftBound = 48
)

func pack(move types.Move, score int16, depth, generation uint8, bound Bound) uint64 {
	return uint64(move)<<shiftMove |
		uint64(uint16(score))<<shiftScore |
		uint64(depth)<<shiftDepth |
		uint64(generation)<<shiftGen |
		uint64(bound)<<shiftBound
}

func unpack(data uint64) (move types.Move, score int16, depth, generation uint8, bound Bound) {
	move = types.Move(data >> shiftMove)
	score = int16(data >> shiftScore)
	depth = uint8(data >> shiftDepth)
	generation = uint8(data >> shiftGen)
	bound = Bound(data>>shiftBound) & 0x3
	return
}

// Entry is the caller-facing, already-reconstructed probe result.
type Entry struct {
	Move       types.Move
	Score      types.Value
	Depth      int
	Generation uint8
	Bound      Bound
}

// Table is the shared transposition table.
type Table struct {
	clusters   []entry
	clusterNum uint64
	generation atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// New allocates a table sized to approximately sizeMb megabytes, rounded
// down to a power-of-two number of clusters so indexing is a mask.
func New(sizeMb int) *Table {
	t := &Table{}
	t.Resize(sizeMb)
	return t
}

// Resize reallocates the table, discarding all entries.
func (t *Table) Resize(sizeMb int) {
	bytesTotal := uint64(sizeMb) * 1024 * 1024
	bytesPerCluster := uint64(entriesPerCluster) * 16
	numClusters := bytesTotal / bytesPerCluster
	if numClusters == 0 {
		numClusters = 1
	}
	// round down to a power of two
	pow := uint64(1)
	for pow*2 <= numClusters {
		pow *= 2
	}
	t.clusterNum = pow
	t.clusters = make([]entry, pow*entriesPerCluster)
}

// Clear resets every entry to empty without reallocating.
func (t *Table) Clear() {
	for i := range t.clusters {
		t.clusters[i].key.Store(0)
		t.clusters[i].data.Store(0)
	}
	t.generation.Store(0)
}

// NewSearch bumps the generation counter, wrapping at 256, so stale
// entries are preferentially replaced without being erased outright.
func (t *Table) NewSearch() {
	t.generation.Store((t.generation.Load() + 1) & 0xFF)
}

func (t *Table) clusterIndex(key uint64) uint64 {
	return key & (t.clusterNum - 1)
}

// Probe looks up key and, on a hit, returns the reconstructed entry with
// mate scores denormalized for the given ply.
func (t *Table) Probe(key uint64, ply int) (Entry, bool) {
	t.probes.Add(1)
	base := t.clusterIndex(key) * entriesPerCluster
	for i := uint64(0); i < entriesPerCluster; i++ {
		slot := &t.clusters[base+i]
		keyWord, d := slot.load()
		if keyWord^d != key {
			continue
		}
		move, score, depth, gen, bound := unpack(d)
		t.hits.Add(1)
		return Entry{
			Move:       move,
			Score:      denormalizeMate(types.Value(score), ply),
			Depth:      int(depth),
			Generation: gen,
			Bound:      bound,
		}, true
	}
	return Entry{}, false
}

// Store writes an entry for key, replacing the matching slot if present or
// else the worst-scoring slot in the cluster (higher replacement score is
// worse: +1000 for a stale generation, plus 256-depth). On an exact-key
// match where the incoming move is MoveNone, the previously stored move is
// preserved rather than overwritten with nothing.
func (t *Table) Store(key uint64, move types.Move, score types.Value, depth int, bound Bound, ply int) {
	base := t.clusterIndex(key) * entriesPerCluster
	gen := uint8(t.generation.Load())
	normScore := int16(normalizeMate(score, ply))

	var worstIdx uint64
	worstScore := -1
	for i := uint64(0); i < entriesPerCluster; i++ {
		slot := &t.clusters[base+i]
		keyWord, d := slot.load()
		if keyWord == 0 && d == 0 {
			worstIdx = i
			worstScore = 1 << 30
			continue
		}
		if keyWord^d == key {
			existingMove, _, _, _, _ := unpack(d)
			if move == types.MoveNone {
				move = existingMove
			}
			slot.store(key, pack(move, normScore, uint8(depth), gen, bound))
			return
		}
		_, _, d2, g, _ := unpack(d)
		replScore := 0
		if g != gen {
			replScore += 1000
		}
		replScore += 256 - int(d2)
		if replScore > worstScore {
			worstScore = replScore
			worstIdx = i
		}
	}

	slot := &t.clusters[base+worstIdx]
	slot.store(key, pack(move, normScore, uint8(depth), gen, bound))
}

// Hashfull estimates per-mille table occupancy by sampling the first 1000
// clusters, matching common UCI `info hashfull` practice.
func (t *Table) Hashfull() int {
	sample := uint64(1000)
	if sample > t.clusterNum {
		sample = t.clusterNum
	}
	filled := 0
	for i := uint64(0); i < sample; i++ {
		base := i * entriesPerCluster
		for j := uint64(0); j < entriesPerCluster; j++ {
			keyWord, d := t.clusters[base+j].load()
			if keyWord != 0 || d != 0 {
				filled++
			}
		}
	}
	return filled * 1000 / int(sample*entriesPerCluster)
}

func normalizeMate(score types.Value, ply int) types.Value {
	if score > types.MateThreshold {
		return score + types.Value(ply)
	}
	if score < -types.MateThreshold {
		return score - types.Value(ply)
	}
	return score
}

func denormalizeMate(score types.Value, ply int) types.Value {
	if score > types.MateThreshold {
		return score - types.Value(ply)
	}
	if score < -types.MateThreshold {
		return score + types.Value(ply)
	}
	return score
}
