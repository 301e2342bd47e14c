// Package nnue implements HalfKP feature indexing, an incremental
// accumulator, and quantized feed-forward inference for the engine's
// neural evaluator. Loading the network file itself is treated as a thin
// binary-blob reader per the engine's external-interface contract; the
// indexing and arithmetic here are full engine logic.
package nnue

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/corvidchess/corvid/internal/types"
)

// BoardView is the slice of Position's read-only surface Refresh needs.
// Package nnue depends on it instead of on package position directly so
// Position can hold an Accumulator and drive AddFeature/RemoveFeature from
// DoMove/UndoMove without an import cycle.
type BoardView interface {
	SideToMove() types.Color
	KingSquare(c types.Color) types.Square
	Pieces(c types.Color, pt types.PieceType) types.Bitboard
}

const (
	// AccumulatorWidth is the feature-transformer output width per
	// perspective.
	AccumulatorWidth = 256
	hidden1Width     = 32
	hidden2Width     = 32
	numPieceTypesNoKing = 5 // pawn..queen; kings are not features
	numSquares          = 64
	// InputSize is the total HalfKP feature count: for each of the 64
	// possible own-king buckets, 64 piece squares x 5 piece types x 2
	// piece colors (own/opponent relative to the perspective).
	InputSize = numSquares * numSquares * numPieceTypesNoKing * 2
)

// Network holds a fully loaded and quantized NNUE model.
type Network struct {
	ftBiases  [AccumulatorWidth]int16
	ftWeights []int16 // InputSize * AccumulatorWidth, row-major by feature index

	l1Biases  [hidden1Width]int32
	l1Weights [hidden1Width][2 * AccumulatorWidth]int8

	l2Biases  [hidden2Width]int32
	l2Weights [hidden2Width][hidden1Width]int8

	outBias   int32
	outWeight [hidden2Width]int8
}

// Accumulator is the pair of 256-wide incremental feature sums, one per
// perspective (White's view, Black's view).
type Accumulator struct {
	values [types.ColorLength][AccumulatorWidth]int16
	valid  [types.ColorLength]bool
}

// Values exposes one perspective's raw accumulator row, for tests that
// compare an incrementally-maintained accumulator against a fresh Refresh.
func (a *Accumulator) Values(persp types.Color) [AccumulatorWidth]int16 {
	return a.values[persp]
}

// FeatureIndex computes the stable HalfKP feature index for one
// (perspective, king square, piece square, piece type, piece color)
// tuple. Kings are never features. The black perspective mirrors both the
// king square and the piece square by XOR 56 (vertical flip) so a single
// consistent orientation is used for both index computation and weight
// loading.
func FeatureIndex(perspective types.Color, kingSq, pieceSq types.Square, pt types.PieceType, pieceColor types.Color) int {
	if perspective == types.Black {
		kingSq = types.Square(int8(kingSq) ^ 56)
		pieceSq = types.Square(int8(pieceSq) ^ 56)
	}
	ptIndex := int(pt) // Pawn=0..Queen=4, King never passed in
	colorOffset := 0
	if pieceColor != perspective {
		colorOffset = 1
	}
	pieceKind := ptIndex*2 + colorOffset
	return (int(kingSq)*numPieceTypesNoKing*2+pieceKind)*numSquares + int(pieceSq)
}

func (n *Network) featureSlice(index int) []int16 {
	off := index * AccumulatorWidth
	return n.ftWeights[off : off+AccumulatorWidth]
}

// Refresh rebuilds both perspectives of acc from scratch by summing every
// active feature's weight slice on top of the feature-transformer bias.
// Required whenever a king moves, since the king square is part of every
// non-king feature's index for that perspective.
func (n *Network) Refresh(p BoardView, acc *Accumulator) {
	n.refreshPerspective(p, acc, types.White)
	n.refreshPerspective(p, acc, types.Black)
}

// EnsureValid refreshes only the perspectives DoMove/UndoMove marked
// invalid (via InvalidatePerspective, on king moves), leaving an
// incrementally-maintained perspective untouched.
func (n *Network) EnsureValid(p BoardView, acc *Accumulator) {
	if !acc.valid[types.White] {
		n.refreshPerspective(p, acc, types.White)
	}
	if !acc.valid[types.Black] {
		n.refreshPerspective(p, acc, types.Black)
	}
}

func (n *Network) refreshPerspective(p BoardView, acc *Accumulator, persp types.Color) {
	copy(acc.values[persp][:], n.ftBiases[:])
	kingSq := p.KingSquare(persp)
	for pt := types.Pawn; pt < types.King; pt++ {
		for _, c := range [2]types.Color{types.White, types.Black} {
			bb := p.Pieces(c, pt)
			for bb != types.BbZero {
				sq := bb.PopLsb()
				idx := FeatureIndex(persp, kingSq, sq, pt, c)
				addInto(&acc.values[persp], n.featureSlice(idx))
			}
		}
	}
	acc.valid[persp] = true
}

// AddFeature/RemoveFeature incrementally update one perspective's
// accumulator when a piece is placed on or removed from the board,
// without touching the other perspective.
func (n *Network) AddFeature(acc *Accumulator, persp types.Color, kingSq, pieceSq types.Square, pt types.PieceType, pieceColor types.Color) {
	idx := FeatureIndex(persp, kingSq, pieceSq, pt, pieceColor)
	addInto(&acc.values[persp], n.featureSlice(idx))
}

func (n *Network) RemoveFeature(acc *Accumulator, persp types.Color, kingSq, pieceSq types.Square, pt types.PieceType, pieceColor types.Color) {
	idx := FeatureIndex(persp, kingSq, pieceSq, pt, pieceColor)
	subInto(&acc.values[persp], n.featureSlice(idx))
}

// InvalidatePerspective marks one side's accumulator stale, forcing the
// next Evaluate/Refresh to rebuild it (used on king moves).
func (n *Network) InvalidatePerspective(acc *Accumulator, persp types.Color) {
	acc.valid[persp] = false
}

func addInto(dst *[AccumulatorWidth]int16, src []int16) {
	for i := range dst {
		dst[i] = saturateInt16(int32(dst[i]) + int32(src[i]))
	}
}

func subInto(dst *[AccumulatorWidth]int16, src []int16) {
	for i := range dst {
		dst[i] = saturateInt16(int32(dst[i]) - int32(src[i]))
	}
}

func saturateInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func creluClampByte(v int16) int8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

// Evaluate infers the network's centipawn score from the side-to-move's
// perspective using acc, the caller's incrementally-maintained
// accumulator. EnsureValid rebuilds only whichever perspective DoMove's
// king-move handling invalidated, so a position reached by a normal search
// walk almost never pays a full refresh.
func (n *Network) Evaluate(p BoardView, acc *Accumulator) types.Value {
	n.EnsureValid(p, acc)

	stm := p.SideToMove()
	nstm := stm.Flip()

	var input [2 * AccumulatorWidth]int8
	for i := 0; i < AccumulatorWidth; i++ {
		input[i] = creluClampByte(acc.values[stm][i])
		input[AccumulatorWidth+i] = creluClampByte(acc.values[nstm][i])
	}

	var h1 [hidden1Width]int8
	for i := 0; i < hidden1Width; i++ {
		sum := n.l1Biases[i]
		row := n.l1Weights[i]
		for j := 0; j < 2*AccumulatorWidth; j++ {
			sum += int32(row[j]) * int32(input[j])
		}
		h1[i] = clampReluInt32(sum)
	}

	var h2 [hidden2Width]int8
	for i := 0; i < hidden2Width; i++ {
		sum := n.l2Biases[i]
		row := n.l2Weights[i]
		for j := 0; j < hidden1Width; j++ {
			sum += int32(row[j]) * int32(h1[j])
		}
		h2[i] = clampReluInt32(sum)
	}

	out := n.outBias
	for i := 0; i < hidden2Width; i++ {
		out += int32(n.outWeight[i]) * int32(h2[i])
	}

	score := int(out / 64)
	if score > int(types.ValueMax) {
		score = int(types.ValueMax)
	}
	if score < int(types.ValueMin) {
		score = int(types.ValueMin)
	}
	return types.Value(score)
}

func clampReluInt32(v int32) int8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

// Load reads a quantized NNUE network file. The format is a thin binary
// blob: a 4-byte version/architecture tag, feature-transformer biases
// (256 x int16), feature-transformer weights (InputSize x 256 x int16),
// then three dense layers, each written as (biases []int32, weights
// []int8) in order 512->32, 32->32, 32->1.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("nnue: read header: %w", err)
	}

	n := &Network{ftWeights: make([]int16, InputSize*AccumulatorWidth)}

	if err := readInt16Slice(r, n.ftBiases[:]); err != nil {
		return nil, fmt.Errorf("nnue: read ft biases: %w", err)
	}
	if err := readInt16Slice(r, n.ftWeights); err != nil {
		return nil, fmt.Errorf("nnue: read ft weights: %w", err)
	}

	if err := readInt32Slice(r, n.l1Biases[:]); err != nil {
		return nil, fmt.Errorf("nnue: read l1 biases: %w", err)
	}
	for i := range n.l1Weights {
		if err := readInt8Slice(r, n.l1Weights[i][:]); err != nil {
			return nil, fmt.Errorf("nnue: read l1 weights: %w", err)
		}
	}

	if err := readInt32Slice(r, n.l2Biases[:]); err != nil {
		return nil, fmt.Errorf("nnue: read l2 biases: %w", err)
	}
	for i := range n.l2Weights {
		if err := readInt8Slice(r, n.l2Weights[i][:]); err != nil {
			return nil, fmt.Errorf("nnue: read l2 weights: %w", err)
		}
	}

	var outBiasArr [1]int32
	if err := readInt32Slice(r, outBiasArr[:]); err != nil {
		return nil, fmt.Errorf("nnue: read output bias: %w", err)
	}
	n.outBias = outBiasArr[0]
	if err := readInt8Slice(r, n.outWeight[:]); err != nil {
		return nil, fmt.Errorf("nnue: read output weights: %w", err)
	}

	return n, nil
}

func readInt16Slice(r *bufio.Reader, dst []int16) error {
	buf := make([]byte, 2*len(dst))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return nil
}

func readInt32Slice(r *bufio.Reader, dst []int32) error {
	buf := make([]byte, 4*len(dst))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int32(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return nil
}

func readInt8Slice(r *bufio.Reader, dst []int8) error {
	buf := make([]byte, len(dst))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int8(buf[i])
	}
	return nil
}
