package v3math

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// TickBitmap is the sparse per-word initialized-tick bitmap. Words never
// fetched are treated as all zero.
type TickBitmap map[int16]*uint256.Int

// Position splits a compressed tick into its word index and bit offset.
func Position(tick int) (wordPos int16, bitPos uint8) {
	return int16(tick >> 8), uint8(tick & 0xff)
}

// Word returns the bitmap word at wordPos, zero when absent.
func (b TickBitmap) Word(wordPos int16) *uint256.Int {
	if w, ok := b[wordPos]; ok {
		return w
	}
	return new(uint256.Int)
}

// Set flips on the bit for the given compressed tick.
func (b TickBitmap) Set(tick int) {
	wordPos, bitPos := Position(tick)
	w, ok := b[wordPos]
	if !ok {
		w = new(uint256.Int)
		b[wordPos] = w
	}
	w.Or(w, new(uint256.Int).Lsh(one, uint(bitPos)))
}

// NextInitializedTickWithinOneWord scans at most one bitmap word from tick
// in the given direction. It returns the next initialized tick, or the
// word boundary when the word holds no initialized tick at or beyond the
// starting position.
func (b TickBitmap) NextInitializedTickWithinOneWord(tick, tickSpacing int, lte bool) (next int, initialized bool) {
	compressed := tick / tickSpacing
	if tick < 0 && tick%tickSpacing != 0 {
		compressed--
	}

	if lte {
		wordPos, bitPos := Position(compressed)
		// All bits at or to the right of bitPos.
		mask := new(uint256.Int).Lsh(one, uint(bitPos))
		mask.Add(mask, new(uint256.Int).Sub(new(uint256.Int).Lsh(one, uint(bitPos)), one))
		masked := new(uint256.Int).And(b.Word(wordPos), mask)

		if !masked.IsZero() {
			return (compressed - int(bitPos-mostSignificantBit(masked))) * tickSpacing, true
		}
		return (compressed - int(bitPos)) * tickSpacing, false
	}

	wordPos, bitPos := Position(compressed + 1)
	// All bits at or to the left of bitPos.
	mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(one, uint(bitPos)), one)
	mask.Not(mask)
	masked := new(uint256.Int).And(b.Word(wordPos), mask)

	if !masked.IsZero() {
		return (compressed + 1 + int(leastSignificantBit(masked)-bitPos)) * tickSpacing, true
	}
	return (compressed + 1 + int(255-bitPos)) * tickSpacing, false
}

func mostSignificantBit(x *uint256.Int) uint8 {
	return uint8(x.BitLen() - 1)
}

func leastSignificantBit(x *uint256.Int) uint8 {
	for i := 0; i < 4; i++ {
		if limb := x[i]; limb != 0 {
			return uint8(i*64 + bits.TrailingZeros64(limb))
		}
	}
	panic("lsb of zero")
}
