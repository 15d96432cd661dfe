// Package succinct implements the rank/select bit-vector and small-
// alphabet wavelet tree the BOSS index is built from: the L bit-vector
// (node-boundary markers) and the W wavelet tree (edge labels) both
// need O(1)-ish rank and select, which neither the standard library
// nor the teacher's own dependency stack (github.com/willf/bitset)
// provide directly. BitVector layers a block-sampled rank/select index
// on top of bitset.BitSet, the same dense storage the teacher uses for
// its own per-read informative-base masks (filters/ref-confidence.go).
package succinct

import (
	"github.com/willf/bitset"
)

// blockBits is the width, in source bits, of one rank sample block.
// Rank at an arbitrary position costs one array lookup plus a scan of
// at most blockBits-1 bits; this trades a small amount of query time
// for an index that costs one word per blockBits bits, which is the
// right tradeoff for an index meant to be mmap'd whole.
const blockBits = 512

// BitVector is a fixed-length bit-vector with rank and select
// support. It must be built (via Build) after all Set calls and
// before any Rank/Select call.
type BitVector struct {
	bits      *bitset.BitSet
	length    uint64
	blockRank []uint64 // blockRank[i] = Rank1(i*blockBits)
	built     bool
}

// NewBitVector allocates a bit-vector of the given length, all bits
// initially clear.
func NewBitVector(length uint64) *BitVector {
	return &BitVector{
		bits:   bitset.New(uint(length)),
		length: length,
	}
}

// Len returns the number of bits in the vector.
func (b *BitVector) Len() uint64 { return b.length }

// Set sets bit i to v. Panics if called after Build.
func (b *BitVector) Set(i uint64, v bool) {
	if b.built {
		panic("succinct: Set called on a built BitVector")
	}
	if v {
		b.bits.Set(uint(i))
	} else {
		b.bits.Clear(uint(i))
	}
}

// Get returns bit i.
func (b *BitVector) Get(i uint64) bool {
	return b.bits.Test(uint(i))
}

// Build computes the rank sampling index. Must be called once, after
// all bits are set, before Rank1/Rank0/Select1/Select0 are used.
func (b *BitVector) Build() {
	nblocks := int(b.length/blockBits) + 1
	b.blockRank = make([]uint64, nblocks)
	var running uint64
	for blk := 0; blk < nblocks; blk++ {
		b.blockRank[blk] = running
		start := uint64(blk) * blockBits
		end := start + blockBits
		if end > b.length {
			end = b.length
		}
		for i := start; i < end; i++ {
			if b.bits.Test(uint(i)) {
				running++
			}
		}
	}
	b.built = true
}

// Rank1 returns the number of 1-bits in [0, i).
func (b *BitVector) Rank1(i uint64) uint64 {
	if i > b.length {
		i = b.length
	}
	blk := i / blockBits
	rank := b.blockRank[blk]
	start := blk * blockBits
	for p := start; p < i; p++ {
		if b.bits.Test(uint(p)) {
			rank++
		}
	}
	return rank
}

// Rank0 returns the number of 0-bits in [0, i).
func (b *BitVector) Rank0(i uint64) uint64 {
	return i - b.Rank1(i)
}

// Select1 returns the position of the k-th 1-bit (0-based), and false
// if there is no such bit.
func (b *BitVector) Select1(k uint64) (uint64, bool) {
	total := b.blockRank[len(b.blockRank)-1] + b.tailRank1()
	if k >= total {
		return 0, false
	}
	// binary search the block index for the last block whose
	// cumulative rank is <= k.
	lo, hi := 0, len(b.blockRank)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.blockRank[mid] <= k {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	pos := uint64(lo) * blockBits
	remaining := k - b.blockRank[lo]
	for pos < b.length {
		if b.bits.Test(uint(pos)) {
			if remaining == 0 {
				return pos, true
			}
			remaining--
		}
		pos++
	}
	return 0, false
}

// Select0 returns the position of the k-th 0-bit (0-based), and false
// if there is no such bit.
func (b *BitVector) Select0(k uint64) (uint64, bool) {
	var seen uint64
	for pos := uint64(0); pos < b.length; pos++ {
		if !b.bits.Test(uint(pos)) {
			if seen == k {
				return pos, true
			}
			seen++
		}
	}
	return 0, false
}

func (b *BitVector) tailRank1() uint64 {
	start := uint64(len(b.blockRank)-1) * blockBits
	var n uint64
	for p := start; p < b.length; p++ {
		if b.bits.Test(uint(p)) {
			n++
		}
	}
	return n
}

// Count returns the total number of 1-bits.
func (b *BitVector) Count() uint64 {
	return uint64(b.bits.Count())
}

// SparseBitVector is BitVector specialized for the case where one of
// the two bit values is much rarer than the other, e.g. the L
// bit-vector's node-boundary markers over a large edge count. The
// current implementation shares BitVector's dense block-sampled index;
// a true Elias-Fano-style encoding would shrink storage further but is
// not needed at the scale this pipeline targets in-process.
type SparseBitVector struct {
	*BitVector
}

// NewSparseBitVector allocates a sparse bit-vector of the given
// length.
func NewSparseBitVector(length uint64) *SparseBitVector {
	return &SparseBitVector{BitVector: NewBitVector(length)}
}
