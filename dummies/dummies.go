// Package dummies finds the nodes that need a synthetic edge to close
// the graph: a node with a real outgoing edge but no real incoming
// edge needs an incoming-dummy staircase (spec §4.D), and a node with
// a real incoming edge but no real outgoing edge needs a single
// out-dummy closing edge. It walks the node-order (by source) and
// edge-order (by destination) sorted streams with two cursors in a
// single merge-join pass, the way the teacher's sam/split-merge.go
// merges per-chromosome sorted runs with a running low-water-mark
// cursor over several channels at once.
package dummies

import (
	"sort"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
)

// ErrKind classifies a dummy-finding failure.
type ErrKind int

const (
	// SortInvariant means one of the two input streams was not
	// monotonic under its expected order.
	SortInvariant ErrKind = iota
)

// Error reports a build-time failure in dummy discovery.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Find walks node-order stream a (real edges grouped by source node)
// and edge-order stream b (the same edges grouped by destination node)
// in a single merge-join pass and reports, per distinct node:
//
//   - a node that is a source in a but never a destination in b has no
//     real incoming edge: inSink receives its k-1 shifted staircase
//     dummies (spec §4.D).
//   - a node that is a destination in b but never a source in a has no
//     real outgoing edge: outSink receives the node's own content
//     once, to be closed with a single synthetic "$" edge (spec §4.E).
//   - a node appearing on both sides is already closed on both ends
//     and produces nothing.
//
// a's colex order primarily sorts by the source node's colex key, and
// b's colex order (spec §4.C: colex order on the full edge is colex
// order on its reversal) primarily sorts by the destination node's
// colex key over the exact same k-1-symbol comparison space, so the
// two streams line up and can be walked forward-only, in O(E) time and
// O(1) extra memory beyond the two cursors.
func Find(a, b *extsort.Stream, edgeLength int, inSink func(kmer.Dummy), outSink func(kmer.Kmer)) error {
	nodeLen := edgeLength - 1
	aKmer, haveA := a.Next()
	bKmer, haveB := b.Next()
	var prevA, prevB kmer.Kmer
	var sawA, sawB bool

	for haveA || haveB {
		var cmp int
		switch {
		case !haveA:
			cmp = 1
		case !haveB:
			cmp = -1
		default:
			cmp = kmer.CompareColex(kmer.DropLast(aKmer, edgeLength, 1), kmer.Truncate(bKmer, nodeLen), nodeLen)
		}

		switch {
		case cmp < 0:
			prefix := kmer.DropLast(aKmer, edgeLength, 1)
			if sawA && kmer.CompareColex(prevA, prefix, nodeLen) > 0 {
				return &Error{Kind: SortInvariant, Msg: "dummies: node-order stream A is not sorted"}
			}
			if !sawA || kmer.CompareColex(prevA, prefix, nodeLen) != 0 {
				expand(aKmer, edgeLength, inSink)
			}
			prevA, sawA = prefix, true
			aKmer, haveA = a.Next()

		case cmp > 0:
			dest := kmer.Truncate(bKmer, nodeLen)
			if sawB && kmer.CompareColex(prevB, dest, nodeLen) > 0 {
				return &Error{Kind: SortInvariant, Msg: "dummies: edge-order stream B is not sorted"}
			}
			if !sawB || kmer.CompareColex(prevB, dest, nodeLen) != 0 {
				outSink(dest)
			}
			prevB, sawB = dest, true
			bKmer, haveB = b.Next()

		default: // equal: this node is closed on both ends
			prevA, sawA = kmer.DropLast(aKmer, edgeLength, 1), true
			prevB, sawB = kmer.Truncate(bKmer, nodeLen), true
			aKmer, haveA = a.Next()
			bKmer, haveB = b.Next()
		}
	}
	return nil
}

// expand produces the incoming-dummy staircase leading into a k-mer
// whose source node needs an incoming dummy edge, per spec §4.D step
// 3: node level `real` holds the source node's first `real` symbols,
// sentinel-padded on the left to nodeLen, and its one outgoing edge
// (labelled with the node's (real+1)-th symbol) advances the staircase
// to level real+1. Level 0 is the all-sentinel root shared by every
// unmatched node's staircase across the whole graph, and level nodeLen
// coincides with the source node itself (which already has real
// outgoing edges in stream A), so levels 0..nodeLen-1 are emitted.
// Distinct x's sharing a leading run of symbols naturally produce
// identical dummies at the shared levels, which the merge stage
// coalesces into a single node with one edge per distinct branch, the
// same way a real node with several real outgoing edges is grouped.
func expand(x kmer.Kmer, edgeLength int, sink func(kmer.Dummy)) {
	nodeLen := edgeLength - 1
	prefix := kmer.DropLast(x, edgeLength, 1)
	for real := 0; real < nodeLen; real++ {
		content := kmer.DropLast(prefix, nodeLen, nodeLen-real)
		label := kmer.SymbolAt(prefix, nodeLen, nodeLen-1-real)
		sink(kmer.Dummy{
			Kmer:  content,
			Shift: nodeLen - real,
			Real:  real,
			Label: label,
		})
	}
}

// SortDummies sorts the discovered dummies into colex-dummy order.
// Unlike extsort.Builder it keeps every pushed kmer.Dummy in memory
// and spills no sorted runs to scratch files.
type SortDummies struct {
	nodeLen int
	batch   []kmer.Dummy
}

// NewSortDummies creates a dummy sorter for node-length-symbol dummies
// (nodeLen = k-1).
//
// Dummy counts are bounded by (k-1) times the number of edges needing
// incoming dummies, a small fraction of the total edge count in
// practice, so unlike extsort.Builder this keeps every dummy in memory
// rather than spilling sorted runs to scratch files; DESIGN.md records
// this as a deliberate scope reduction versus a fully external-memory
// dummy sort.
func NewSortDummies(nodeLen int) *SortDummies {
	return &SortDummies{nodeLen: nodeLen}
}

// Push adds one dummy to the sorter.
func (s *SortDummies) Push(d kmer.Dummy) {
	s.batch = append(s.batch, d)
}

// Finish sorts and returns every pushed dummy in colex-dummy order.
// Dummy sets are a small fraction of the edge count in practice, so
// unlike extsort.Builder this sorts entirely in memory with the
// standard library rather than pargo's parallel merge sort, which is
// reserved for the two large real-edge streams.
func (s *SortDummies) Finish() []kmer.Dummy {
	sort.SliceStable(s.batch, func(i, j int) bool {
		return kmer.ColexDummyLess(s.batch[i], s.batch[j], s.nodeLen)
	})
	return s.batch
}
