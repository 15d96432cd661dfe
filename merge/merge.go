// Package merge performs the three-way merge that turns the closed
// set of real, incoming-dummy, and outgoing-dummy edges into the
// single linear stream the BOSS assembler consumes (spec §4.E). Each
// of the three inputs is already sorted in the graph's global node
// order; merge.Run walks them with one cursor apiece, always emitting
// from whichever cursor holds the colex-smallest unvisited node, the
// way dummies.Find walks its own two cursors in lock-step.
package merge

import (
	"sort"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
)

// Tag classifies the origin of a merged edge record.
type Tag int

const (
	// RealEdge is an edge read directly from the input.
	RealEdge Tag = iota
	// InDummy is a synthetic edge on an incoming-dummy staircase
	// (spec §4.D): its source node has no real incoming edge.
	InDummy
	// OutDummy is a synthetic "$"-labelled edge closing a node that
	// has a real incoming edge but no real outgoing edge.
	OutDummy
)

func (t Tag) String() string {
	switch t {
	case RealEdge:
		return "real"
	case InDummy:
		return "in_dummy"
	case OutDummy:
		return "out_dummy"
	default:
		return "unknown"
	}
}

// Record is one edge of the merged, globally-ordered stream the BOSS
// assembler builds W, L, and F from.
type Record struct {
	Tag   Tag
	Node  kmer.Kmer   // the edge's source node content, right-aligned
	Real  int         // number of real (non-sentinel) symbols in Node
	Label kmer.Symbol // the W-symbol: this edge's outgoing label

	// ThisK is the source node's real length: nodeLen (k-1) for a real
	// edge or an out-dummy closing edge, or the staircase level's Real
	// for an in-dummy edge.
	ThisK int

	// FirstEndNode is true on the last edge emitted for its source
	// node, the bit stream L is built from.
	FirstEndNode bool

	// MinusFlag is true when this edge's label repeats the previous
	// edge emitted for the same source node: a genuine duplicate edge
	// (e.g. a repeated or palindromic k-mer in the input) that W must
	// still record as a distinct occurrence.
	MinusFlag bool

	// LCS is the number of leading colex-key positions this record's
	// source node shares with the previously emitted record's source
	// node (0 for the very first record). Edges sharing a source node
	// always report the node's full real length here.
	LCS int
}

// nodeGroup is one source node's full set of outgoing edges, already
// sorted by ascending label, ready to emit.
type nodeGroup struct {
	key    []kmer.Symbol
	real   int
	node   kmer.Kmer
	tag    Tag
	labels []kmer.Symbol
}

func compareKeys(a, b []kmer.Symbol) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func commonPrefixLen(a, b []kmer.Symbol) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// aGrouper regroups stream a's individually-sorted real edges (sorted
// by source node prefix, but not by label within a shared prefix) into
// per-node groups, buffering only the handful of edges any one node
// realistically has.
type aGrouper struct {
	stream      *extsort.Stream
	edgeLength  int
	nodeLen     int
	pending     kmer.Kmer
	havePending bool
}

func newAGrouper(stream *extsort.Stream, edgeLength int) *aGrouper {
	g := &aGrouper{stream: stream, edgeLength: edgeLength, nodeLen: edgeLength - 1}
	g.pending, g.havePending = stream.Next()
	return g
}

func (g *aGrouper) next() (nodeGroup, bool) {
	if !g.havePending {
		return nodeGroup{}, false
	}
	node := kmer.DropLast(g.pending, g.edgeLength, 1)
	key := kmer.ColexKey(node, g.nodeLen, g.nodeLen)

	var labels []kmer.Symbol
	for g.havePending {
		prefix := kmer.DropLast(g.pending, g.edgeLength, 1)
		if compareKeys(kmer.ColexKey(prefix, g.nodeLen, g.nodeLen), key) != 0 {
			break
		}
		labels = append(labels, kmer.LastSymbol(g.pending, g.edgeLength))
		g.pending, g.havePending = g.stream.Next()
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return nodeGroup{key: key, real: g.nodeLen, node: node, tag: RealEdge, labels: labels}, true
}

// dummyGrouper walks the sorted incoming-dummy staircase, coalescing
// every dummy sharing the same (content, real) node — including the
// all-sentinel root shared by every unmatched node's staircase — into
// one node group with one edge per distinct branch, the same way
// aGrouper groups a real node's several real outgoing edges (spec
// §4.D: distinct unmatched nodes sharing a leading run of symbols
// produce the same staircase node with different continuations).
type dummyGrouper struct {
	items   []kmer.Dummy
	nodeLen int
	idx     int
}

func newDummyGrouper(items []kmer.Dummy, nodeLen int) *dummyGrouper {
	return &dummyGrouper{items: items, nodeLen: nodeLen}
}

func (g *dummyGrouper) next() (nodeGroup, bool) {
	if g.idx >= len(g.items) {
		return nodeGroup{}, false
	}
	d := g.items[g.idx]
	key := kmer.ColexKey(d.Kmer, d.Real, g.nodeLen)

	var labels []kmer.Symbol
	for g.idx < len(g.items) {
		nd := g.items[g.idx]
		if nd.Real != d.Real || compareKeys(kmer.ColexKey(nd.Kmer, nd.Real, g.nodeLen), key) != 0 {
			break
		}
		labels = append(labels, nd.Label)
		g.idx++
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return nodeGroup{key: key, real: d.Real, node: d.Kmer, tag: InDummy, labels: labels}, true
}

// outGrouper walks the sorted, already-deduplicated list of nodes
// needing a closing "$" edge.
type outGrouper struct {
	items   []kmer.Kmer
	nodeLen int
	idx     int
}

func newOutGrouper(items []kmer.Kmer, nodeLen int) *outGrouper {
	return &outGrouper{items: items, nodeLen: nodeLen}
}

func (g *outGrouper) next() (nodeGroup, bool) {
	if g.idx >= len(g.items) {
		return nodeGroup{}, false
	}
	n := g.items[g.idx]
	g.idx++
	return nodeGroup{
		key:    kmer.ColexKey(n, g.nodeLen, g.nodeLen),
		real:   g.nodeLen,
		node:   n,
		tag:    OutDummy,
		labels: []kmer.Symbol{kmer.Sentinel},
	}, true
}

// Run performs the three-way merge over a (real edges, node-ordered),
// inDummies (the sorted output of dummies.SortDummies.Finish), and
// outDummies (the sorted node list dummies.Find's out-dummy sink
// collected), calling emit once per graph edge in the global BOSS
// order the assembler needs: primarily by source-node colex key, then
// by ascending outgoing label within a node.
func Run(a *extsort.Stream, edgeLength int, inDummies []kmer.Dummy, outDummies []kmer.Kmer, emit func(Record)) {
	nodeLen := edgeLength - 1

	ag := newAGrouper(a, edgeLength)
	ig := newDummyGrouper(inDummies, nodeLen)
	og := newOutGrouper(outDummies, nodeLen)

	aGroup, haveA := ag.next()
	iGroup, haveI := ig.next()
	oGroup, haveO := og.next()

	var prevKey []kmer.Symbol
	haveSeen := false

	for haveA || haveI || haveO {
		var g nodeGroup
		switch {
		case haveA && (!haveI || compareKeys(aGroup.key, iGroup.key) <= 0) && (!haveO || compareKeys(aGroup.key, oGroup.key) <= 0):
			g = aGroup
			aGroup, haveA = ag.next()
		case haveI && (!haveO || compareKeys(iGroup.key, oGroup.key) <= 0):
			g = iGroup
			iGroup, haveI = ig.next()
		default:
			g = oGroup
			oGroup, haveO = og.next()
		}

		lcs := 0
		if haveSeen {
			lcs = commonPrefixLen(prevKey, g.key)
		}
		for i, label := range g.labels {
			emit(Record{
				Tag:          g.tag,
				Node:         g.node,
				Real:         g.real,
				Label:        label,
				ThisK:        g.real,
				FirstEndNode: i == len(g.labels)-1,
				MinusFlag:    i > 0 && label == g.labels[i-1],
				LCS:          lcs,
			})
			lcs = g.real // within a group, later edges share the full node key with the one just emitted
		}
		prevKey, haveSeen = g.key, true
	}
}
