package boss

import (
	"sort"

	"github.com/exascience/debruijn/kmer"
)

// NotFound is the sentinel edge/node index returned by traversal
// operations that have no answer for the given input (spec §7:
// "outgoing/incoming/index return a dedicated not-found sentinel for
// legitimate no-match cases").
const NotFound = ^uint64(0)

// NumEdges is the number of edges in the graph (|W|).
func (g *Graph) NumEdges() uint64 { return g.numEdges }

// NumNodes is the number of nodes in the graph (popcount(L)).
func (g *Graph) NumNodes() uint64 { return g.numNodes }

// NumColors is the number of colors the optional color bitmap tracks,
// or 0 if the graph was built without one.
func (g *Graph) NumColors() int { return g.numColors }

func (g *Graph) checkNode(op string, v uint64) error {
	if v >= g.numNodes {
		return &Error{Kind: QueryDomain, Op: op, Msg: "node index out of range"}
	}
	return nil
}

func (g *Graph) checkEdge(op string, i uint64) error {
	if i >= g.numEdges {
		return &Error{Kind: QueryDomain, Op: op, Msg: "edge index out of range"}
	}
	return nil
}

// symbolAccess returns the smallest symbol x such that i falls in the
// F-table's cumulative range for x: F[x] <= i < F[x+1] (spec §4.G,
// "smallest x such that i < F[x]"). This operates in the F-domain
// (edges grouped and ordered by their destination node's incoming
// symbol), distinct from EdgeLabel which reads W directly in the
// W-domain; backward and indegree both need the F-domain form.
func (g *Graph) symbolAccess(i uint64) kmer.Symbol {
	x := sort.Search(int(kmer.Sigma)+1, func(x int) bool { return i < g.f[x+1] })
	return kmer.Symbol(x)
}

// NodeToEdge returns the last outgoing edge of node v (0-indexed),
// the position L's rank/select index anchors node ranges on (spec
// §3's L invariant: "L[i]=1 iff edge i is the last outgoing edge of
// its source node").
func (g *Graph) NodeToEdge(v uint64) uint64 {
	pos, ok := g.l.Select1(v)
	if !ok {
		return g.numEdges
	}
	return pos
}

// EdgeToNode returns the 0-indexed node edge i belongs to: the number
// of nodes already closed (L=1) strictly before i.
func (g *Graph) EdgeToNode(i uint64) uint64 {
	return g.l.Rank1(i)
}

// NodeRange returns the inclusive [start, end] edge range of node v's
// outgoing edges.
func (g *Graph) NodeRange(v uint64) (start, end uint64) {
	end = g.NodeToEdge(v)
	if v == 0 {
		return 0, end
	}
	return g.NodeToEdge(v-1) + 1, end
}

// Outdegree returns the number of real outgoing edges of node v: the
// size of its edge range, or 0 if that single edge is the "$"
// out-dummy closing edge (spec §4.G).
func (g *Graph) Outdegree(v uint64) uint64 {
	start, end := g.NodeRange(v)
	size := end - start + 1
	if size == 1 && g.strip(g.w.Access(start)) == uint8(kmer.Sentinel) {
		return 0
	}
	return size
}

// Indegree returns the number of real edges arriving at node v (spec
// §4.G).
func (g *Graph) Indegree(v uint64) uint64 {
	j := g.NodeToEdge(v)
	y := g.symbolAccess(j)
	if y == kmer.Sentinel {
		return 0
	}
	first := g.Backward(j)
	last := g.nextEdgeAfter(first, y)
	return g.w.Rank(g.withFlag(y, true), last) - g.w.Rank(g.withFlag(y, true), first) + 1
}

func (g *Graph) strip(w uint8) uint8 { return w >> 1 }

func (g *Graph) flag(w uint8) bool { return w&1 == 1 }

func (g *Graph) withFlag(x kmer.Symbol, f bool) uint8 { return code(x, f) }

// Forward returns the first edge of the destination node of edge i, or
// NotFound if edge i is an out-dummy ("$"-labelled) closing edge (spec
// §4.G testable property: forward(backward(i)) is the first edge of
// the node of i).
func (g *Graph) Forward(i uint64) uint64 {
	x := g.strip(g.w.Access(i))
	if x == uint8(kmer.Sentinel) {
		return NotFound
	}
	start := g.f[x]
	nth := g.w.Rank(g.withFlag(kmer.Symbol(x), false), i)
	v := g.l.Rank1(start) + nth
	if v >= g.numNodes {
		return NotFound
	}
	first, _ := g.NodeRange(v)
	return first
}

// Backward returns the edge that Forward follows into edge i's node:
// the non-flagged edge, labelled with the last symbol of i's node, in
// the predecessor node (spec §4.G). That edge is not necessarily the
// predecessor's first edge.
func (g *Graph) Backward(i uint64) uint64 {
	x := g.symbolAccess(i)
	if x == kmer.Sentinel {
		return 0
	}
	xStart := g.f[x]
	nth := g.l.Rank1(i) - g.l.Rank1(xStart)
	pos, ok := g.w.Select(g.withFlag(x, false), nth)
	if !ok {
		return NotFound
	}
	return pos
}

// nextEdgeAfter returns the next edge after i labelled x (spec §4.G's
// next_edge), or g.numEdges if there is none.
func (g *Graph) nextEdgeAfter(i uint64, x kmer.Symbol) uint64 {
	r := 1 + g.w.Rank(g.withFlag(x, false), i+1)
	if r > g.maxRank[x] {
		return g.numEdges
	}
	pos, ok := g.w.Select(g.withFlag(x, false), r-1)
	if !ok {
		return g.numEdges
	}
	return pos
}

// Outgoing returns the destination node of node v's outgoing edge
// labelled x, or NotFound if v has no such edge.
func (g *Graph) Outgoing(v uint64, x kmer.Symbol) uint64 {
	start, end := g.NodeRange(v)
	for _, f := range [2]bool{false, true} {
		r := g.w.Rank(g.withFlag(x, f), end+1)
		if r == 0 {
			continue
		}
		sel, ok := g.w.Select(g.withFlag(x, f), r-1)
		if ok && sel >= start && sel <= end {
			return g.EdgeToNode(g.Forward(sel))
		}
	}
	return NotFound
}

// Incoming returns the source node of an edge labelled x arriving at
// node v, or NotFound if v has no such predecessor. It walks the same
// contiguous run of y-labelled predecessor edges Indegree counts,
// testing each candidate's leading label symbol (spec §4.G:
// "function-driven binary search on first_symbol(selector(i))"; here
// implemented as a linear scan over the run, which Indegree already
// bounds to a small count in practice — at most σ distinct leading
// symbols share a destination node).
func (g *Graph) Incoming(v uint64, x kmer.Symbol) uint64 {
	j := g.NodeToEdge(v)
	y := g.symbolAccess(j)
	if y == kmer.Sentinel {
		return NotFound
	}
	count := g.Indegree(v)
	i := g.Backward(j)
	for n := uint64(0); n < count && i < g.numEdges; n++ {
		src := g.EdgeToNode(i)
		if g.firstLabelOfNode(src) == x {
			return src
		}
		i = g.nextEdgeAfter(i, y)
	}
	return NotFound
}

// firstLabelOfNode returns the left-most symbol of node v's label.
// Used by Incoming to test a candidate predecessor's leading symbol;
// it reconstructs the full label with NodeLabel and returns its first
// symbol.
func (g *Graph) firstLabelOfNode(v uint64) kmer.Symbol {
	label := g.NodeLabel(v)
	if len(label) == 0 {
		return kmer.Sentinel
	}
	return label[0]
}

// NodeLabel reconstructs node v's (k-1)-symbol label by walking
// Backward k-2 times from its last outgoing edge and reading the
// label at each step, filling right-to-left; a "$" encountered before
// k-1 symbols are read pads the remaining left positions with "$"
// (spec §4.G).
func (g *Graph) NodeLabel(v uint64) []kmer.Symbol {
	nodeLen := g.K - 1
	label := make([]kmer.Symbol, nodeLen)
	edge := g.NodeToEdge(v)
	for i := nodeLen - 1; i >= 0; i-- {
		x := g.symbolAccess(edge)
		label[i] = x
		if x == kmer.Sentinel {
			break
		}
		edge = g.Backward(edge)
	}
	return label
}

// EdgeLabel reconstructs edge i's full k-symbol label: its source
// node's label followed by its own outgoing symbol.
func (g *Graph) EdgeLabel(i uint64) []kmer.Symbol {
	v := g.EdgeToNode(i)
	node := g.NodeLabel(v)
	return append(node, kmer.Symbol(g.strip(g.w.Access(i))))
}

// Index walks seq symbol by symbol via Outgoing, starting from the
// all-"$" source node (node 0, per spec §3 invariant 6), and returns
// the first and last edge of the node the walk ends at, or false if
// any step has no outgoing edge for the next symbol.
func (g *Graph) Index(seq []kmer.Symbol) (edge, lastEdgeOfNode uint64, ok bool) {
	v := uint64(0)
	var last uint64
	for _, x := range seq {
		next := g.Outgoing(v, x)
		if next == NotFound {
			return 0, 0, false
		}
		v = next
	}
	start, end := g.NodeRange(v)
	last = end
	return start, last, true
}
