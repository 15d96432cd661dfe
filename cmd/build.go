package cmd

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/exascience/debruijn/boss"
	"github.com/exascience/debruijn/dummies"
	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/ingest"
	"github.com/exascience/debruijn/internal"
	"github.com/exascience/debruijn/kmer"
	"github.com/exascience/debruijn/merge"
)

const buildUsage = "elprep debruijn build, construct a succinct de Bruijn graph index.\n\n" +
	"Usage:\n" +
	"  debruijn build input [-i input2 ...] [-k K] [-m MB] [-o PREFIX] [-v] [-d]\n\n" +
	"input may be a raw k-mer file or a previously written .packed file.\n" +
	"Passing -i more than once builds a per-edge color bitmap over the given\n" +
	"input files (SPEC_FULL §8.4's multi-dataset build path).\n\n" +
	HelpMessage

// multiFlag accumulates repeated -i flags into a slice, the way the
// teacher's cmd package repeats -reference-t/-reference-T rather than
// accepting a delimited list.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(s string) error {
	*m = append(*m, s)
	return nil
}

// nodesLess and edgesLess are the two colex orders the build pipeline
// sorts by (spec §4.C): node order on the source node's colex key, and
// edge order on the destination node's colex key.
func nodesLess(k int) extsort.Less {
	return func(a, b kmer.Kmer) bool { return kmer.ComparePrefix(a, b, k) < 0 }
}

func edgesLess(k int) extsort.Less {
	return func(a, b kmer.Kmer) bool { return kmer.CompareSuffix(a, b, k) < 0 }
}

// loadRealEdgeSet reads a raw k-mer file directly into an in-memory
// set of every k-mer it contains, canonicalized the same way
// ingest.Run canonicalizes the shared node/edge streams (each k-mer
// and its reverse complement both present), for Build's multi-input
// color-bitmap path to test membership against (SPEC_FULL §8.4). This
// keeps one dataset's full edge set in memory per -i flag, a
// deliberate scope reduction versus a succinct per-dataset membership
// structure; see DESIGN.md.
func loadRealEdgeSet(filename string, k int) (map[kmer.Kmer]bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f)

	set := make(map[kmer.Kmer]bool)
	buf := make([]byte, ingest.RecordSize)
	for {
		n, rerr := io.ReadFull(f, buf)
		if n == ingest.RecordSize {
			x := kmer.Kmer{
				Hi: binary.LittleEndian.Uint64(buf[0:8]),
				Lo: binary.LittleEndian.Uint64(buf[8:16]),
			}
			set[x] = true
			set[kmer.ReverseComplement(x, k)] = true
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}
	return set, nil
}

// Build implements the `build` CLI subcommand (spec §6, SPEC_FULL
// §4.F/§8.1/§8.4).
func Build() error {
	var (
		k           int
		m           int
		outputPrefix string
		varOrder    bool
		shiftDummies bool
		inputs      multiFlag
	)

	var flags flag.FlagSet
	flags.IntVar(&k, "k", 0, "k-mer length")
	flags.IntVar(&m, "m", 512, "memory budget in MB")
	flags.StringVar(&outputPrefix, "o", "", "output file prefix")
	flags.BoolVar(&varOrder, "v", false, "track variable-order LCS bytes")
	flags.BoolVar(&shiftDummies, "d", true, "use the shifted incoming-dummy representation")
	flags.Var(&inputs, "i", "additional input file (repeatable, enables the color bitmap)")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, buildUsage)
		os.Exit(1)
	}
	primaryInput := getFilename(os.Args[2], buildUsage)
	parseFlags(&flags, 3, buildUsage)

	if !checkExist("input", primaryInput) {
		return errParameter
	}
	if k == 0 {
		fmt.Fprintln(os.Stderr, "Error: -k is required.")
		return errParameter
	}
	if !checkK(k) {
		return errParameter
	}
	if outputPrefix == "" {
		ext := filepath.Ext(primaryInput)
		outputPrefix = strings.TrimSuffix(filepath.Base(primaryInput), ext)
	}
	if !checkCreate("output", outputPrefix+".dbg") {
		return errParameter
	}
	for _, in := range inputs {
		if !checkExist("i", in) {
			return errParameter
		}
	}

	if !shiftDummies {
		log.Println("Note: the shifted incoming-dummy representation is the only one this build supports; -d=false is accepted but has no effect.")
	}
	if varOrder {
		log.Println("Note: -v only affects `pack`'s .packed.lcs output; `build` does not persist LCS bytes into the .dbg file.")
	}

	allInputs := append([]string{primaryInput}, inputs...)

	var g *boss.Graph
	var err error
	timedRun(true, "", "Building graph.", 1, func() {
		if len(allInputs) > 1 {
			g, err = buildColored(allInputs, k, m, outputPrefix)
			return
		}
		if strings.HasSuffix(primaryInput, ".packed") {
			g, err = boss.AssemblePacked(primaryInput, k)
			return
		}
		g, err = buildFromRaw(primaryInput, k, m, outputPrefix)
	})
	if err != nil {
		log.Println("Error building graph:", err)
		return errParameter
	}

	if err := boss.Save(g, outputPrefix+".dbg"); err != nil {
		log.Println("Error writing index:", err)
		return errParameter
	}
	log.Printf("Wrote %s.dbg: %d edges, %d nodes.\n", outputPrefix, g.NumEdges(), g.NumNodes())
	return nil
}

// buildFromRaw runs the whole ingest/sort/dummy/merge/assemble
// pipeline over a single raw k-mer file in one process.
func buildFromRaw(input string, k, m int, outputPrefix string) (*boss.Graph, error) {
	scratch := scratchDir(outputPrefix)
	batch := batchSizeFromMB(m)

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f)

	nodes := extsort.NewBuilder(nodesLess(k), scratch, batch)
	nodesAgain := extsort.NewBuilder(nodesLess(k), scratch, batch)
	edges := extsort.NewBuilder(edgesLess(k), scratch, batch)

	if err := ingest.Run(f, k, ingest.Sinks{Nodes: nodes, NodesAgain: nodesAgain, Edges: edges}); err != nil {
		return nil, err
	}

	a := nodes.Finish()
	b := edges.Finish()

	var inDummies []kmer.Dummy
	var outDummies []kmer.Kmer
	if err := dummies.Find(a, b, k,
		func(d kmer.Dummy) { inDummies = append(inDummies, d) },
		func(n kmer.Kmer) { outDummies = append(outDummies, n) },
	); err != nil {
		a.Close()
		b.Close()
		return nil, err
	}
	a.Close()
	b.Close()

	sorter := dummies.NewSortDummies(k - 1)
	for _, d := range inDummies {
		sorter.Push(d)
	}
	sorted := sorter.Finish()

	a2 := nodesAgain.Finish()
	defer a2.Close()

	return boss.Assemble(a2, k, sorted, outDummies), nil
}

// buildColored is buildFromRaw's counterpart when more than one input
// file was given: it runs the same pipeline once over the concatenated
// inputs to build the graph topology, and separately loads each
// input's own edge set to decide, per real edge, which datasets it
// belongs to (SPEC_FULL §8.4).
func buildColored(inputs []string, k, m int, outputPrefix string) (*boss.Graph, error) {
	scratch := scratchDir(outputPrefix)
	batch := batchSizeFromMB(m)

	nodes := extsort.NewBuilder(nodesLess(k), scratch, batch)
	nodesAgain := extsort.NewBuilder(nodesLess(k), scratch, batch)
	edges := extsort.NewBuilder(edgesLess(k), scratch, batch)

	for _, in := range inputs {
		f, err := os.Open(in)
		if err != nil {
			return nil, err
		}
		err = ingest.Run(f, k, ingest.Sinks{Nodes: nodes, NodesAgain: nodesAgain, Edges: edges})
		internal.Close(f)
		if err != nil {
			return nil, err
		}
	}

	sets := make([]map[kmer.Kmer]bool, len(inputs))
	for i, in := range inputs {
		set, err := loadRealEdgeSet(in, k)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	a := nodes.Finish()
	b := edges.Finish()

	var inDummies []kmer.Dummy
	var outDummies []kmer.Kmer
	if err := dummies.Find(a, b, k,
		func(d kmer.Dummy) { inDummies = append(inDummies, d) },
		func(n kmer.Kmer) { outDummies = append(outDummies, n) },
	); err != nil {
		a.Close()
		b.Close()
		return nil, err
	}
	a.Close()
	b.Close()

	sorter := dummies.NewSortDummies(k - 1)
	for _, d := range inDummies {
		sorter.Push(d)
	}
	sorted := sorter.Finish()

	a2 := nodesAgain.Finish()
	defer a2.Close()

	colorOf := func(r merge.Record, edgeIndex uint64) []int {
		if r.Tag != merge.RealEdge {
			return nil
		}
		syms := append(kmer.Unpack(r.Node, r.Real), r.Label)
		edgeKmer := kmer.Pack(syms)
		var colors []int
		for i, set := range sets {
			if set[edgeKmer] {
				colors = append(colors, i)
			}
		}
		return colors
	}

	return boss.AssembleColored(a2, k, sorted, outDummies, len(inputs), colorOf), nil
}
