package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/debruijn/dummies"
	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/ingest"
	"github.com/exascience/debruijn/internal"
	"github.com/exascience/debruijn/kmer"
	"github.com/exascience/debruijn/merge"
)

const packUsage = "elprep debruijn pack, sort and merge k-mers into a packed-edge file.\n\n" +
	"Usage:\n" +
	"  debruijn pack input -k K [-m MB] [-o PREFIX] [-v]\n\n" +
	HelpMessage

// Pack implements the `pack` CLI subcommand: components B-E of the
// build pipeline (ingest, sort, dummy discovery, merge), writing their
// output as a .packed file that `build` can later assemble without
// repeating the sort (SPEC_FULL §8.1's pack/build split, grounded on
// original_source/cosmo-pack.cpp).
func Pack() error {
	var (
		k            int
		m            int
		outputPrefix string
		varOrder     bool
	)

	var flags flag.FlagSet
	flags.IntVar(&k, "k", 0, "k-mer length")
	flags.IntVar(&m, "m", 512, "memory budget in MB")
	flags.StringVar(&outputPrefix, "o", "", "output file prefix")
	flags.BoolVar(&varOrder, "v", false, "also write a .packed.lcs variable-order file")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, packUsage)
		os.Exit(1)
	}
	input := getFilename(os.Args[2], packUsage)
	parseFlags(&flags, 3, packUsage)

	if !checkExist("input", input) {
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
		outputPrefix = "out"
	}
	if !checkCreate("output", outputPrefix+".packed") {
		return errParameter
	}

	scratch := scratchDir(outputPrefix)
	batch := batchSizeFromMB(m)

	f := internal.FileOpen(input)
	defer internal.Close(f)

	nodes := extsort.NewBuilder(nodesLess(k), scratch, batch)
	nodesAgain := extsort.NewBuilder(nodesLess(k), scratch, batch)
	edges := extsort.NewBuilder(edgesLess(k), scratch, batch)

	var buildErr error
	timedRun(true, "", "Creating and sorting runs.", 1, func() {
		buildErr = ingest.Run(f, k, ingest.Sinks{Nodes: nodes, NodesAgain: nodesAgain, Edges: edges})
	})
	if buildErr != nil {
		log.Println("Error reading input:", buildErr)
		return errParameter
	}

	a := nodes.Finish()
	b := edges.Finish()

	var inDummies []kmer.Dummy
	var outDummies []kmer.Kmer
	timedRun(true, "", "Finding dummy edges.", 2, func() {
		buildErr = dummies.Find(a, b, k,
			func(d kmer.Dummy) { inDummies = append(inDummies, d) },
			func(n kmer.Kmer) { outDummies = append(outDummies, n) },
		)
	})
	a.Close()
	b.Close()
	if buildErr != nil {
		log.Println("Error finding dummy edges:", buildErr)
		return errParameter
	}

	var sorted []kmer.Dummy
	timedRun(true, "", "Sorting dummy edges.", 3, func() {
		sorter := dummies.NewSortDummies(k - 1)
		for _, d := range inDummies {
			sorter.Push(d)
		}
		sorted = sorter.Finish()
	})

	a2 := nodesAgain.Finish()
	defer a2.Close()

	lcsFilename := ""
	if varOrder {
		lcsFilename = outputPrefix + ".packed.lcs"
	}

	var f2 [int(kmer.Sigma) + 2]uint64
	timedRun(true, "", "Merging and emitting the packed-edge stream.", 4, func() {
		f2, buildErr = merge.SavePacked(a2, k, sorted, outDummies, outputPrefix+".packed", lcsFilename)
	})
	if buildErr != nil {
		log.Println("Error writing packed file:", buildErr)
		return errParameter
	}

	log.Printf("Wrote %s.packed (F=%v)\n", outputPrefix, f2)
	return nil
}
