package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/exascience/debruijn/boss"
	"github.com/exascience/debruijn/kmer"
)

const queryUsage = "elprep debruijn query, look up k-mers in a built index.\n\n" +
	"Usage:\n" +
	"  debruijn query index.dbg queries.fa\n\n" +
	HelpMessage

func symbolsFromBytes(seq []byte) ([]kmer.Symbol, bool) {
	out := make([]kmer.Symbol, len(seq))
	for i, b := range seq {
		switch b {
		case 'A', 'a':
			out[i] = kmer.A
		case 'C', 'c':
			out[i] = kmer.C
		case 'G', 'g':
			out[i] = kmer.G
		case 'T', 't':
			out[i] = kmer.T
		default:
			return nil, false
		}
	}
	return out, true
}

// Query implements the `query` CLI subcommand (spec §6): print
// per-query timing and lookup result to stdout for every FASTA record
// in queries.fa, one k-mer per record.
func Query() error {
	var flags flag.FlagSet
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, queryUsage)
		os.Exit(1)
	}
	indexPath := getFilename(os.Args[2], queryUsage)
	queriesPath := getFilename(os.Args[3], queryUsage)
	parseFlags(&flags, 4, queryUsage)

	if !checkExist("index.dbg", indexPath) {
		return errParameter
	}
	if !checkExist("queries.fa", queriesPath) {
		return errParameter
	}

	g, err := boss.Load(indexPath)
	if err != nil {
		log.Println("Error loading index:", err)
		return errParameter
	}
	defer g.Close()

	total, found := 0, 0
	scanFasta(queriesPath, func(rec fastaRecord) {
		total++
		start := time.Now()
		syms, ok := symbolsFromBytes(rec.Seq)
		if !ok {
			fmt.Printf("%s\t%s\tinvalid-sequence\n", rec.Header, time.Since(start))
			return
		}
		_, _, hit := g.Index(syms)
		elapsed := time.Since(start)
		if hit {
			found++
			fmt.Printf("%s\t%s\tfound\n", rec.Header, elapsed)
		} else {
			fmt.Printf("%s\t%s\tabsent\n", rec.Header, elapsed)
		}
	})

	log.Printf("%d/%d queries found.\n", found, total)
	return nil
}
