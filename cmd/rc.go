package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/debruijn/internal"
)

const rcUsage = "elprep debruijn rc, reverse-complement a FASTA file.\n\n" +
	"Usage:\n" +
	"  debruijn rc in.fasta out.fasta\n\n" +
	HelpMessage

// complementTable maps every FASTA nucleotide byte (including the
// ambiguity code N and both cases) to its complement; any other byte
// maps to itself, so a rc pass never fails on unexpected input.
var complementTable [256]byte

func init() {
	for i := range complementTable {
		complementTable[i] = byte(i)
	}
	pairs := "ATCGNatcgn"
	compl := "TAGCNtagcn"
	for i := 0; i < len(pairs); i++ {
		complementTable[pairs[i]] = compl[i]
	}
}

func reverseComplementBytes(seq []byte) []byte {
	out := make([]byte, len(seq))
	n := len(seq)
	for i, b := range seq {
		out[n-1-i] = complementTable[b]
	}
	return out
}

// Rc implements the `rc` CLI subcommand (spec §6, "reverse-complement
// utility"), grounded on original_source/SeqIO/rc_file.cpp: read every
// FASTA record and write it back out with its sequence
// reverse-complemented and its header unchanged.
func Rc() error {
	var flags flag.FlagSet
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, rcUsage)
		os.Exit(1)
	}
	in := getFilename(os.Args[2], rcUsage)
	out := getFilename(os.Args[3], rcUsage)
	parseFlags(&flags, 4, rcUsage)

	if !checkExist("in.fasta", in) {
		return errParameter
	}
	if !checkCreate("out.fasta", out) {
		return errParameter
	}

	f := internal.FileCreate(out)
	defer internal.Close(f)

	scanFasta(in, func(rec fastaRecord) {
		writeFasta(f, rec.Header, reverseComplementBytes(rec.Seq), 70)
	})

	log.Println("Wrote reverse-complemented sequences to", out)
	return nil
}
