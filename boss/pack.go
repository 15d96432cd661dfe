package boss

import (
	"encoding/binary"
	"io/ioutil"

	"github.com/exascience/debruijn/kmer"
	"github.com/exascience/debruijn/merge"
)

// AssemblePacked builds a Graph directly from a previously written
// .packed file (the output of merge.SavePacked), the way
// cosmo-build.cpp's non-KMC path reads back cosmo-pack's packed-edge
// file instead of re-running the sort/merge stages (SPEC_FULL §8.1's
// pack/build split).
func AssemblePacked(filename string, edgeLength int) (*Graph, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, &Error{Kind: Io, Op: "assemble-packed", Msg: err.Error()}
	}

	footerLen := 8 * (int(kmer.Sigma) + 3) // F-table (sigma+2) plus k
	if len(data) < footerLen {
		return nil, &Error{Kind: InputFormat, Op: "assemble-packed", Msg: "packed file too short for its footer"}
	}
	numEdges := uint64(len(data) - footerLen)

	codes := make([]uint8, numEdges)
	lastEdge := make([]bool, numEdges)
	for i := uint64(0); i < numEdges; i++ {
		label, minusFlag, firstEndNode := merge.UnpackCode(data[i])
		codes[i] = code(label, minusFlag)
		lastEdge[i] = firstEndNode
	}

	footer := data[numEdges:]
	k := binary.LittleEndian.Uint64(footer[8*(int(kmer.Sigma)+2):])
	if int(k) != edgeLength {
		return nil, &Error{Kind: InputFormat, Op: "assemble-packed", Msg: "packed file's k does not match the requested edge length"}
	}

	return buildFromCodes(edgeLength, codes, lastEdge), nil
}
