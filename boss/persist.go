package boss

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"

	"github.com/exascience/debruijn/internal"
	"github.com/exascience/debruijn/succinct"
)

// dbgMagic is the magic byte sequence every .dbg file starts with, the
// same role ElfastaMagic plays for the teacher's .elfasta format.
var dbgMagic = []byte{0xD3, 0xB0, 0x55, 0x01} // "de Bruijn", version 1

// A built graph is not itself a wavelet-tree/bit-vector serialization
// library, so the persisted layout stores the graph's raw per-edge W
// codes (one nibble each, values 0..9 fit in 4 bits) and per-edge L
// bits directly, and Load rebuilds the wavelet tree and sparse
// bit-vector from them via the same constructors Assemble uses. This
// trades a slightly larger on-disk footprint than a serialized
// rank/select index for not needing new (de)serialization methods on
// succinct.BitVector/WaveletTree; see DESIGN.md.
const dbgVersion = 1

// Save writes the graph to filename in the .dbg format (spec §6).
func Save(g *Graph, filename string) error {
	file := internal.FileCreate(filename)
	defer internal.Close(file)

	internal.Write(file, dbgMagic)
	writeUint32(file, dbgVersion)
	writeUint64(file, uint64(g.K))
	writeUint64(file, g.numEdges)
	writeUint64(file, g.numNodes)
	writeUint32(file, uint32(g.numColors))
	writeString(file, g.alphabet)
	for _, v := range g.f {
		writeUint64(file, v)
	}
	for _, v := range g.maxRank {
		writeUint64(file, v)
	}

	internal.Write(file, packNibbles(g.numEdges, func(i uint64) uint8 { return g.w.Access(i) }))
	internal.Write(file, packBits(g.numEdges, g.l.Get))
	if g.numColors > 0 {
		internal.Write(file, packBits(g.numEdges*uint64(g.numColors), g.colors.Get))
	}
	return nil
}

// Load memory-maps filename and reconstructs a Graph from its
// contents (spec §6, §5's "read-only and shareable across threads").
// The returned Graph owns the mapping; call Close to release it.
func Load(filename string) (*Graph, error) {
	file := internal.FileOpen(filename)
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, &Error{Kind: Io, Op: "load", Msg: err.Error()}
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, &Error{Kind: Io, Op: "load", Msg: err.Error()}
	}

	g, err := decode(data)
	if err != nil {
		_ = unix.Munmap(data)
		_ = file.Close()
		return nil, err
	}
	g.mmapped = data
	g.file = file
	return g, nil
}

// Close releases the memory mapping backing a Load'ed graph. It is a
// no-op on a graph built in-process by Assemble.
func (g *Graph) Close() {
	if g.mmapped == nil {
		return
	}
	if err := unix.Munmap(g.mmapped); err != nil {
		log.Panic(err)
	}
	g.mmapped = nil
	if err := g.file.Close(); err != nil {
		log.Panic(err)
	}
	g.file = nil
}

func decode(data []byte) (*Graph, error) {
	if len(data) < len(dbgMagic) {
		return nil, &Error{Kind: InputFormat, Op: "load", Msg: "file too short to contain the .dbg magic"}
	}
	for i, b := range dbgMagic {
		if data[i] != b {
			return nil, &Error{Kind: InputFormat, Op: "load", Msg: "not a .dbg file: bad magic"}
		}
	}
	off := len(dbgMagic)

	version := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if version != dbgVersion {
		return nil, &Error{Kind: InputFormat, Op: "load", Msg: fmt.Sprintf("unsupported .dbg version %d", version)}
	}

	k := binary.LittleEndian.Uint64(data[off:])
	off += 8
	numEdges := binary.LittleEndian.Uint64(data[off:])
	off += 8
	numNodes := binary.LittleEndian.Uint64(data[off:])
	off += 8
	numColors := binary.LittleEndian.Uint32(data[off:])
	off += 4

	alphaLen := binary.LittleEndian.Uint32(data[off:])
	off += 4
	alphabet := string(data[off : off+int(alphaLen)])
	off += int(alphaLen)

	g := &Graph{
		K:        int(k),
		numEdges: numEdges,
		numNodes: numNodes,
		alphabet: alphabet,
	}
	for i := range g.f {
		g.f[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	for i := range g.maxRank {
		g.maxRank[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}

	nibbleBytes := (int(numEdges) + 1) / 2
	codes := make([]uint8, numEdges)
	unpackNibbles(data[off:off+nibbleBytes], codes)
	off += nibbleBytes
	g.w = succinct.BuildWaveletTree(codes, codeAlphabet)

	lBytes := (int(numEdges) + 7) / 8
	l := succinct.NewSparseBitVector(numEdges)
	unpackBits(data[off:off+lBytes], numEdges, l.Set)
	off += lBytes
	l.Build()
	g.l = l

	if numColors > 0 {
		g.numColors = int(numColors)
		total := numEdges * uint64(numColors)
		cBytes := (int(total) + 7) / 8
		colors := succinct.NewBitVector(total)
		unpackBits(data[off:off+cBytes], total, colors.Set)
		off += cBytes
		colors.Build()
		g.colors = colors
	}

	return g, nil
}

func packNibbles(n uint64, at func(uint64) uint8) []byte {
	out := make([]byte, (n+1)/2)
	for i := uint64(0); i < n; i++ {
		v := at(i) & 0xF
		if i%2 == 0 {
			out[i/2] |= v
		} else {
			out[i/2] |= v << 4
		}
	}
	return out
}

func unpackNibbles(data []byte, out []uint8) {
	for i := range out {
		b := data[i/2]
		if i%2 == 0 {
			out[i] = b & 0xF
		} else {
			out[i] = b >> 4
		}
	}
}

func packBits(n uint64, at func(uint64) bool) []byte {
	out := make([]byte, (n+7)/8)
	for i := uint64(0); i < n; i++ {
		if at(i) {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func unpackBits(data []byte, n uint64, set func(uint64, bool)) {
	for i := uint64(0); i < n; i++ {
		set(i, data[i/8]&(1<<(i%8)) != 0)
	}
}

func writeUint32(f *os.File, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	internal.Write(f, buf[:])
}

func writeUint64(f *os.File, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	internal.Write(f, buf[:])
}

func writeString(f *os.File, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	internal.Write(f, lenBuf[:])
	internal.WriteString(f, s)
}
