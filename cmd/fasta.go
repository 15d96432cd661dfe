package cmd

import (
	"bufio"
	"bytes"
	"log"
	"os"

	"github.com/exascience/debruijn/internal"
)

// fastaRecord is one entry of a FASTA file: a header line (without the
// leading '>') and its concatenated sequence lines.
type fastaRecord struct {
	Header string
	Seq    []byte
}

// scanFasta reads every record of a FASTA file, the way
// fasta.ParseFai scans an .fai file line by line with a bufio.Scanner
// rather than buffering the whole file.
func scanFasta(filename string, each func(fastaRecord)) {
	f := internal.FileOpen(filename)
	defer internal.Close(f)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var header string
	var seq bytes.Buffer
	have := false

	flush := func() {
		if have {
			each(fastaRecord{Header: header, Seq: append([]byte(nil), seq.Bytes()...)})
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			header = string(line[1:])
			have = true
			continue
		}
		seq.Write(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}
}

// writeFasta writes header/sequence pairs wrapped at width columns per
// line, the conventional FASTA line width.
func writeFasta(f *os.File, header string, seq []byte, width int) {
	internal.WriteString(f, ">")
	internal.WriteString(f, header)
	internal.WriteString(f, "\n")
	for i := 0; i < len(seq); i += width {
		end := i + width
		if end > len(seq) {
			end = len(seq)
		}
		internal.Write(f, seq[i:end])
		internal.WriteString(f, "\n")
	}
}
