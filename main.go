// A succinct de Bruijn graph builder and query tool for DNA k-mers,
// assembling a BOSS representation from a counted k-mer set and
// answering rank/select-based traversal queries against it.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/debruijn/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: build, pack, query, rc")
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = cmd.Build()
	case "pack":
		err = cmd.Pack()
	case "query":
		err = cmd.Query()
	case "rc":
		err = cmd.Rc()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
