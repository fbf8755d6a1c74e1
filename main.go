// Smartie - Retrieval-augmented assistant for the MadeWithNestlé site.
//
// Smartie combines a scraped-content vector store with an in-memory
// knowledge graph to answer product, recipe, and nutrition questions.
package main

import (
	"fmt"
	"os"

	"github.com/madewith/smartie/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
