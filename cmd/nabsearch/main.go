// Package main provides the entry point for the nabsearch CLI.
package main

import (
	"os"

	"github.com/tislab/nabsearch/cmd/nabsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
