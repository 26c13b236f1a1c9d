// Package main is the entry point for stocksync.
package main

import (
	"os"

	"github.com/mhollis/stocksync/cmd/stocksync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
