// Package main validates a content tree: every species and move parses, every
// team resolves under its ruleset, and every AI domain is well formed.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/content"
)

func main() {
	dir := flag.String("dir", "content", "path to content directory")
	flag.Parse()

	start := time.Now()
	bundle, err := content.Load(config.ContentConfig{Dir: *dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := bundle.Check(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("content ok: %d species, %d moves, %d rulesets, %d teams, %d domains in %s\n",
		len(bundle.Dex.AllSpecies()), len(bundle.Dex.Moves()), len(bundle.Rulesets.All()),
		len(bundle.Teams), len(bundle.Domains), time.Since(start).Round(time.Millisecond))
}
