//go:build ignore
// +build ignore

// Generates Markdown and man pages for every command into ./docs.
package main

import (
	"log"

	"github.com/spf13/cobra/doc"

	"github.com/mithrel/cosense/internal/cli"
)

func main() {
	root := cli.NewRootCmd()
	root.DisableAutoGenTag = true

	if err := doc.GenMarkdownTree(root, "./docs/markdown"); err != nil {
		log.Fatal(err)
	}

	header := &doc.GenManHeader{
		Title:   "COSENSE-CLI",
		Section: "1",
		Source:  "cosense-cli",
	}
	if err := doc.GenManTree(root, header, "./docs/man"); err != nil {
		log.Fatal(err)
	}
}
