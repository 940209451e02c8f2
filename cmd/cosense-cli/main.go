package main

import (
	"log"

	"github.com/mithrel/cosense/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("cosense-cli: ")
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
