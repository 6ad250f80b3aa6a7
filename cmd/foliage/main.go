package main

import (
	"log"

	"github.com/mithrel/foliage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
