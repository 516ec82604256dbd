package main

import (
	"os"

	"github.com/teamcutter/xtract/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
