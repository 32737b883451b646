package main

import (
	"os"

	"github.com/lifesim-quest/lifesim-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
