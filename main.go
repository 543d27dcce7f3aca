package main

import (
	"os"

	"github.com/opsrx/frsweep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
