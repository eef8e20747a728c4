package main

import (
	"os"

	"github.com/daios-ai/xpr/cmd/xpr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
