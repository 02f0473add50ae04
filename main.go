package main

import (
	"os"

	"github.com/abhisek/nexus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
