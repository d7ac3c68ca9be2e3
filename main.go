package main

import (
	"os"

	"github.com/abhisek/knowflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
