package main

import (
	"os"

	"github.com/spigell/job-router/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
