package main

import (
	"os"

	"github.com/rulegate/rulegate/cmd/rulegate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
