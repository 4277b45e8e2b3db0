// Package main is the entry point for linkctl, the operator tool for catalog delivery links.
package main

import (
	"os"

	"github.com/jasim8799/api/cmd/linkctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
