// Package main is the operator CLI for sgdns-discovery: a second
// transport over the same internal/* packages the HTTP entrypoints
// drive (SPEC_FULL.md §10.3).
package main

import (
	"fmt"
	"os"

	"github.com/nprokhorov/sgdns-discovery/cmd/sgdnsctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
