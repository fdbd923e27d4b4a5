// Package main is the entry point for the ocdsmap CLI.
package main

import "ocdsmap.dev/pkg/ocdsmap/cmd"

func main() {
	cmd.Execute()
}
