// Package main is the entry point for the sidefx CLI.
package main

import "sidefx.dev/pkg/sidefx/cmd"

func main() {
	cmd.Execute()
}
