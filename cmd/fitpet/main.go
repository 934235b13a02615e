// Package main is the single-binary entrypoint for fitpet.
package main

import "github.com/fitpet-app/fitpet/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
