// Command goeq renders, inspects and validates equation system documents.
//
// Usage:
//
//	goeq render system.yaml --format latex
//	goeq names system.yaml
//	goeq validate system.yaml
package main

import (
	"fmt"
	"os"

	"github.com/njchilds90/goeq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
