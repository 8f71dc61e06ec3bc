// ABOUTME: Entry point for the materialhub CLI
// ABOUTME: Terminal client for browsing, uploading and moderating materials

package main

import (
	"fmt"
	"os"

	"github.com/materialhub/materialhub-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
