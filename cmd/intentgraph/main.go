// Command intentgraph routes free-text requests to intent-specific
// handlers backed by a text-generation model.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
