// Command syre is the engine's command-line entrypoint: a long-running
// "serve" daemon that exposes watch/unwatch/query as MCP tools over
// stdio, plus a handful of one-shot convenience commands (query, pick,
// open, init) for driving the engine without an MCP client.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "syre: %s\n", err)
		os.Exit(1)
	}
}
