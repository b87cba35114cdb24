package main

import (
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:     "syre",
	Short:   "syre - filesystem-watching state engine for Syre projects",
	Version: "v0.1.0",
	Long: `syre watches project and data-root directories, coalesces filesystem
events into application-level changes, and keeps an in-memory, queryable
model of every watched project's container graph.

Run "syre serve" to start the long-running daemon and expose its
watch/unwatch/final_path/query commands as MCP tools over stdio. The
other subcommands are one-shot conveniences that boot a transient
engine, do one thing, and exit.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
