// Command bqsql runs queries and inspects tables of a database through the
// bqsql client.
package main

import (
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Version information, set at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
