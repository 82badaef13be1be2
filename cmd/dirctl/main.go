// Command dirctl browses and searches the directory from a terminal through
// the same paged list model the apps use.
package main

import (
	"fmt"
	"os"

	"samaj-directory/cmd/dirctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
