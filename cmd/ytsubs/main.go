// Command ytsubs serves YouTube transcripts over HTTP and fetches them from the terminal.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
