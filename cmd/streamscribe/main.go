// streamscribe is a terminal dashboard for a live transcription server.
package main

import (
	"os"

	"github.com/jwulff/streamscribe/cmd/streamscribe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
