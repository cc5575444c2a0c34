// csvview browses, filters and sorts delimited-text files in the terminal.
package main

import (
	"os"

	"github.com/wethinkt/go-csvview/internal/cmd"
	"github.com/wethinkt/go-csvview/internal/tuilog"
)

func main() {
	err := cmd.Execute()
	tuilog.Log.Close()
	if err != nil {
		os.Exit(1)
	}
}
