// The main package for the covid-geo-etl executable.
package main

import (
	"github.com/outbreakmap/covid-geo-etl/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
