// Command chocopy is the CLI driver wiring the Symbol Table Generator,
// Declaration Analyzer, Type Checker, and IR Builder into a single
// pipeline (SPEC_FULL.md §0/§6). It is itself an ambient concern carried
// regardless of spec.md's Non-goals: spec.md treats "the command-line
// driver" as an external collaborator for the core passes, but a runnable
// repo still needs one, built the way jinterlante1206-AleutianLocal's
// cmd/aleutian wires cobra + viper.
package main

import (
	"log"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
	os.Exit(exitCode)
}
