package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/chocopy-lang/corec/internal/config"
)

// exitCode is set by a Run function before returning so main can exit with
// the precise code a scenario demands (spec.md §6/§8) after cobra's own
// Execute() has already unwound, mirroring how jinterlante1206-AleutianLocal's
// cmd/aleutian commands call log.Fatalf for the unrecoverable case and let
// main's defer-free os.Exit carry the rest.
var exitCode int

var (
	outPath     string
	emitStage   string
	runAfter    bool
	assemOutput bool
	configPath  string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "chocopy [flags] <input...>",
		Short: "ChocoPy compiler core: symbol tables, type checking, and IR lowering",
		Args:  cobra.MinimumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loaded, err := config.Load(configPath)
			if err != nil {
				log.Fatalf("loading %s: %v", configPath, err)
			}
			cfg = loaded
			if emitStage != "" {
				cfg.EmitStage = emitStage
			}
			if outPath != "" {
				cfg.OutputDir = outPath
			}
		},
		RunE: runCompile,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&outPath, "o", "o", "", "output directory for compiled artifacts")
	rootCmd.Flags().StringVar(&emitStage, "emit", "", "stage whose output to print to stdout (symtab|check|ir); only ir prints, and -assem replaces it")
	rootCmd.Flags().BoolVar(&runAfter, "run", false, "invoke the downstream assembler/simulator toolchain after a successful build")
	rootCmd.Flags().BoolVar(&assemOutput, "assem", false, "print assembly to stdout")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "chocopyc.yaml", "path to the project config file")
}
