// Package config loads chocopyc's project-level settings from a
// chocopyc.yaml file, the same viper-backed pattern
// jinterlante1206-AleutianLocal/cmd/aleutian/cli_commands.go uses to load
// its stack config: an explicit viper.New() instance pointed at a single
// config file rather than viper's global singleton, so tests can load
// more than one Config without state bleeding between them.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is chocopyc's project-level configuration, overridable per field
// by the matching cmd/chocopy flag (spec.md §6's `-o`/`-emit`/`-run`/
// `-assem` surface).
type Config struct {
	// OutputDir is where -o writes compiled artifacts when given a
	// directory instead of a single file path.
	OutputDir string `mapstructure:"output_dir"`
	// EmitStage selects what is printed for each successfully compiled
	// file, matching spec.md §6's `-emit` flag: "ir" (default) prints the
	// IR function listing; "symtab" and "check" print nothing. Every pass
	// runs regardless.
	EmitStage string `mapstructure:"emit_stage"`
	// RuntimePath names the external toolchain program that -run executes
	// with the module's BuildID (spec.md's Non-goals exclude building that
	// runtime, but naming its location is still this compiler's job).
	RuntimePath string `mapstructure:"runtime_path"`
	// MaxWorkers bounds the errgroup fan-out across input files; 0 means
	// no limit.
	MaxWorkers int `mapstructure:"max_workers"`
}

// Default returns the configuration used when no chocopyc.yaml is found.
func Default() Config {
	return Config{
		OutputDir: ".",
		EmitStage: "ir",
	}
}

// Load reads path (chocopyc.yaml by default) into a Config, falling back
// to Default() when the file does not exist. A malformed config file that
// does exist is reported as an error rather than silently ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("checking config file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config file %s: %w", path, err)
	}
	return cfg, nil
}
