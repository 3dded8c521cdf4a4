package main

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// runToolchain execs the downstream assembler/simulator configured by
// RuntimePath once per successfully compiled module (spec.md §6's `-run`).
// The assembler and simulator are external collaborators (spec.md's
// Non-goals exclude building them); this only launches and reports their
// exit status precisely, down to the raw wait status rather than
// os/exec's coarser ExitError.ExitCode, so scenario exit codes 2/3/4
// (spec.md §8: Div/OOB/None at runtime) survive the exec boundary intact.
func runToolchain(results []fileResult) error {
	for _, r := range results {
		if r.mod == nil {
			continue
		}
		if cfg.RuntimePath == "" {
			return fmt.Errorf("chocopyc.yaml: runtime_path is unset, cannot -run %s", r.path)
		}

		cmd := exec.Command(cfg.RuntimePath, r.mod.BuildID)
		cmd.Stdout = nil
		cmd.Stderr = nil
		err := cmd.Run()
		if err == nil {
			continue
		}

		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return fmt.Errorf("running toolchain for %s: %w", r.path, err)
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			exitCode = unix.WaitStatus(ws).ExitStatus()
		} else {
			exitCode = exitErr.ExitCode()
		}
	}
	return nil
}
