package diag

import "golang.org/x/xerrors"

// ICE ("internal compiler error") wraps a violated invariant — a broken
// assumption in ir/build such as a dispatch slot that should exist but
// doesn't. Unlike List entries, an ICE is raised as a panic and halts the
// current pass; cmd/chocopy recovers it at the pipeline boundary and adds
// its message to that file's List, where it is printed with the file's
// other diagnostics.
func ICE(format string, args ...any) error {
	return xerrors.Errorf("internal compiler error: "+format, args...)
}

// Wrap attaches ctx to err using xerrors' %w so callers recovering a panic
// at a pass boundary retain the original cause and its frame.
func Wrap(ctx string, err error) error {
	return xerrors.Errorf("%s: %w", ctx, err)
}
