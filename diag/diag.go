// Package diag implements the shared diagnostics model of spec.md §6-§7:
// a single flat, source-ordered error list shared by the Symbol Table
// Generator, Declaration Analyzer, and Type Checker.
package diag

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/chocopy-lang/corec/ast"
)

// Error is one reported diagnostic. List.Add never sets Syntax, so it is
// false on every entry, including the parser's syntax errors that
// cmd/chocopy forwards through Add. Soft is likewise never set and nothing
// reads it; HasErrors counts every entry.
type Error struct {
	Location ast.Location `json:"location"`
	Message  string       `json:"message"`
	Syntax   bool         `json:"syntax"`
	Soft     bool         `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Location.First.Line, e.Location.First.Col, e.Message)
}

// List accumulates errors in the order passes choose to report them, then
// sorts them into source order for output (spec.md §6: "a single flat
// list... attached in source order").
type List struct {
	errs []*Error
}

// Add appends a diagnostic at loc. If a diagnostic was already reported at
// exactly the same location, the new message is concatenated to it with a
// tab separator instead of appending a new entry (spec.md §6: "Duplicate
// messages against the same node are concatenated with a tab separator").
func (l *List) Add(loc ast.Location, message string) {
	for _, e := range l.errs {
		if e.Location == loc {
			e.Message = e.Message + "\t" + message
			return
		}
	}
	l.errs = append(l.errs, &Error{Location: loc, Message: message})
}

// Addf is Add with fmt.Sprintf formatting.
func (l *List) Addf(loc ast.Location, format string, args ...any) {
	l.Add(loc, fmt.Sprintf(format, args...))
}

// Append merges other's diagnostics into l, preserving duplicate-message
// joining semantics.
func (l *List) Append(other List) {
	for _, e := range other.errs {
		l.Add(e.Location, e.Message)
	}
}

// HasErrors reports whether any diagnostic has been recorded. Per spec.md
// §7, this gates IR emission: "if any error is recorded, the IR builder is
// not invoked."
func (l *List) HasErrors() bool { return len(l.errs) > 0 }

// Sorted returns the diagnostics ordered by source position.
func (l *List) Sorted() []*Error {
	out := make([]*Error, len(l.errs))
	copy(out, l.errs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location.First, out[j].Location.First
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return out
}

// JSON renders the sorted diagnostic list as the flat JSON array described
// in spec.md §6.
func (l *List) JSON() ([]byte, error) {
	return json.Marshal(l.Sorted())
}

// String renders the list as one diagnostic per line, "line:col: message",
// splitting any tab-joined duplicate messages onto their own lines.
func (l *List) String() string {
	var sb strings.Builder
	for _, e := range l.Sorted() {
		for _, part := range strings.Split(e.Message, "\t") {
			fmt.Fprintf(&sb, "%d:%d: %s\n", e.Location.First.Line, e.Location.First.Col, part)
		}
	}
	return sb.String()
}
