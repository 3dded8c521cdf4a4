package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chocopy-lang/corec/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validProgram is a minimal parser-shaped JSON AST dump for
// "print(1 + 2)" (SPEC_FULL.md §0's AST input contract), the same shape
// ast/json.go decodes.
const validProgram = `{
	"kind": "Program",
	"location": {"first": {"line": 1, "col": 1}, "last": {"line": 1, "col": 13}},
	"declarations": [],
	"statements": [
		{
			"kind": "ExprStmt",
			"location": {"first": {"line": 1, "col": 1}, "last": {"line": 1, "col": 13}},
			"expr": {
				"kind": "CallExpr",
				"location": {"first": {"line": 1, "col": 1}, "last": {"line": 1, "col": 13}},
				"function": {"kind": "Identifier", "location": {}, "name": "print"},
				"args": [{
					"kind": "BinaryExpr",
					"location": {},
					"left": {"kind": "IntegerLiteral", "location": {}, "value": 1},
					"operator": "+",
					"right": {"kind": "IntegerLiteral", "location": {}, "value": 2}
				}]
			}
		}
	]
}`

const syntaxErrorProgram = `{
	"kind": "Program",
	"location": {},
	"declarations": [],
	"statements": [],
	"errors": [{"location": {"first": {"line": 2, "col": 3}, "last": {"line": 2, "col": 4}}, "message": "unexpected token"}]
}`

func TestCompileFileSucceedsOnValidProgram(t *testing.T) {
	path := writeTempFile(t, "ok.ast.json", validProgram)
	r := compileFile(path)
	require.False(t, r.errs.HasErrors(), r.errs.String())
	require.NotNil(t, r.mod)
	assert.False(t, r.syntax)
}

func TestCompileFileReportsSyntaxErrors(t *testing.T) {
	path := writeTempFile(t, "bad.ast.json", syntaxErrorProgram)
	r := compileFile(path)
	assert.True(t, r.syntax)
	assert.True(t, r.errs.HasErrors())
	assert.Nil(t, r.mod)
}

func TestCompileFileReportsUnreadableFile(t *testing.T) {
	r := compileFile(filepath.Join(t.TempDir(), "missing.ast.json"))
	assert.True(t, r.errs.HasErrors())
	assert.Nil(t, r.mod)
}

func TestEmitResultWritesOutputDir(t *testing.T) {
	path := writeTempFile(t, "ok.ast.json", validProgram)
	r := compileFile(path)
	require.NotNil(t, r.mod)

	savedCfg := cfg
	savedEmit := emitStage
	savedAssem := assemOutput
	t.Cleanup(func() { cfg = savedCfg; emitStage = savedEmit; assemOutput = savedAssem })

	outDir := t.TempDir()
	cfg = config.Config{OutputDir: outDir}
	emitStage = "ir"
	assemOutput = false

	require.NoError(t, emitResult(r))
	out := filepath.Join(outDir, filepath.Base(path)+".ir.json")
	assert.FileExists(t, out)
}

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
