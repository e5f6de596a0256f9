package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rubiojr/modflat/ast"
)

var (
	testError    = NewError("JSC_TEST_ERROR", "Bad thing: {0} in {1}")
	testDisabled = NewDisabled("JSC_TEST_OFF", "meh")
)

func TestMessageFormatting(t *testing.T) {
	d := Diagnostic{Type: testError, Args: []string{"first", "second"}}
	assert.Equal(t, "Bad thing: first in second", d.Message())

	bare := Diagnostic{Type: testDisabled}
	assert.Equal(t, "meh", bare.Message())
}

func TestReporterLocation(t *testing.T) {
	script := ast.NewValue(ast.KindScript, "file.js")
	stmt := ast.ExprResult(ast.Name("x"))
	script.AddChildToBack(stmt)
	stmt.Pos = 42

	r := NewReporter()
	r.Report(testError, stmt, "a", "b")

	diags := r.Diagnostics()
	assert.Equal(t, 1, len(diags))
	assert.Equal(t, "file.js", diags[0].File)
	assert.Equal(t, 42, diags[0].Pos)
}

func TestHaltingErrors(t *testing.T) {
	r := NewReporter()
	assert.False(t, r.HasHaltingErrors())

	r.Report(testDisabled, nil)
	assert.False(t, r.HasHaltingErrors(), "disabled diagnostics never halt")
	assert.Equal(t, 1, r.CountOf(testDisabled))

	r.Report(testError, nil, "x", "y")
	assert.True(t, r.HasHaltingErrors())
	assert.Equal(t, 1, r.CountOf(testError))
}
