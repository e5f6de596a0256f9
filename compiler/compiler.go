// Package compiler hosts the rewrite pass: it owns the diagnostics
// reporter, the change tracker, and the optional symbol table, and it
// orchestrates parse → rewrite for a batch of sources plus hot-swap
// recompiles of individual files.
package compiler

import (
	"fmt"

	"github.com/rubiojr/modflat/ast"
	"github.com/rubiojr/modflat/diag"
	"github.com/rubiojr/modflat/parser"
	"github.com/rubiojr/modflat/rewrite"
)

// Source is one input file.
type Source struct {
	Name     string
	Contents string
}

// Compiler drives one compilation. The zero value is not usable; call New.
type Compiler struct {
	// Diags collects everything the pass reports.
	Diags *diag.Reporter
	// Symbols, when non-nil, receives module primitive references removed
	// by the pass.
	Symbols *SymbolTable

	state *rewrite.GlobalState
	root  *ast.Node

	changedScopes    map[*ast.Node]bool
	deletedFunctions []*ast.Node
}

// New creates a Compiler with fresh state.
func New() *Compiler {
	return &Compiler{
		Diags:         diag.NewReporter(),
		state:         rewrite.NewGlobalState(),
		changedScopes: map[*ast.Node]bool{},
	}
}

// Root returns the tree of every compiled script, or nil before Compile.
func (c *Compiler) Root() *ast.Node { return c.root }

// Compile parses every source and runs the module rewrite over the batch.
// Parse failures abort with an error; rewrite problems land in Diags.
func (c *Compiler) Compile(sources []Source) (*ast.Node, error) {
	root := ast.New(ast.KindRoot)
	for _, src := range sources {
		script, err := parser.ParseSource(src.Contents, src.Name)
		if err != nil {
			return nil, err
		}
		root.AddChildToBack(script)
	}
	c.root = root

	c.rewriter().Process(root)
	return root, nil
}

// HotSwap reparses a single source and reruns the pass for just that
// script, first withdrawing the old script's namespace registrations. The
// source is matched to its previous version by name.
func (c *Compiler) HotSwap(src Source) (*ast.Node, error) {
	if c.root == nil {
		return nil, fmt.Errorf("hot swap before initial compile")
	}
	var original *ast.Node
	for script := c.root.First(); script != nil; script = script.Next() {
		if script.Value() == src.Name {
			original = script
			break
		}
	}
	if original == nil {
		return nil, fmt.Errorf("hot swap of unknown script %s", src.Name)
	}

	script, err := parser.ParseSource(src.Contents, src.Name)
	if err != nil {
		return nil, err
	}
	original.ReplaceWith(script)

	c.rewriter().HotSwapScript(script, original)
	return script, nil
}

func (c *Compiler) rewriter() *rewrite.Rewriter {
	cfg := rewrite.Config{
		Diags:   c.Diags,
		State:   c.state,
		Changes: c,
	}
	if c.Symbols != nil {
		cfg.Symbols = c.Symbols
	}
	return rewrite.New(cfg)
}

// ReportChangeToChangeScope records that the scope rooted at scopeRoot was
// structurally changed.
func (c *Compiler) ReportChangeToChangeScope(scopeRoot *ast.Node) {
	c.changedScopes[scopeRoot] = true
}

// ReportFunctionDeleted records the removal of a function node.
func (c *Compiler) ReportFunctionDeleted(fn *ast.Node) {
	c.deletedFunctions = append(c.deletedFunctions, fn)
}

// ChangedScopes returns the scope roots the pass reported changes for.
func (c *Compiler) ChangedScopes() []*ast.Node {
	var out []*ast.Node
	for scope := range c.changedScopes {
		out = append(out, scope)
	}
	return out
}

// DeletedFunctions returns the functions the pass reported as removed.
func (c *Compiler) DeletedFunctions() []*ast.Node { return c.deletedFunctions }

// SymbolTable collects references to module primitives (goog.module and
// goog.require callees and their namespace arguments) that the pass removes
// from the tree.
type SymbolTable struct {
	refs []*ast.Node
}

// AddReference records one node.
func (st *SymbolTable) AddReference(n *ast.Node) {
	st.refs = append(st.refs, n)
}

// References returns every recorded node, in report order.
func (st *SymbolTable) References() []*ast.Node { return st.refs }

// ModuleNames returns the string values of recorded namespace nodes.
func (st *SymbolTable) ModuleNames() []string {
	var out []string
	for _, ref := range st.refs {
		if ref.Bool(ast.PropIsModuleName) {
			out = append(out, ref.Value())
		}
	}
	return out
}
