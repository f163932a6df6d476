package main

import (
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"io"
	"strconv"
)

const runtimePkg = "_covfeed_runtime_"

// instrumenter rewrites one file's AST in place: a call to RecordEdge at
// every function entry and every if/else block, one counter per block,
// plus a call to RecordCompareCurrent at the top of the body of any if
// whose condition is a simple, side-effect-free comparison. That call runs
// only when the body runs, so a comparison that evaluates to false is not
// recorded.
type instrumenter struct {
	fset    *token.FileSet
	info    *types.Info
	nextPC  uint32
}

func newInstrumenter(fset *token.FileSet, info *types.Info) *instrumenter {
	return &instrumenter{fset: fset, info: info}
}

func (ins *instrumenter) instrumentFile(f *ast.File) {
	addImport(f, "github.com/covfeedback/core/runtime", runtimePkg)
	ast.Inspect(f, ins.visit)
}

func (ins *instrumenter) visit(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.IfStmt:
		ins.instrumentIf(n)
	case *ast.FuncDecl:
		if n.Body == nil {
			return false
		}
		n.Body.List = append([]ast.Stmt{ins.edgeCounter()}, n.Body.List...)
	}
	return true
}

func (ins *instrumenter) instrumentIf(n *ast.IfStmt) {
	if cmp := ins.compareCall(n.Cond); cmp != nil {
		n.Body.List = append([]ast.Stmt{cmp, ins.edgeCounter()}, n.Body.List...)
	} else {
		n.Body.List = append([]ast.Stmt{ins.edgeCounter()}, n.Body.List...)
	}

	if n.Else == nil {
		n.Else = &ast.BlockStmt{}
	}
	switch e := n.Else.(type) {
	case *ast.BlockStmt:
		e.List = append([]ast.Stmt{ins.edgeCounter()}, e.List...)
	}
}

// edgeCounter generates a call to RecordEdge with a fresh synthetic PC
// index. Real edge identity would come from the compiler's own notion of
// block position; a monotonically increasing counter is a fine stand-in
// for a source-to-source rewriter that never builds anything.
func (ins *instrumenter) edgeCounter() ast.Stmt {
	pc := ins.nextPC
	ins.nextPC++
	return &ast.ExprStmt{X: callExpr(runtimePkg, "RecordEdge", intLit(int(pc)))}
}

// compareCall looks for a simple, side-effect-free equality/relational
// comparison at the top of cond (x == y, x != y, x < y, ...) between two
// operands of basic integer type, and if found, returns a statement that
// records the comparison without altering cond's own evaluation. Operands
// are restricted to identifiers, basic literals and selector expressions so duplicating
// them into a second statement can't run anything twice.
func (ins *instrumenter) compareCall(cond ast.Expr) ast.Stmt {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || !isComparisonOp(bin.Op) {
		return nil
	}
	if !isSideEffectFree(bin.X) || !isSideEffectFree(bin.Y) {
		return nil
	}
	width, ok := ins.integerWidth(bin.X)
	if !ok {
		return nil
	}
	pc := ins.nextPC
	ins.nextPC++
	callerPC := &ast.CallExpr{Fun: ast.NewIdent("uintptr"), Args: []ast.Expr{intLit(int(pc))}}
	return &ast.ExprStmt{X: callExpr(runtimePkg, "RecordCompareCurrent",
		callerPC, castUint64(bin.X), castUint64(bin.Y), intLit(width),
	)}
}

func isComparisonOp(op token.Token) bool {
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return true
	}
	return false
}

func isSideEffectFree(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Ident, *ast.BasicLit:
		return true
	case *ast.SelectorExpr:
		return isSideEffectFree(x.X)
	}
	return false
}

func (ins *instrumenter) integerWidth(e ast.Expr) (int, bool) {
	t := ins.info.TypeOf(e)
	if t == nil {
		return 0, false
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return 0, false
	}
	switch basic.Kind() {
	case types.Int8, types.Uint8:
		return 1, true
	case types.Int16, types.Uint16:
		return 2, true
	case types.Int32, types.Uint32:
		return 4, true
	case types.Int, types.Uint, types.Int64, types.Uint64, types.Uintptr:
		return 8, true
	}
	return 0, false
}

func castUint64(e ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: ast.NewIdent("uint64"), Args: []ast.Expr{e}}
}

func callExpr(pkgAlias, name string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(pkgAlias), Sel: ast.NewIdent(name)},
		Args: args,
	}
}

func intLit(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(v)}
}

// addImport inserts a blank-able import of path under alias as the file's
// first declaration, and references it once so it's never reported
// unused even if nothing else in the file happened to touch it.
func addImport(f *ast.File, path, alias string) {
	spec := &ast.ImportSpec{
		Name: ast.NewIdent(alias),
		Path: &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(path)},
	}
	decl := &ast.GenDecl{Tok: token.IMPORT, Specs: []ast.Spec{spec}}
	f.Decls = append([]ast.Decl{decl}, f.Decls...)
	f.Imports = append(f.Imports, spec)

	ref := &ast.GenDecl{
		Tok: token.VAR,
		Specs: []ast.Spec{
			&ast.ValueSpec{
				Names:  []*ast.Ident{ast.NewIdent("_")},
				Values: []ast.Expr{&ast.SelectorExpr{X: ast.NewIdent(alias), Sel: ast.NewIdent("Reset")}},
			},
		},
	}
	f.Decls = append(f.Decls, ref)
}

func (ins *instrumenter) print(w io.Writer, f *ast.File) {
	cfg := printer.Config{Mode: printer.SourcePos, Tabwidth: 8}
	cfg.Fprint(w, ins.fset, f)
}
