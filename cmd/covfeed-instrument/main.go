// Command covfeed-instrument rewrites a target package's control-flow
// edges and comparison sites into calls against the runtime package, so
// the coverage-feedback core is exercised by real instrumented code
// instead of only unit-tested in isolation. It emits instrumented source
// to an output directory; it does not build or run anything.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

var (
	flagOut     = flag.String("o", "", "output directory for instrumented source (required)")
	flagPreserve = flag.String("preserve", "", "comma-separated import paths to leave uninstrumented")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 || *flagOut == "" {
		failf("usage: covfeed-instrument -o <dir> <pkg>")
	}
	target := flag.Arg(0)

	preserve := map[string]bool{}
	for _, p := range strings.Split(*flagPreserve, ",") {
		if p != "" {
			preserve[p] = true
		}
	}

	cfg := &packages.Config{
		Mode: packages.LoadSyntax,
		Env:  os.Environ(),
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			return parser.ParseFile(fset, filename, src, parser.ParseComments)
		},
	}
	pkgs, err := packages.Load(cfg, target)
	if err != nil {
		failf("could not load %s: %v", target, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		failf("typechecking of %s failed", target)
	}

	for _, pkg := range pkgs {
		if preserve[pkg.PkgPath] || strings.HasPrefix(pkg.PkgPath, "internal/") {
			continue
		}
		outDir := filepath.Join(*flagOut, filepath.FromSlash(pkg.PkgPath))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			failf("failed to create %s: %v", outDir, err)
		}
		for i, fullName := range pkg.CompiledGoFiles {
			if !strings.HasSuffix(fullName, ".go") {
				continue
			}
			file := pkg.Syntax[i]
			ins := newInstrumenter(pkg.Fset, pkg.TypesInfo)
			ins.instrumentFile(file)

			out, err := os.Create(filepath.Join(outDir, filepath.Base(fullName)))
			if err != nil {
				failf("failed to create output file: %v", err)
			}
			ins.print(out, file)
			out.Close()
		}
	}
}

func failf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
