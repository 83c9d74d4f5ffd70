package types

import (
	"testing"

	"github.com/wu-lang/wu/ast"
)

func TestSymtabShadowing(t *testing.T) {
	t.Parallel()
	s := newSymtab()
	s.assign("x", ast.Plain(ast.Int))

	s.push()
	s.assign("x", ast.Plain(ast.Str))
	got, ok := s.fetch("x")
	if !ok || !identicalNode(got.Node, ast.Str) {
		t.Fatalf("inner fetch got %v, want str", got)
	}
	s.pop()

	got, ok = s.fetch("x")
	if !ok || !identicalNode(got.Node, ast.Int) {
		t.Fatalf("outer fetch got %v, want int", got)
	}
}

func TestSymtabFetchWalksOut(t *testing.T) {
	t.Parallel()
	s := newSymtab()
	s.assign("x", ast.Plain(ast.Int))
	s.push()
	s.push()
	if got, ok := s.fetch("x"); !ok || !identicalNode(got.Node, ast.Int) {
		t.Fatalf("fetch through empty frames got %v, %v", got, ok)
	}
	if _, ok := s.fetch("y"); ok {
		t.Fatalf("fetch of unbound name succeeded")
	}
}

func TestImplementationRegistryIgnoresScope(t *testing.T) {
	t.Parallel()
	s := newSymtab()
	s.push()
	s.implement("s0", "norm", ast.Plain(ast.Func{Ret: ast.Plain(ast.Int)}))
	s.pop()

	content, ok := s.implementations("s0")
	if !ok {
		t.Fatalf("implementations lost after scope pop")
	}
	if _, ok := content["norm"]; !ok {
		t.Fatalf("member norm missing from registry")
	}
	got := s.implementation("s0", "norm")
	fn, ok := got.Node.(ast.Func)
	if !ok || !identicalNode(fn.Ret.Node, ast.Int) {
		t.Fatalf("implementation got %v, want fun() -> int", got)
	}
}

func TestSymtabMerge(t *testing.T) {
	t.Parallel()
	a := newSymtab()
	a.implement("s0", "norm", ast.Plain(ast.Int))
	b := newSymtab()
	b.implement("s1", "show", ast.Plain(ast.Str))
	b.implement("s0", "area", ast.Plain(ast.Float))

	a.merge(b)
	if _, ok := a.implementations("s1"); !ok {
		t.Errorf("merge dropped struct s1")
	}
	content, ok := a.implementations("s0")
	if !ok {
		t.Fatalf("merge dropped struct s0")
	}
	if _, ok := content["norm"]; !ok {
		t.Errorf("merge dropped existing member norm")
	}
	if _, ok := content["area"]; !ok {
		t.Errorf("merge dropped incoming member area")
	}
}

func TestForeignModuleSnapshot(t *testing.T) {
	t.Parallel()
	s := newSymtab()
	content := map[string]ast.Type{"tau": ast.Plain(ast.Float)}
	s.importForeign("tau", content)

	got, ok := s.foreignModule("tau")
	if !ok {
		t.Fatalf("foreign snapshot missing")
	}
	if _, ok := got["tau"]; !ok {
		t.Fatalf("snapshot content missing tau")
	}
	if _, ok := s.foreignModule("pi"); ok {
		t.Fatalf("unexpected snapshot for unimported name")
	}
}

func TestSymtabFrom(t *testing.T) {
	t.Parallel()
	s := symtabFrom(map[string]ast.Type{"x": ast.Plain(ast.Bool)})
	if got, ok := s.fetch("x"); !ok || !identicalNode(got.Node, ast.Bool) {
		t.Fatalf("fetch from seeded table got %v, %v", got, ok)
	}
}
