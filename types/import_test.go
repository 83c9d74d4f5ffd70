package types

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/wu-lang/wu/ast"
)

// testModules parses by file name: the source on disk is a
// placeholder and the statement list is supplied per module.
type testModules map[string][]ast.Stmt

func (mods testModules) parse(path, src string) ([]ast.Stmt, error) {
	return mods[filepath.Base(path)], nil
}

func writeModule(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("failed to create module dir: %v", err)
	}
	if err := ioutil.WriteFile(path, []byte("placeholder"), 0600); err != nil {
		t.Fatalf("failed to write module: %v", err)
	}
}

func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "wu-types-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func checkMain(t *testing.T, root string, cfg Config, stmts ...ast.Stmt) (*Info, error) {
	t.Helper()
	return Check(stmts, filepath.Join(root, "main.wu"), root, cfg)
}

func TestImportBindsNamesAndModule(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	writeModule(t, root, "mathx.wu")
	cfg := Config{Parse: testModules{
		"mathx.wu": {decl("tau", tFloat, &ast.FloatLit{Value: 6.28})},
	}.parse}

	info, err := checkMain(t, root, cfg,
		&ast.Import{Path: "mathx", Names: []string{"tau"}},
		decl("x", tFloat, name("tau")),
		decl("y", tFloat, index(name("mathx"), name("tau"))),
	)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	mod, ok := info.Exports["mathx"]
	if !ok {
		t.Fatalf("imported module missing from exports")
	}
	content, ok := mod.Node.(ast.Module)
	if !ok || !content.Foreign {
		t.Fatalf("module export got %v, want foreign module", mod)
	}
	if _, ok := content.Content["tau"]; !ok {
		t.Errorf("module content missing tau")
	}
}

func TestImportUnknownName(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	writeModule(t, root, "mathx.wu")
	cfg := Config{Parse: testModules{
		"mathx.wu": {decl("tau", tFloat, &ast.FloatLit{Value: 6.28})},
	}.parse}

	_, err := checkMain(t, root, cfg,
		&ast.Import{Path: "mathx", Names: []string{"nope"}})
	if err == nil {
		t.Fatalf("Check succeeded, expected no such member")
	}
	if kind, ok := ErrorKindOf(err); !ok || kind != NoSuchMember {
		t.Errorf("got %v, want NoSuchMember", err)
	}
}

func TestImportResolvesInitFile(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	writeModule(t, root, filepath.Join("pkg", "init.wu"))
	cfg := Config{Parse: testModules{
		"init.wu": {decl("v", tInt, num(1))},
	}.parse}

	_, err := checkMain(t, root, cfg,
		&ast.Import{Path: "pkg", Names: []string{"v"}},
		decl("x", tInt, name("v")))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
}

func TestImportFromModuleRoot(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	home := tempRoot(t)
	writeModule(t, home, "dep.wu")
	cfg := Config{
		ModRoot: home,
		Parse: testModules{
			"dep.wu": {decl("v", tInt, num(1))},
		}.parse,
	}

	info, err := checkMain(t, root, cfg,
		&ast.Import{Pos: pos(1), Path: "dep", Names: []string{"v"}})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	got, ok := info.DeepImports[pos(1)]
	if !ok {
		t.Fatalf("deep import not recorded: %v", info.DeepImports)
	}
	if got.Root != home || got.Path != filepath.Join(home, "dep.wu") {
		t.Errorf("deep import got %+v", got)
	}
}

func TestModuleNotFound(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	empty := tempRoot(t)

	// With a module root configured, resolution retries there
	// before giving up.
	_, err := checkMain(t, root, Config{ModRoot: empty},
		&ast.Import{Path: "missing"})
	if err == nil {
		t.Fatalf("Check succeeded, expected module not found")
	}
	want := "no such module `missing`, needed either `missing\\.wu`, `missing/init\\.wu` or in `\\$WU_HOME`"
	if !regexp.MustCompile(want).MatchString(err.Error()) {
		t.Errorf("got %v, expected matching %s", err, want)
	}
	if kind, ok := ErrorKindOf(err); !ok || kind != ModuleNotFound {
		t.Errorf("got kind %d, want ModuleNotFound", kind)
	}
}

func TestModuleNotFoundWithoutRoot(t *testing.T) {
	root := tempRoot(t)
	old, had := os.LookupEnv("WU_HOME")
	os.Unsetenv("WU_HOME")
	defer func() {
		if had {
			os.Setenv("WU_HOME", old)
		}
	}()

	_, err := checkMain(t, root, Config{}, &ast.Import{Path: "missing"})
	if err == nil {
		t.Fatalf("Check succeeded, expected module not found")
	}
	want := "no such module `missing`, needed either `missing\\.wu` or `missing/init\\.wu`"
	if !regexp.MustCompile(want).MatchString(err.Error()) {
		t.Errorf("got %v, expected matching %s", err, want)
	}
	if !regexp.MustCompile("missing environment variable `WU_HOME`").MatchString(err.Error()) {
		t.Errorf("got %v, expected WU_HOME note", err)
	}
}

func TestForeignTypeReferenceResolves(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	writeModule(t, root, "shapes.wu")
	// The exported function's return annotation refers to Point
	// by name; the reference must resolve against the module's
	// own exports, not the importer's scope.
	shapes := []ast.Stmt{
		decl("Point", none, structDef("Point", "s9", param("x", tInt))),
		&ast.VarDecl{Name: "origin", Public: true,
			Value: fn(nil, ast.IdType(name("Point")), blk(expr(
				&ast.Init{Target: name("Point"),
					Fields: []ast.FieldInit{{Name: "x", Value: num(0)}}})))},
	}
	cfg := Config{Parse: testModules{"shapes.wu": shapes}.parse}

	_, err := checkMain(t, root, cfg,
		&ast.Import{Path: "shapes", Names: []string{"origin"}},
		decl("p", none, call(name("origin"))),
		decl("x", tInt, index(name("p"), name("x"))))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
}

func TestImplementationsCrossModules(t *testing.T) {
	t.Parallel()
	root := tempRoot(t)
	writeModule(t, root, "shapes.wu")
	shapes := []ast.Stmt{
		decl("Point", none, structDef("Point", "s9", param("x", tInt))),
		&ast.Implement{Target: name("Point"), Body: blk(
			decl("norm", none, method(nil, tInt, blk(expr(index(name("self"), name("x")))))))},
	}
	cfg := Config{Parse: testModules{"shapes.wu": shapes}.parse}

	_, err := checkMain(t, root, cfg,
		&ast.Import{Path: "shapes", Names: []string{"Point"}},
		decl("p", none, &ast.Init{Target: name("Point"),
			Fields: []ast.FieldInit{{Name: "x", Value: num(1)}}}),
		decl("n", tInt, call(index(name("p"), name("norm")))))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
}
