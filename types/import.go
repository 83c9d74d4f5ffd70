package types

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/wu-lang/wu/ast"
)

// visitImport resolves, parses, and checks an imported module,
// then binds the requested names and the module itself into the
// current scope.
func (c *checker) visitImport(x *ctx, stmt *ast.Import) (err error) {
	defer c.tr("visitImport(%s)", stmt.Path)(&err)

	localRoot := filepath.Dir(c.path)
	resolved, err := c.findModule(stmt.Path, localRoot, stmt.Pos, false)
	if err != nil {
		return err
	}

	src, ferr := ioutil.ReadFile(resolved)
	if ferr != nil {
		// A module that resolved but can't be read is a broken
		// build environment, not a program error.
		panic(fmt.Sprintf("failed to read module %s: %v", resolved, ferr))
	}
	if c.cfg.Parse == nil {
		panic("no parser configured for imports")
	}
	parsed, err := c.cfg.Parse(resolved, string(src))
	if err != nil {
		return err
	}

	root := c.root
	deep := c.deep
	if tgt, ok := c.deepImports[stmt.Pos]; ok {
		deep = true
		root = tgt.Root
	}
	sub := newChecker(c.cfg, resolved, root)
	sub.deep = deep
	if err := sub.visitBlock(nil, parsed, false, true); err != nil {
		return err
	}
	content := sub.exports

	for _, name := range stmt.Names {
		t, ok := content[name]
		if !ok {
			return c.err(NoSuchMember, stmt.Pos, "no such member `%s`", name)
		}
		c.syms.importForeign(name, content)
		c.assign(name, t)
	}

	moduleType := ast.Plain(ast.Module{Content: content, Foreign: true})
	c.syms.merge(sub.syms)
	c.exports[stmt.Path] = moduleType
	c.assign(stmt.Path, moduleType)
	return nil
}

// findModule resolves an import path to a source file. Relative
// to root it tries `path.wu`, then `path/init.wu`; failing both
// it retries once against the module root, recording the import
// as deep so the file's own imports resolve there too.
func (c *checker) findModule(path, root string, pos ast.Pos, deepRun bool) (string, error) {
	deepRun = deepRun || c.deep

	filePath := filepath.Join(root, path+".wu")
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}
	initPath := filepath.Join(root, path, "init.wu")
	if _, err := os.Stat(initPath); err == nil {
		return initPath, nil
	}

	if deepRun {
		return "", c.err(ModuleNotFound, pos,
			"no such module `%s`, needed either `%s.wu`, `%s/init.wu` or in `$WU_HOME`",
			path, path, path)
	}

	modRoot := c.cfg.ModRoot
	if modRoot == "" {
		modRoot = os.Getenv("WU_HOME")
	}
	if modRoot == "" {
		err := c.err(ModuleNotFound, pos,
			"no such module `%s`, needed either `%s.wu` or `%s/init.wu`", path, path, path)
		note(err, "missing environment variable `WU_HOME`")
		return "", err
	}

	resolved, err := c.findModule(path, modRoot, pos, true)
	if err != nil {
		return "", err
	}
	c.deepImports[pos] = Import{Path: resolved, Root: modRoot}
	return resolved, nil
}
