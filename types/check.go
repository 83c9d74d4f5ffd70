package types

import (
	"fmt"

	"github.com/wu-lang/wu/ast"
)

// Config are configuration parameters for the checker.
type Config struct {
	// Parse converts module source text into a statement list.
	// It is consulted when an import statement is reached; the
	// checker never reads source text itself.
	Parse func(path, src string) ([]ast.Stmt, error)
	// ModRoot is the secondary module root consulted when a
	// relative import does not resolve. If empty, the WU_HOME
	// environment variable is used.
	ModRoot string
	// Trace is whether to enable debug tracing.
	Trace bool
}

// An Import records where a deep import was resolved.
type Import struct {
	Path string
	Root string
}

// Info is the result of a successful check.
type Info struct {
	// MethodCalls flags the call sites that are method dispatch,
	// keyed by the callee's position.
	MethodCalls map[ast.Pos]bool
	// Exports maps each top-level binding visible to importers
	// to its type. Function declarations appear only when public.
	Exports map[string]ast.Type
	// DeepImports maps import positions resolved against the
	// module root rather than the importing file's folder.
	DeepImports map[ast.Pos]Import
}

// Check type-checks a parsed source tree. path names the source
// for error attribution and root is the directory against which
// relative imports resolve. The first rule violation aborts the
// run and is returned; there is no partial-result checking.
func Check(stmts []ast.Stmt, path, root string, cfg Config) (*Info, error) {
	c := newChecker(cfg, path, root)
	if err := c.visitBlock(nil, stmts, false, true); err != nil {
		return nil, err
	}
	return &Info{
		MethodCalls: c.methodCalls,
		Exports:     c.exports,
		DeepImports: c.deepImports,
	}, nil
}

type checker struct {
	cfg  Config
	syms *symtab
	path string
	root string
	// deep is whether this checker's file was itself resolved
	// through the module root, making every nested import
	// resolve against the module root too.
	deep bool

	// flag carries the consistent return type of the block
	// currently being typed.
	flag *blockFlag

	methodCalls map[ast.Pos]bool
	exports     map[string]ast.Type
	deepImports map[ast.Pos]Import

	indent string
}

type blockFlag struct {
	ret *ast.Type
}

func newChecker(cfg Config, path, root string) *checker {
	return &checker{
		cfg:         cfg,
		syms:        newSymtab(),
		path:        path,
		root:        root,
		methodCalls: make(map[ast.Pos]bool),
		exports:     make(map[string]ast.Type),
		deepImports: make(map[ast.Pos]Import),
	}
}

func (c *checker) err(kind ErrorKind, pos ast.Pos, f string, vs ...interface{}) *checkError {
	return &checkError{kind: kind, path: c.path, pos: pos, msg: fmt.Sprintf(f, vs...)}
}

func (c *checker) fetch(name string, pos ast.Pos) (ast.Type, error) {
	if t, ok := c.syms.fetch(name); ok {
		return t, nil
	}
	return ast.Type{}, c.err(NameNotFound, pos, "can't seem to find `%s`", name)
}

func (c *checker) assign(name string, t ast.Type) {
	c.syms.assign(name, t)
}

func (c *checker) assertTypes(a, b ast.Type, pos ast.Pos) error {
	if !assignable(a, b) {
		return c.err(MismatchedType, pos, "mismatched types, expected `%s` got `%s`", a, b)
	}
	return nil
}

func (c *checker) isImplemented(structID, name string) bool {
	if content, ok := c.syms.implementations(structID); ok {
		_, ok := content[name]
		return ok
	}
	return false
}

func (c *checker) tr(f string, vs ...interface{}) func(*error) {
	if !c.cfg.Trace {
		return func(*error) {}
	}
	c.log(f, vs...)
	olddent := c.indent
	c.indent += "---"
	return func(err *error) {
		defer func() { c.indent = olddent }()
		if err != nil && *err != nil {
			c.log("%v", *err)
		}
	}
}

func (c *checker) log(f string, vs ...interface{}) {
	if !c.cfg.Trace {
		return
	}
	fmt.Print(c.indent)
	fmt.Printf(f, vs...)
	fmt.Println("")
}

// visitBlock checks a statement list in two passes. The first
// pass binds every declaration, pre-registering the signature of
// function-valued declarations without visiting their bodies so
// later statements and sibling declarations can refer to them.
// The second pass visits the function bodies in source order.
// With ensureImplicits set, every bare expression statement but
// the last must be a call or a construct whose own result passes
// the same rule. With moduleLevel set, top-level bindings are
// recorded in the module's export map.
func (c *checker) visitBlock(x *ctx, stmts []ast.Stmt, ensureImplicits, moduleLevel bool) (err error) {
	defer c.tr("visitBlock(%d statements)", len(stmts))(&err)

	for i, stmt := range stmts {
		if eb, ok := stmt.(*ast.ExternBlock); ok {
			if _, ok := eb.Stmt.(*ast.VarDecl); ok {
				stmt = eb.Stmt
			}
		}
		if decl, ok := stmt.(*ast.VarDecl); ok {
			if fn, ok := decl.Value.(*ast.Function); ok {
				t, err := c.funcSigType(x, fn)
				if err != nil {
					return err
				}
				c.assign(decl.Name, t)
				continue
			} else if decl.Value != nil {
				if err := c.visitStmt(x, stmt); err != nil {
					return err
				}
				t, err := c.typeExpr(x, decl.Value)
				if err != nil {
					return err
				}
				if moduleLevel {
					c.exports[decl.Name] = t
				}
			} else if moduleLevel {
				c.exports[decl.Name] = decl.Type
			}
		}

		if ensureImplicits && i < len(stmts)-1 {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				if err := c.ensureNoImplicit(es.X); err != nil {
					return err
				}
			}
		}

		if err := c.visitStmt(x, stmt); err != nil {
			return err
		}
	}

	for _, stmt := range stmts {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok {
			continue
		}
		if _, ok := decl.Value.(*ast.Function); !ok {
			continue
		}
		if err := c.visitStmt(x, stmt); err != nil {
			return err
		}
		t, err := c.typeExpr(x, decl.Value)
		if err != nil {
			return err
		}
		if moduleLevel && decl.Public {
			c.exports[decl.Name] = t
		}
	}
	return nil
}

// funcSigType builds a function declaration's type from its
// parameters and declared return type alone, leaving the return
// annotation unresolved so mutually recursive declarations can
// reference each other before their bodies are checked.
func (c *checker) funcSigType(x *ctx, fn *ast.Function) (ast.Type, error) {
	var params []ast.Type
	for _, p := range fn.Params {
		t, err := c.deid(x, p.Type)
		if err != nil {
			return ast.Type{}, err
		}
		params = append(params, t)
	}
	ret := fn.Ret
	if ret.Node == nil {
		ret = ast.Plain(ast.Nil)
	}
	return ast.Plain(ast.Func{
		Params:   params,
		Ret:      ret,
		Body:     fn,
		IsMethod: fn.IsMethod,
	}), nil
}

func (c *checker) visitStmt(x *ctx, stmt ast.Stmt) (err error) {
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		return c.visitExpr(x, stmt.X)
	case *ast.VarDecl:
		return c.visitVariable(x, stmt.Type, stmt.Name, stmt.Value, stmt.Pos, false)
	case *ast.SplatVarDecl:
		for _, name := range stmt.Names {
			if err := c.visitVariable(x, stmt.Type, name, stmt.Value, stmt.Pos, true); err != nil {
				return err
			}
		}
		return nil
	case *ast.Return:
		if !x.inFunction() {
			return c.err(IllegalControlFlow, stmt.Pos, "can't return outside of function")
		}
		if stmt.Value != nil {
			return c.visitExpr(x, stmt.Value)
		}
		return nil
	case *ast.ExternBlock:
		return c.visitStmt(x, stmt.Stmt)
	case *ast.Break:
		if !x.inLoop() {
			return c.err(IllegalControlFlow, stmt.Pos, "can't break outside loop")
		}
		return nil
	case *ast.Skip:
		if !x.inLoop() {
			return c.err(IllegalControlFlow, stmt.Pos, "can't skip outside loop")
		}
		return nil
	case *ast.Import:
		return c.visitImport(x, stmt)
	case *ast.Implement:
		return c.visitImplement(x, stmt)
	case *ast.Assign:
		if err := c.visitExpr(x, stmt.Left); err != nil {
			return err
		}
		if err := c.visitExpr(x, stmt.Right); err != nil {
			return err
		}
		a, err := c.typeExpr(x, stmt.Left)
		if err != nil {
			return err
		}
		b, err := c.typeExpr(x, stmt.Right)
		if err != nil {
			return err
		}
		return c.assertTypes(a, b, stmt.Left.Span())
	case *ast.SplatAssign:
		return c.visitSplatAssign(x, stmt)
	}
	return nil
}

func (c *checker) visitSplatAssign(x *ctx, stmt *ast.SplatAssign) error {
	for _, l := range stmt.Left {
		if err := c.visitExpr(x, l); err != nil {
			return err
		}
	}
	if err := c.visitExpr(x, stmt.Right); err != nil {
		return err
	}
	a, err := c.typeExpr(x, stmt.Left[0])
	if err != nil {
		return err
	}
	for _, l := range stmt.Left {
		lt, err := c.typeExpr(x, l)
		if err != nil {
			return err
		}
		if !assignable(lt, a) {
			return c.err(MismatchedType, l.Span(),
				"can't splat assign different types, expected `%s` found `%s`", a, lt)
		}
	}
	b, err := c.typeExpr(x, stmt.Right)
	if err != nil {
		return err
	}
	want := ast.Type{Node: a.Node, Mode: ast.SplatN(len(stmt.Left))}
	return c.assertTypes(want, b, stmt.Pos)
}

// visitVariable checks one declared binding. Splat declarations
// reuse it once per declared name with isSplat set, which strips
// splat modes from both sides.
func (c *checker) visitVariable(x *ctx, declType ast.Type, name string, value ast.Expr, pos ast.Pos, isSplat bool) (err error) {
	defer c.tr("visitVariable(%s)", name)(&err)

	if name == "Self" {
		return c.err(IllegalShadow, pos, "it's illegal to shadow `Self`")
	}

	varType := declType
	if varType.Node == nil {
		varType = ast.Plain(ast.Nil)
	}
	if id, ok := varType.Node.(ast.Id); ok {
		identType, err := c.typeExpr(x, id.X)
		if err != nil {
			return err
		}
		if isSplat {
			identType.Mode = ast.Mode{}
		}
		if _, ok := identType.Node.(ast.Struct); ok {
			varType = ast.Plain(identType.Node)
		} else {
			return c.err(MismatchedType, id.X.Span(), "can't use `%s` as type", identType)
		}
	}
	varType = ast.Plain(varType.Node)

	if value == nil {
		c.assign(name, varType)
		return nil
	}

	switch value.(type) {
	case *ast.Function, *ast.Block, *ast.If, *ast.While, *ast.For:
		// visited below, once the binding is established
	case *ast.StructDef, *ast.TraitDef:
		c.assign(name, ast.Plain(ast.Any)) // temporary, for self-reference
	default:
		if err := c.visitExpr(x, value); err != nil {
			return err
		}
	}

	rightType, err := c.typeExpr(x, value)
	if err != nil {
		return err
	}
	if isSplat {
		rightType.Mode = ast.Mode{}
	}

	if !identicalNode(varType.Node, ast.Nil) {
		if !checkExpr(varType.Node, ast.Fold(value)) && !assignableNode(varType.Node, rightType.Node) {
			return c.err(MismatchedType, value.Span(),
				"mismatched types, expected type `%s` got `%s`", varType.Node, rightType.Node)
		}
		c.assign(name, varType)
	} else {
		c.assign(name, rightType)
	}

	switch value.(type) {
	case *ast.Function, *ast.Block, *ast.If, *ast.While, *ast.For, *ast.StructDef, *ast.TraitDef:
		return c.visitExpr(x, value)
	}
	return nil
}

// ensureNoImplicit rejects a bare non-final expression statement
// unless it is a call or a construct whose own result passes the
// same rule, catching dangling values likely meant as a block's
// tail expression.
func (c *checker) ensureNoImplicit(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.Block:
		if len(e.Stmts) == 0 {
			return nil
		}
		last, ok := e.Stmts[len(e.Stmts)-1].(*ast.ExprStmt)
		if !ok {
			return nil
		}
		switch inner := last.X.(type) {
		case *ast.Call:
			return nil
		case *ast.Block:
			return c.ensureNoImplicit(inner)
		case *ast.If:
			return c.ensureNoImplicit(inner.Then)
		case *ast.While:
			return c.ensureNoImplicit(inner.Body)
		case *ast.For:
			return c.ensureNoImplicit(inner.Body)
		default:
			return c.err(UnexpectedImplicitExpression, last.X.Span(), "unexpected expression without context")
		}
	case *ast.Call:
		return nil
	case *ast.If:
		return c.ensureNoImplicit(e.Then)
	case *ast.While:
		return c.ensureNoImplicit(e.Body)
	case *ast.For:
		return c.ensureNoImplicit(e.Body)
	default:
		return c.err(UnexpectedImplicitExpression, e.Span(), "unexpected expression without context")
	}
}
