package types

import (
	"fmt"

	"github.com/wu-lang/wu/ast"
)

func (c *checker) typeStmt(x *ctx, stmt ast.Stmt) (ast.Type, error) {
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		return c.typeExpr(x, stmt.X)
	case *ast.Return:
		if stmt.Value != nil {
			return c.typeExpr(x, stmt.Value)
		}
	}
	return ast.Plain(ast.Nil), nil
}

// typeExpr infers an expression's type. Every result passes
// through deid, so a caller never sees an unresolved name
// reference in type position.
func (c *checker) typeExpr(x *ctx, e ast.Expr) (t ast.Type, err error) {
	defer c.tr("typeExpr(%s)", ast.ExprString(e))(&err)

	switch e := e.(type) {
	case *ast.Ident:
		if e.Name == "Self" {
			if s, ok := x.implTarget(); ok {
				return c.deid(x, s)
			}
		}
		t, err := c.fetch(e.Name, e.Pos)
		if err != nil {
			return ast.Type{}, err
		}
		// Names imported from a foreign module resolve their
		// type references against that module's exports.
		if content, ok := c.syms.foreignModule(e.Name); ok {
			return c.deid(x.foreignModule(content), t)
		}
		return c.deid(x, t)

	case *ast.IntLit:
		t = ast.Plain(ast.Int)
	case *ast.FloatLit:
		t = ast.Plain(ast.Float)
	case *ast.StrLit:
		t = ast.Plain(ast.Str)
	case *ast.CharLit:
		t = ast.Plain(ast.Char)
	case *ast.BoolLit:
		t = ast.Plain(ast.Bool)
	case *ast.NilLit:
		t = ast.Plain(ast.Nil)

	case *ast.TupleLit:
		elems := make([]ast.Type, len(e.Elems))
		for i, el := range e.Elems {
			et, err := c.typeExpr(x, el)
			if err != nil {
				return ast.Type{}, err
			}
			elems[i] = et
		}
		t = ast.TupleOf(elems)

	case *ast.ArrayLit:
		elem := ast.Plain(ast.Any)
		if len(e.Elems) > 0 {
			first, err := c.typeExpr(x, e.Elems[0])
			if err != nil {
				return ast.Type{}, err
			}
			elem = first
		}
		n := len(e.Elems)
		t = ast.ArrayOf(elem, &n)

	case *ast.Init:
		target, err := c.typeExpr(x, e.Target)
		if err != nil {
			return ast.Type{}, err
		}
		t = ast.Plain(target.Node)

	case *ast.If:
		return c.typeExpr(x, e.Then)

	case *ast.StructDef:
		fields := make(map[string]ast.Type, len(e.Fields))
		for _, f := range e.Fields {
			ft, err := c.deid(x, f.Type)
			if err != nil {
				return ast.Type{}, err
			}
			fields[f.Name] = ast.Plain(ft.Node)
		}
		t = ast.Type{
			Node: ast.Struct{Name: e.Name, Fields: fields, ID: e.ID},
			Mode: ast.Mode{Kind: ast.ModeUndeclared},
		}

	case *ast.TraitDef:
		members := make(map[string]ast.Type, len(e.Members))
		for _, m := range e.Members {
			mt, err := c.deid(x, m.Type)
			if err != nil {
				return ast.Type{}, err
			}
			members[m.Name] = ast.Plain(mt.Node)
		}
		t = ast.Plain(ast.Trait{Name: e.Name, Members: members})

	case *ast.Index:
		return c.typeIndex(x, e)

	case *ast.Call:
		fnType, err := c.typeExpr(x, e.Fun)
		if err != nil {
			return ast.Type{}, err
		}
		switch node := fnType.Node.(type) {
		case ast.Func:
			t = node.Ret
		case ast.Basic:
			if node != ast.Any {
				return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't call type `%s`", fnType)
			}
			t = ast.Plain(ast.Any)
		default:
			return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't call type `%s`", fnType)
		}

	case *ast.Function:
		params := make([]ast.Type, len(e.Params))
		for i, p := range e.Params {
			pt, err := c.deid(x, p.Type)
			if err != nil {
				return ast.Type{}, err
			}
			params[i] = pt
		}
		ret := e.Ret
		if ret.Node == nil {
			ret = ast.Plain(ast.Nil)
		}
		ret, err := c.deid(x, ret)
		if err != nil {
			return ast.Type{}, err
		}
		t = ast.Plain(ast.Func{Params: params, Ret: ret, Body: e, IsMethod: e.IsMethod})

	case *ast.Block:
		return c.typeBlock(x, e)

	case *ast.Cast:
		t = e.Type

	case *ast.Neg:
		return c.typeExpr(x, e.X)

	case *ast.Not:
		t = ast.Plain(ast.Bool)

	case *ast.Binary:
		return c.typeBinary(x, e)

	case *ast.ModuleExpr:
		blk, ok := e.Body.(*ast.Block)
		if !ok {
			panic(fmt.Sprintf("impossible module body %T", e.Body))
		}
		sub := newChecker(c.cfg, c.path, c.root)
		if err := sub.visitBlock(nil, blk.Stmts, false, true); err != nil {
			return ast.Type{}, err
		}
		t = ast.Plain(ast.Module{Content: sub.exports})

	case *ast.SplatExpr:
		if len(e.Elems) == 0 {
			t = ast.Plain(ast.Nil)
			break
		}
		first, err := c.typeExpr(x, e.Elems[0])
		if err != nil {
			return ast.Type{}, err
		}
		for _, el := range e.Elems {
			et, err := c.typeExpr(x, el)
			if err != nil {
				return ast.Type{}, err
			}
			if !assignable(et, first) {
				return ast.Type{}, c.err(MismatchedType, el.Span(),
					"can't splat assign different types, expected `%s` found `%s`", first, et)
			}
		}
		t = ast.Type{Node: first.Node, Mode: ast.SplatN(len(e.Elems))}

	case *ast.UnwrapSplat:
		st, err := c.typeExpr(x, e.X)
		if err != nil {
			return ast.Type{}, err
		}
		if st.Mode.Kind != ast.ModeSplat {
			return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't unpack a non-splat value `%s`", st)
		}
		if n, ok := x.topSplat(); ok {
			count := n
			t = ast.Type{Node: st.Node, Mode: ast.Mode{Kind: ast.ModeUnwrap, Count: &count}}
		} else {
			t = ast.Plain(ast.Any)
		}

	case *ast.UnwrapOpt:
		ot, err := c.typeExpr(x, e.X)
		if err != nil {
			return ast.Type{}, err
		}
		opt, ok := ot.Node.(ast.Optional)
		if !ok {
			return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't unwrap a non-optional value `%s`", ot)
		}
		t = ast.Type{Node: opt.Elem, Mode: ot.Mode}

	case *ast.Extern:
		if id, ok := e.Type.Node.(ast.Id); ok {
			it, err := c.typeExpr(x, id.X)
			if err != nil {
				return ast.Type{}, err
			}
			t = ast.Plain(it.Node)
		} else {
			t = ast.Plain(e.Type.Node)
		}

	case *ast.ExternExpr:
		return c.typeExpr(x, e.X)

	default:
		t = ast.Plain(ast.Nil)
	}

	return c.deid(x, t)
}

// typeBlock infers a block's implicit result: the type of its
// last statement. While doing so it threads the consistent
// return flag: every explicit return and the implicit result
// must agree on a single type.
func (c *checker) typeBlock(x *ctx, e *ast.Block) (ast.Type, error) {
	flagBackup := c.flag
	if c.flag == nil {
		c.flag = &blockFlag{}
	}

	c.syms.push()
	blockType := ast.Plain(ast.Nil)
	if len(e.Stmts) > 0 {
		for _, stmt := range e.Stmts {
			switch s := stmt.(type) {
			case *ast.VarDecl, *ast.SplatVarDecl:
				// Bind block locals so the tail expression can
				// refer to them even when the block is typed
				// without a prior visit.
				if err := c.visitStmt(x, stmt); err != nil {
					return ast.Type{}, err
				}
			case *ast.ExprStmt:
				switch s.X.(type) {
				case *ast.Function, *ast.Block, *ast.If, *ast.While, *ast.For:
					if _, err := c.typeExpr(x, s.X); err != nil {
						return ast.Type{}, err
					}
				}
			case *ast.Return:
				retType := ast.Plain(ast.Nil)
				if s.Value != nil {
					var err error
					retType, err = c.typeExpr(x, s.Value)
					if err != nil {
						return ast.Type{}, err
					}
				}
				if c.flag.ret != nil {
					if !assignable(retType, *c.flag.ret) {
						return ast.Type{}, c.err(MismatchedType, s.Pos,
							"mismatched types, expected `%s` found `%s`", *c.flag.ret, retType)
					}
				} else {
					c.flag.ret = &retType
				}
			}
		}

		last := e.Stmts[len(e.Stmts)-1]
		implicitType, err := c.typeStmt(x, last)
		if err != nil {
			return ast.Type{}, err
		}

		if c.flag.ret != nil {
			if !assignableNode(implicitType.Node, c.flag.ret.Node) {
				return ast.Type{}, c.err(MismatchedType, last.Span(),
					"mismatched types, expected `%s` found `%s`", *c.flag.ret, implicitType)
			}
		} else {
			c.flag.ret = &implicitType
		}
		blockType = implicitType
	}
	c.syms.pop()

	c.flag = flagBackup
	return blockType, nil
}

func (c *checker) typeIndex(x *ctx, e *ast.Index) (ast.Type, error) {
	kind, err := c.typeExpr(x, e.Left)
	if err != nil {
		return ast.Type{}, err
	}
	// A splat value indexes like an array of its element type.
	if kind.Mode.Kind == ast.ModeSplat {
		kind = ast.ArrayOf(ast.Plain(kind.Node), nil)
	}

	switch node := kind.Node.(type) {
	case ast.Array:
		return node.Elem, nil

	case ast.Basic:
		if node == ast.Any {
			return ast.Type{Node: ast.Any, Mode: kind.Mode}, nil
		}
		return ast.Type{}, c.err(NotIndexable, e.Pos, "can't index type `%s`", kind)

	case ast.Module:
		name, ok := e.Ind.(*ast.Ident)
		if !ok {
			return ast.Type{}, c.err(NotIndexable, e.Ind.Span(), "can't index module member")
		}
		t, ok := node.Content[name.Name]
		if !ok {
			return ast.Type{}, c.err(NoSuchMember, e.Ind.Span(), "no such module member `%s`", name.Name)
		}
		if node.Foreign {
			return c.deid(x.foreignModule(node.Content), t)
		}
		return t, nil

	case ast.Trait:
		name, ok := e.Ind.(*ast.Ident)
		if !ok {
			return ast.Type{}, c.err(NotIndexable, e.Ind.Span(), "can't index trait member")
		}
		t, ok := node.Members[name.Name]
		if !ok {
			return ast.Type{}, c.err(NoSuchMember, e.Ind.Span(), "no such trait member `%s`", name.Name)
		}
		return t, nil

	case ast.Struct:
		name, ok := e.Ind.(*ast.Ident)
		if !ok {
			return ast.Type{}, c.err(NotIndexable, e.Ind.Span(), "can't index struct member")
		}
		if c.isImplemented(node.ID, name.Name) {
			return c.syms.implementation(node.ID, name.Name), nil
		}
		t, ok := node.Fields[name.Name]
		if !ok {
			return ast.Type{}, c.err(NoSuchMember, e.Ind.Span(), "no such struct member `%s`", name.Name)
		}
		// On the bare struct value only static, implemented
		// members are reachable; instance fields need an
		// initialized value.
		if identicalMode(kind.Mode, ast.Mode{Kind: ast.ModeUndeclared}) {
			if t.IsMethod() {
				return ast.Type{}, c.err(NoSuchMember, e.Ind.Span(),
					"can't access non-static method `%s` on undeclared `%s`", name.Name, node.Name)
			}
			if !identicalMode(t.Mode, ast.Mode{Kind: ast.ModeImplemented}) {
				return ast.Type{}, c.err(NoSuchMember, e.Ind.Span(),
					"can't access uninitialized value `%s` on undeclared `%s`", name.Name, node.Name)
			}
		}
		return t, nil

	default:
		return ast.Type{}, c.err(NotIndexable, e.Pos, "can't index type `%s`", kind)
	}
}

func (c *checker) typeBinary(x *ctx, e *ast.Binary) (ast.Type, error) {
	a, err := c.typeExpr(x, e.Left)
	if err != nil {
		return ast.Type{}, err
	}
	b, err := c.typeExpr(x, e.Right)
	if err != nil {
		return ast.Type{}, err
	}
	an, bn := a.Node, b.Node
	opErr := func() error {
		return c.err(InvalidOperation, e.Pos, "can't perform operation `%s %s %s`", an, e.Op, bn)
	}

	switch e.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if !assignableNode(an, bn) || !isNumeric(an) || !isNumeric(bn) {
			return ast.Type{}, opErr()
		}
		return ast.Plain(an), nil

	case ast.Pow:
		if !isNumeric(an) || !isNumeric(bn) {
			return ast.Type{}, opErr()
		}
		return ast.Plain(an), nil

	case ast.And, ast.Or:
		if !assignableNode(an, bn) || !assignableNode(an, ast.Bool) {
			return ast.Type{}, opErr()
		}
		return ast.Plain(ast.Bool), nil

	case ast.Eq, ast.NEq, ast.Lt, ast.Gt, ast.LtEq, ast.GtEq:
		if !assignableNode(an, bn) {
			return ast.Type{}, opErr()
		}
		return ast.Plain(ast.Bool), nil

	case ast.Concat:
		if !assignableNode(an, ast.Str) {
			return ast.Type{}, opErr()
		}
		switch bn.(type) {
		case ast.Func, ast.Array:
			return ast.Type{}, opErr()
		}
		return ast.Plain(ast.Str), nil

	case ast.PipeLeft:
		if fn, ok := an.(ast.Func); ok {
			return fn.Ret, nil
		}
		return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't pipe into non-function `%s`", an)

	case ast.PipeRight:
		if fn, ok := bn.(ast.Func); ok {
			return fn.Ret, nil
		}
		return ast.Type{}, c.err(InvalidOperation, e.Pos, "can't pipe into non-function `%s`", bn)
	}
	return ast.Type{}, opErr()
}

// isNumeric reports plain int and float only. The any wildcard
// deliberately fails here, so arithmetic on untyped values is an
// error even though they compare equal to everything.
func isNumeric(n ast.TypeNode) bool {
	b, ok := n.(ast.Basic)
	return ok && (b == ast.Int || b == ast.Float)
}

// deid resolves the deferred name references inside a type,
// recursing through optionals and function shapes. The mode of
// the annotated type is kept, not the mode of whatever the name
// resolved to.
func (c *checker) deid(x *ctx, t ast.Type) (ast.Type, error) {
	switch node := t.Node.(type) {
	case ast.Optional:
		inner, err := c.deid(x, ast.Plain(node.Elem))
		if err != nil {
			return ast.Type{}, err
		}
		return ast.Type{Node: ast.Optional{Elem: inner.Node}, Mode: t.Mode}, nil

	case ast.Id:
		if content, ok := x.nearestForeign(); ok {
			// The name lives in a foreign module: resolve it
			// against a snapshot of that module's exports so
			// local bindings can't capture it.
			sub := newChecker(c.cfg, c.path, c.root)
			sub.syms = symtabFrom(content)
			resolved, err := sub.typeExpr(nil, node.X)
			if err != nil {
				return ast.Type{}, err
			}
			resolved.Mode = t.Mode
			return resolved, nil
		}
		resolved, err := c.typeExpr(x, node.X)
		if err != nil {
			return ast.Type{}, err
		}
		resolved.Mode = t.Mode
		return resolved, nil

	case ast.Func:
		params := make([]ast.Type, len(node.Params))
		for i, p := range node.Params {
			pt, err := c.deid(x, p)
			if err != nil {
				return ast.Type{}, err
			}
			params[i] = pt
		}
		ret, err := c.deid(x, node.Ret)
		if err != nil {
			return ast.Type{}, err
		}
		fn := ast.Func{Params: params, Ret: ret, Body: node.Body, IsMethod: node.IsMethod}
		return ast.Type{Node: fn, Mode: t.Mode}, nil
	}
	return t, nil
}
