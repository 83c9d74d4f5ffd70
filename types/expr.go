package types

import (
	"github.com/wu-lang/wu/ast"
)

// visitExpr checks an expression for rule violations without
// producing its type; typeExpr does that separately. Literals
// and other always-valid leaves have no case here.
func (c *checker) visitExpr(x *ctx, e ast.Expr) (err error) {
	switch e := e.(type) {
	case *ast.Ident:
		if e.Name == "Self" {
			if _, ok := x.implTarget(); ok {
				return nil
			}
		}
		_, err := c.fetch(e.Name, e.Pos)
		return err

	case *ast.ExternExpr:
		return c.visitExpr(x, e.X)

	case *ast.Neg:
		t, err := c.typeExpr(x, e.X)
		if err != nil {
			return err
		}
		if b, ok := t.Node.(ast.Basic); ok && (b == ast.Int || b == ast.Float) {
			return nil
		}
		return c.err(InvalidOperation, e.Pos, "can't negate type `%s`", t)

	case *ast.Not:
		t, err := c.typeExpr(x, e.X)
		if err != nil {
			return err
		}
		if identicalNode(t.Node, ast.Bool) {
			return nil
		}
		return c.err(InvalidOperation, e.Pos, "can't negate type `%s`", t)

	case *ast.Binary:
		if err := c.visitExpr(x, e.Left); err != nil {
			return err
		}
		return c.visitExpr(x, e.Right)

	case *ast.ModuleExpr:
		return c.visitExpr(x, e.Body)

	case *ast.SplatExpr:
		for _, el := range e.Elems {
			if err := c.visitExpr(x, el); err != nil {
				return err
			}
		}
		return nil

	case *ast.UnwrapSplat:
		if err := c.visitExpr(x, e.X); err != nil {
			return err
		}
		t, err := c.typeExpr(x, e.X)
		if err != nil {
			return err
		}
		if t.Mode.Kind != ast.ModeSplat {
			return c.err(InvalidOperation, e.Pos, "can't unpack a non-splat value `%s`", t)
		}
		return nil

	case *ast.UnwrapOpt:
		if err := c.visitExpr(x, e.X); err != nil {
			return err
		}
		t, err := c.typeExpr(x, e.X)
		if err != nil {
			return err
		}
		if _, ok := t.Node.(ast.Optional); !ok {
			return c.err(InvalidOperation, e.Pos, "can't unwrap a non-optional value `%s`", t)
		}
		return nil

	case *ast.Cast:
		return c.visitExpr(x, e.X)

	case *ast.Init:
		return c.visitInit(x, e)

	case *ast.Block:
		c.syms.push()
		err := c.visitBlock(x, e.Stmts, true, false)
		c.syms.pop()
		return err

	case *ast.If:
		return c.visitIf(x, e)

	case *ast.While:
		return c.visitWhile(x, e)

	case *ast.For:
		return c.visitFor(x, e)

	case *ast.TupleLit:
		for _, el := range e.Elems {
			if err := c.visitExpr(x, el); err != nil {
				return err
			}
		}
		return nil

	case *ast.ArrayLit:
		return c.visitArray(x, e)

	case *ast.StructDef:
		seen := make(map[string]bool, len(e.Fields))
		for _, f := range e.Fields {
			if seen[f.Name] {
				return c.err(InvalidOperation, e.Pos, "field `%s` defined more than once", f.Name)
			}
			seen[f.Name] = true
		}
		return nil

	case *ast.TraitDef:
		seen := make(map[string]bool, len(e.Members))
		for _, m := range e.Members {
			if seen[m.Name] {
				return c.err(InvalidOperation, e.Pos, "member `%s` defined more than once", m.Name)
			}
			seen[m.Name] = true
		}
		return nil

	case *ast.Call:
		return c.visitCall(x, e)

	case *ast.Function:
		return c.visitFunction(x, e)

	case *ast.Index:
		return c.visitIndex(x, e)
	}
	return nil
}

func (c *checker) visitInit(x *ctx, e *ast.Init) (err error) {
	defer c.tr("visitInit")(&err)

	structType, err := c.typeExpr(x, e.Target)
	if err != nil {
		return err
	}
	st, ok := structType.Node.(ast.Struct)
	if !ok || !identicalMode(structType.Mode, ast.Mode{Kind: ast.ModeUndeclared}) {
		return c.err(InvalidOperation, e.Pos, "can't initialize non-struct: `%s`", structType.Node)
	}

	supplied := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if err := c.visitExpr(x, f.Value); err != nil {
			return err
		}
		argType, err := c.typeExpr(x, f.Value)
		if err != nil {
			return err
		}
		supplied[f.Name] = true
		fieldType, ok := st.Fields[f.Name]
		if !ok {
			return c.err(NoSuchMember, f.Value.Span(),
				"no such member `%s` in struct `%s`", f.Name, st.Name)
		}
		if !checkExpr(fieldType.Node, ast.Fold(f.Value)) && !assignable(fieldType, argType) {
			return c.err(MismatchedType, e.Pos,
				"mismatched types, expected `%s` got `%s`", fieldType, argType)
		}
	}

	// Optional fields and implemented methods may be omitted.
	for name, fieldType := range st.Fields {
		if _, ok := fieldType.Node.(ast.Optional); ok {
			continue
		}
		if supplied[name] || c.isImplemented(st.ID, name) {
			continue
		}
		return c.err(MissingFieldAssignment, e.Pos,
			"missing assignment of struct member `%s: %s`", name, fieldType)
	}
	return nil
}

func (c *checker) visitIf(x *ctx, e *ast.If) error {
	if err := c.visitExpr(x, e.Cond); err != nil {
		return err
	}
	condType, err := c.typeExpr(x, e.Cond)
	if err != nil {
		return err
	}
	if !assignableNode(condType.Node, ast.Bool) {
		return c.err(MismatchedType, e.Pos,
			"mismatched condition, must be `bool` got `%s`", condType.Node)
	}
	if err := c.visitExpr(x, e.Then); err != nil {
		return err
	}
	bodyType, err := c.typeExpr(x, e.Then)
	if err != nil {
		return err
	}
	for _, arm := range e.Elses {
		if arm.Cond != nil {
			if err := c.visitExpr(x, arm.Cond); err != nil {
				return err
			}
			ct, err := c.typeExpr(x, arm.Cond)
			if err != nil {
				return err
			}
			if !assignableNode(ct.Node, ast.Bool) {
				return c.err(MismatchedType, arm.Cond.Span(),
					"mismatched condition, must be `bool` got `%s`", ct.Node)
			}
		}
		if err := c.visitExpr(x, arm.Body); err != nil {
			return err
		}
		armType, err := c.typeExpr(x, arm.Body)
		if err != nil {
			return err
		}
		// All arms must agree with the first body's type.
		if !assignable(bodyType, armType) {
			return c.err(MismatchedType, arm.Body.Span(),
				"mismatched types, expected `%s` got `%s`", bodyType, armType)
		}
	}
	return nil
}

func (c *checker) visitWhile(x *ctx, e *ast.While) error {
	if err := c.visitExpr(x, e.Cond); err != nil {
		return err
	}
	condType, err := c.typeExpr(x, e.Cond)
	if err != nil {
		return err
	}
	if !assignableNode(condType.Node, ast.Bool) {
		return c.err(MismatchedType, e.Pos,
			"mismatched condition, must be `bool` got `%s`", condType.Node)
	}
	return c.visitLoopBody(x.loop(), e.Body)
}

func (c *checker) visitFor(x *ctx, e *ast.For) error {
	if e.Iter != nil {
		if err := c.visitExpr(x, e.Iter); err != nil {
			return err
		}
		iter := e.Iter
		if call, ok := iter.(*ast.Call); ok {
			iter = call.Fun
		}
		iterType, err := c.typeExpr(x, iter)
		if err != nil {
			return err
		}
		splatAny := ast.Type{Node: ast.Any, Mode: ast.Mode{Kind: ast.ModeSplat}}
		closed := ast.FuncOf([]ast.Type{splatAny}, splatAny, false)
		open := ast.FuncOf(nil, ast.Plain(ast.Any), false)
		if !assignable(closed, iterType) && !assignable(open, iterType) {
			return c.err(MismatchedType, iter.Span(),
				"mismatched type, expected iterator function found `%s`", iterType)
		}
		switch acc := e.X.(type) {
		case *ast.Ident:
			c.assign(acc.Name, ast.Plain(ast.Any))
		case *ast.SplatExpr:
			for _, el := range acc.Elems {
				if id, ok := el.(*ast.Ident); ok {
					c.assign(id.Name, ast.Plain(ast.Any))
				}
			}
		default:
			return c.err(MismatchedType, e.X.Span(), "expected identifier as accumulator")
		}
	} else {
		t, err := c.typeExpr(x, e.X)
		if err != nil {
			return err
		}
		if !assignableNode(t.Node, ast.Int) {
			return c.err(MismatchedType, e.Pos,
				"mismatched repetition count, must be `int` got `%s`", t.Node)
		}
	}
	return c.visitLoopBody(x.loop(), e.Body)
}

// visitLoopBody checks a loop body and requires it to leave no
// value behind.
func (c *checker) visitLoopBody(x *ctx, body ast.Expr) error {
	if err := c.visitExpr(x, body); err != nil {
		return err
	}
	bodyType, err := c.typeExpr(x, body)
	if err != nil {
		return err
	}
	if assignableNode(bodyType.Node, ast.Nil) {
		return nil
	}
	pos := body.Span()
	if blk, ok := body.(*ast.Block); ok && len(blk.Stmts) > 0 {
		pos = blk.Stmts[len(blk.Stmts)-1].Span()
	}
	return c.err(MismatchedType, pos, "mismatched types, expected `nil` found `%s`", bodyType)
}

func (c *checker) visitArray(x *ctx, e *ast.ArrayLit) error {
	if len(e.Elems) == 0 {
		return nil
	}
	t, err := c.typeExpr(x, e.Elems[0])
	if err != nil {
		return err
	}
	for _, el := range e.Elems {
		if err := c.visitExpr(x, el); err != nil {
			return err
		}
		et, err := c.typeExpr(x, el)
		if err != nil {
			return err
		}
		if !checkExpr(t.Node, ast.Fold(el)) && !assignableNode(t.Node, et.Node) {
			return c.err(MismatchedType, el.Span(),
				"mismatched types in array, expected `%s` got `%s`", t, et)
		}
	}
	return nil
}

func (c *checker) visitCall(x *ctx, e *ast.Call) (err error) {
	defer c.tr("visitCall")(&err)

	if err := c.visitExpr(x, e.Fun); err != nil {
		return err
	}
	cx := x.calling(e.Fun.Span())
	funType, err := c.typeExpr(cx, e.Fun)
	if err != nil {
		return err
	}
	fn, ok := funType.Node.(ast.Func)
	if !ok {
		if isAny(funType.Node) {
			for _, a := range e.Args {
				if err := c.visitExpr(cx, a); err != nil {
					return err
				}
			}
			return nil
		}
		return c.err(InvalidOperation, e.Pos, "can't call type `%s`", funType)
	}
	if fn.IsMethod {
		c.methodCalls[e.Fun.Span()] = true
	}

	// Unwrapped splat arguments stand for several values, so the
	// effective argument count can exceed len(e.Args).
	actualLen := len(e.Args)
	for i, param := range fn.Params {
		param, err := c.deid(cx, param)
		if err != nil {
			return err
		}
		if len(e.Args) <= i {
			pos := e.Pos
			if len(e.Args) > 0 {
				pos = e.Args[len(e.Args)-1].Span().After()
			}
			return c.err(MismatchedArgumentCount, pos,
				"mismatched argument count, expected %d got %d", len(fn.Params), len(e.Args))
		}
		if err := c.visitExpr(cx, e.Args[i]); err != nil {
			return err
		}
		argType, err := c.typeExpr(cx, e.Args[i])
		if err != nil {
			return err
		}
		if !checkExpr(param.Node, ast.Fold(e.Args[i])) && !assignableNode(argType.Node, param.Node) {
			return c.err(MismatchedType, e.Args[i].Span(),
				"mismatched types, expected type `%s` got `%s`", param.Node, argType)
		}
		if argType.Mode.Kind == ast.ModeUnwrap && argType.Mode.Count != nil {
			actualLen += *argType.Mode.Count
		}
	}

	if actualLen > len(fn.Params) {
		if len(fn.Params) == 0 {
			return c.err(MismatchedArgumentCount, e.Args[0].Span(),
				"expected 0 arguments got %d", actualLen)
		}
		last, err := c.deid(cx, fn.Params[len(fn.Params)-1])
		if err != nil {
			return err
		}
		if last.Mode.Kind == ast.ModeSplat {
			for _, sp := range e.Args[len(fn.Params):] {
				if err := c.visitExpr(cx, sp); err != nil {
					return err
				}
				spType, err := c.typeExpr(cx, sp)
				if err != nil {
					return err
				}
				if !checkExpr(last.Node, sp) && !assignableNode(last.Node, spType.Node) {
					return c.err(MismatchedSplatArgument, sp.Span(),
						"mismatched splat argument, expected `%s` got `%s`", last, spType)
				}
			}
		}
		n := actualLen - len(fn.Params)
		cx = cx.splatCtx(&n)
	}

	// Re-visit the callee so a splat-parameter body sees the
	// surplus count of this particular call site.
	if err := c.visitExpr(cx, e.Fun); err != nil {
		return err
	}

	if actualLen != len(fn.Params) && fn.Params[len(fn.Params)-1].Mode.Kind != ast.ModeSplat {
		pos := e.Pos
		if len(e.Args) > 0 {
			pos = e.Args[len(e.Args)-1].Span()
		}
		plural := ""
		if len(fn.Params) > 1 {
			plural = "s"
		}
		return c.err(MismatchedArgumentCount, pos,
			"expected %d argument%s got %d", len(fn.Params), plural, actualLen)
	}
	return nil
}

func (c *checker) visitFunction(x *ctx, e *ast.Function) (err error) {
	defer c.tr("visitFunction")(&err)

	ret := e.Ret
	if ret.Node == nil {
		ret = ast.Plain(ast.Nil)
	}
	retType, err := c.deid(x, ret)
	if err != nil {
		return err
	}
	if id, ok := ret.Node.(ast.Id); ok {
		if err := c.visitExpr(x, id.X); err != nil {
			return err
		}
		identType, err := c.typeExpr(x, id.X)
		if err != nil {
			return err
		}
		switch identType.Node.(type) {
		case ast.Struct, ast.Trait:
			retType = ast.Plain(identType.Node)
		default:
			return c.err(MismatchedType, id.X.Span(), "can't use `%s` as type", identType)
		}
	}
	retType = ast.Plain(retType.Node)

	params := make(frame, len(e.Params))
	foundSplat := false
	for _, p := range e.Params {
		if p.Type.Mode.Kind == ast.ModeSplat {
			if foundSplat {
				return c.err(MultipleSplatParameters, e.Pos,
					"can't have multiple splat parameters in function")
			}
			foundSplat = true
		}
		t, err := c.deid(x, p.Type)
		if err != nil {
			return err
		}
		params[p.Name] = t
	}

	if e.IsMethod {
		if _, ok := x.implTarget(); !ok {
			return c.err(MethodOutsideImplementation, e.Pos,
				"can't define method outside implementation")
		}
	}

	c.syms.putFrame(params)
	fx := x.function()
	if err := c.visitExpr(fx, e.Body); err != nil {
		return err
	}
	bodyType, err := c.typeExpr(fx, e.Body)
	if err != nil {
		return err
	}
	c.syms.pop()

	if !assignableNode(retType.Node, bodyType.Node) {
		return c.err(MismatchedReturnType, e.Body.Span(),
			"mismatched return type, expected `%s` got `%s`", retType, bodyType)
	}
	return nil
}

func (c *checker) visitIndex(x *ctx, e *ast.Index) (err error) {
	defer c.tr("visitIndex")(&err)

	leftType, err := c.typeExpr(x, e.Left)
	if err != nil {
		return err
	}
	if leftType.Mode.Kind == ast.ModeSplat {
		leftType = ast.ArrayOf(ast.Plain(leftType.Node), nil)
	}

	switch left := leftType.Node.(type) {
	case ast.Array:
		// The index is checked in a masking frame: loop and
		// function context from the surroundings must not leak
		// into it.
		nx := x.nothing()
		if err := c.visitExpr(nx, e.Ind); err != nil {
			return err
		}
		indexType, err := c.typeExpr(nx, e.Ind)
		if err != nil {
			return err
		}
		if b, ok := indexType.Node.(ast.Basic); !ok || b != ast.Int {
			return c.err(NotIndexable, e.Left.Span(),
				"can't index with `%s`, must be `int`", indexType)
		}
		if lit, ok := ast.Fold(e.Ind).(*ast.IntLit); ok && left.Len != nil {
			if int(lit.Value) >= *left.Len {
				return c.err(IndexOutOfBounds, e.Left.Span(),
					"index out of bounds, len is %d got %d", *left.Len, lit.Value)
			}
		}
		return nil

	case ast.Module:
		if name, ok := e.Ind.(*ast.Ident); ok {
			if _, ok := left.Content[name.Name]; !ok {
				return c.err(NoSuchMember, e.Ind.Span(), "no such module member `%s`", name.Name)
			}
			return nil
		}
		indexType, err := c.typeExpr(x, e.Ind)
		if err != nil {
			return err
		}
		return c.err(NotIndexable, e.Ind.Span(), "can't index module with `%s`", indexType)

	case ast.Struct:
		if name, ok := e.Ind.(*ast.Ident); ok {
			if _, ok := left.Fields[name.Name]; !ok && !c.isImplemented(left.ID, name.Name) {
				return c.err(NoSuchMember, e.Ind.Span(), "no such struct member `%s`", name.Name)
			}
			return nil
		}
		indexType, err := c.typeExpr(x, e.Ind)
		if err != nil {
			return err
		}
		return c.err(NotIndexable, e.Ind.Span(), "can't index struct with `%s`", indexType)

	case ast.Trait:
		if name, ok := e.Ind.(*ast.Ident); ok {
			if _, ok := left.Members[name.Name]; !ok {
				return c.err(NoSuchMember, e.Ind.Span(), "no such trait member `%s`", name.Name)
			}
			return nil
		}
		indexType, err := c.typeExpr(x, e.Ind)
		if err != nil {
			return err
		}
		return c.err(NotIndexable, e.Ind.Span(), "can't index trait with `%s`", indexType)

	case ast.Basic:
		if left == ast.Any {
			return nil
		}
		return c.err(NotIndexable, e.Left.Span(), "can't index type `%s`", leftType)

	default:
		return c.err(NotIndexable, e.Left.Span(), "can't index type `%s`", leftType)
	}
}
