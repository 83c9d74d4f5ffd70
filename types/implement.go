package types

import (
	"fmt"
	"reflect"

	"github.com/wu-lang/wu/ast"
)

// visitImplement checks an implement block, attaching methods to
// a struct. The target is either a bare struct name or a member
// access into a module.
func (c *checker) visitImplement(x *ctx, stmt *ast.Implement) (err error) {
	defer c.tr("visitImplement")(&err)

	c.syms.push()
	defer c.syms.pop()

	if err := c.visitExpr(x, stmt.Target); err != nil {
		return err
	}
	pos := stmt.Target.Span()

	switch target := stmt.Target.(type) {
	case *ast.Ident:
		kind, err := c.fetch(target.Name, pos)
		if err != nil {
			return err
		}
		st, ok := kind.Node.(ast.Struct)
		if !ok || !identicalMode(kind.Mode, ast.Mode{Kind: ast.ModeUndeclared}) {
			return c.err(CannotImplementType, pos, "can't implement type `%s`", kind)
		}
		blk, ok := stmt.Body.(*ast.Block)
		if !ok {
			panic(fmt.Sprintf("impossible implement body %T", stmt.Body))
		}
		if err := c.implementBlock(x.implement(kind), blk.Stmts, st, kind, nil); err != nil {
			return err
		}
		newKind, err := c.fetch(st.Name, stmt.Pos)
		if err != nil {
			return err
		}
		// Rebind in the enclosing scope too: the frame pushed for
		// this block is about to go away.
		c.syms.pop()
		c.assign(st.Name, newKind)
		c.syms.push()
		if stmt.Trait != nil {
			return c.conformTrait(x, stmt.Trait, newKind, pos)
		}
		return nil

	case *ast.Index:
		if _, ok := target.Left.(*ast.Ident); !ok {
			return c.err(CannotImplementType, pos, "can't implement anything but structs")
		}
		leftType, err := c.typeExpr(x, target.Left)
		if err != nil {
			return err
		}
		mod, ok := leftType.Node.(ast.Module)
		if !ok {
			return c.err(CannotImplementType, pos, "can't implement type `%s`", leftType.Node)
		}
		name, ok := target.Ind.(*ast.Ident)
		if !ok {
			return c.err(CannotImplementType, pos, "can't implement anything but structs")
		}
		kind, ok := mod.Content[name.Name]
		if !ok {
			return c.err(NoSuchMember, target.Ind.Span(), "no such module member `%s`", name.Name)
		}
		st, ok := kind.Node.(ast.Struct)
		if !ok || !identicalMode(kind.Mode, ast.Mode{Kind: ast.ModeUndeclared}) {
			return c.err(CannotImplementType, pos, "can't implement type `%s`", kind)
		}
		blk, ok := stmt.Body.(*ast.Block)
		if !ok {
			panic(fmt.Sprintf("impossible implement body %T", stmt.Body))
		}
		if err := c.implementBlock(x.implement(kind), blk.Stmts, st, kind, mod.Content); err != nil {
			return err
		}
		if stmt.Trait != nil {
			cur, err := c.typeExpr(x, stmt.Target)
			if err != nil {
				return err
			}
			return c.conformTrait(x, stmt.Trait, cur, pos)
		}
		return nil

	default:
		return c.err(CannotImplementType, pos, "can't implement anything but structs")
	}
}

// implementBlock binds the block's method declarations one at a
// time. After each method the struct type is rebuilt with the
// member added, the implement context and the self binding are
// repointed at the rebuilt type, and the method is recorded in
// the implementation registry under the struct's identity.
func (c *checker) implementBlock(x *ctx, stmts []ast.Stmt, st ast.Struct, kind ast.Type, moduleContent map[string]ast.Type) (err error) {
	defer c.tr("implementBlock(%s)", st.Name)(&err)

	content := frame(st.Fields).clone()
	original := kind

	for _, stmt := range stmts {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok || decl.Value == nil {
			return c.err(MismatchedType, stmt.Span(), "expected function definition")
		}

		var member ast.TypeNode
		var bind ast.Type
		switch v := decl.Value.(type) {
		case *ast.Function:
			var params []ast.Type
			for _, p := range v.Params {
				t, err := c.deid(x, p.Type)
				if err != nil {
					return err
				}
				params = append(params, t)
			}
			ret := v.Ret
			if ret.Node == nil {
				ret = ast.Plain(ast.Nil)
			}
			member = ast.Func{Params: params, Ret: ret, Body: v, IsMethod: v.IsMethod}
			bind = ast.Plain(member)
		case *ast.Extern:
			if _, ok := v.Type.Node.(ast.Func); !ok {
				return c.err(MismatchedType, stmt.Span(), "expected function definition")
			}
			member = v.Type.Node
			bind = v.Type
		default:
			return c.err(MismatchedType, stmt.Span(), "expected function definition")
		}

		implemented := ast.Type{Node: member, Mode: ast.Mode{Kind: ast.ModeImplemented}}
		content[decl.Name] = implemented
		kind = ast.Type{
			Node: ast.Struct{Name: st.Name, Fields: content.clone(), ID: st.ID},
			Mode: kind.Mode,
		}

		x = x.reimplement(kind)
		c.assign("self", ast.Plain(kind.Node))
		c.syms.implement(st.ID, decl.Name, implemented)

		if moduleContent != nil {
			if cur, ok := moduleContent[st.Name]; ok && reflect.DeepEqual(cur, original) {
				moduleContent[st.Name] = kind
			}
		}
		c.assign(st.Name, kind)
		// Refresh the module export only while it still holds the
		// pre-implement type; a rebound export is left alone.
		if cur, ok := c.syms.root()[st.Name]; ok && reflect.DeepEqual(cur, original) {
			c.exports[st.Name] = kind
		}
		c.assign(decl.Name, bind)
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
	}
	return nil
}

// conformTrait checks that the struct, as it stands after the
// implement block, carries every member the trait demands.
func (c *checker) conformTrait(x *ctx, traitExpr ast.Expr, cur ast.Type, pos ast.Pos) error {
	traitType, err := c.typeExpr(x, traitExpr)
	if err != nil {
		return err
	}
	st, ok := cur.Node.(ast.Struct)
	if !ok {
		return nil
	}
	tr, ok := traitType.Node.(ast.Trait)
	if !ok {
		return c.err(CannotImplementType, traitExpr.Span(), "can't implement type `%s`", traitType)
	}
	for name, want := range tr.Members {
		got, ok := st.Fields[name]
		if !ok {
			return c.err(MissingTraitMethod, pos,
				"missing implementation of method `%s: %s`", name, want)
		}
		if !assignableNode(want.Node, got.Node) {
			return c.err(MismatchedTraitMethodType, pos,
				"expected implemented type `%s` for `%s`", want, name)
		}
	}
	return nil
}
