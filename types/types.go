// Package types implements the semantic analysis stage of the
// Wu front end: name resolution, type inference and checking,
// module import resolution, and implement-block binding over
// the syntax tree of package ast.
package types

import (
	"reflect"

	"github.com/wu-lang/wu/ast"
)

// assignable is the general compatibility relation: it reports
// whether a value of type b may be used where a is expected.
// any and any? are wildcards on both sides, T? accepts nil and T,
// and a trait is satisfied by any struct carrying its members.
// The relation is used for assignment, parameter binding, return
// consistency, and operand checks.
func assignable(a, b ast.Type) bool {
	return assignableNode(a.Node, b.Node) && assignableMode(a.Mode, b.Mode)
}

// identical is the strict relation: exact structural match with
// no wildcard or optional leniency, distinguishing splat counts
// and unwrap presence. It re-confirms contexts already proven
// concrete, such as undeclared struct-type markers.
func identical(a, b ast.Type) bool {
	return identicalNode(a.Node, b.Node) && identicalMode(a.Mode, b.Mode)
}

func assignableNode(a, b ast.TypeNode) bool {
	if isAny(a) || isAny(b) {
		return true
	}
	if o, ok := a.(ast.Optional); ok && isAny(o.Elem) {
		return true
	}
	if o, ok := b.(ast.Optional); ok && isAny(o.Elem) {
		return true
	}
	switch a := a.(type) {
	case ast.Basic:
		if b, ok := b.(ast.Basic); ok {
			return a == b
		}
		if _, ok := b.(ast.Optional); ok {
			// nil satisfies any optional; nothing else does.
			return a == ast.Nil
		}
		return false
	case ast.Tuple:
		b, ok := b.(ast.Tuple)
		return ok && typesAssignable(a.Elems, b.Elems)
	case ast.Array:
		b, ok := b.(ast.Array)
		if !ok || !assignable(a.Elem, b.Elem) {
			return false
		}
		return a.Len == nil || (isAny(a.Elem.Node) && b.Len == nil) || intPtrEq(a.Len, b.Len)
	case ast.Id:
		// Id nodes are resolved before comparison everywhere;
		// two unresolved references only compare equal when they
		// capture the same expression.
		b, ok := b.(ast.Id)
		return ok && reflect.DeepEqual(a.X, b.X)
	case ast.Func:
		b, ok := b.(ast.Func)
		return ok && a.IsMethod == b.IsMethod &&
			typesAssignable(a.Params, b.Params) && assignable(a.Ret, b.Ret)
	case ast.Struct:
		switch b := b.(type) {
		case ast.Struct:
			// Struct identity is name plus stable id, not members.
			return a.Name == b.Name && a.ID == b.ID
		case ast.Trait:
			return traitSatisfied(b.Members, a.Fields)
		}
		return false
	case ast.Trait:
		switch b := b.(type) {
		case ast.Trait:
			return contentAssignable(a.Members, b.Members)
		case ast.Struct:
			return traitSatisfied(a.Members, b.Fields)
		}
		return false
	case ast.Optional:
		switch b := b.(type) {
		case ast.Basic:
			if b == ast.Nil {
				return true
			}
			return assignableNode(a.Elem, b)
		case ast.Optional:
			return assignableNode(a.Elem, b.Elem)
		default:
			return assignableNode(a.Elem, b)
		}
	}
	return false
}

func assignableMode(a, b ast.Mode) bool {
	switch {
	case plainMode(a.Kind) && plainMode(b.Kind):
		return true
	case a.Kind == ast.ModeOptional || b.Kind == ast.ModeOptional:
		return true
	case a.Kind == ast.ModeUndeclared || b.Kind == ast.ModeUndeclared:
		return false
	case a.Kind == ast.ModeSplat && b.Kind == ast.ModeSplat:
		return a.Count == nil || b.Count == nil || *a.Count <= *b.Count
	case a.Kind == ast.ModeUnwrap || b.Kind == ast.ModeUnwrap:
		return true
	}
	return false
}

func plainMode(k ast.ModeKind) bool {
	return k == ast.ModeRegular || k == ast.ModeImmutable
}

func identicalNode(a, b ast.TypeNode) bool {
	switch a := a.(type) {
	case ast.Basic:
		b, ok := b.(ast.Basic)
		return ok && a == b
	case ast.Tuple:
		b, ok := b.(ast.Tuple)
		return ok && typesAssignable(a.Elems, b.Elems)
	case ast.Optional:
		b, ok := b.(ast.Optional)
		return ok && assignableNode(a.Elem, b.Elem)
	case ast.Id:
		b, ok := b.(ast.Id)
		return ok && reflect.DeepEqual(a.X, b.X)
	case ast.Array:
		b, ok := b.(ast.Array)
		return ok && assignable(a.Elem, b.Elem) &&
			(a.Len == nil || intPtrEq(a.Len, b.Len))
	case ast.Func:
		b, ok := b.(ast.Func)
		return ok && a.IsMethod == b.IsMethod &&
			typesAssignable(a.Params, b.Params) && assignable(a.Ret, b.Ret)
	case ast.Struct:
		b, ok := b.(ast.Struct)
		return ok && a.Name == b.Name && a.ID == b.ID
	case ast.Trait:
		b, ok := b.(ast.Trait)
		return ok && a.Name == b.Name && contentAssignable(a.Members, b.Members)
	}
	return false
}

func identicalMode(a, b ast.Mode) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == ast.ModeSplat {
		return intPtrEq(a.Count, b.Count)
	}
	return true
}

// checkExpr is the literal-folding fast path: it decides whether
// a syntactic literal is compatible with shape n without a full
// inference pass. Integer literals match int or float; array
// literals match an array shape element-wise, and a fixed-length
// array requires an exact element count.
func checkExpr(n ast.TypeNode, e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.IntLit:
		b, ok := n.(ast.Basic)
		return ok && (b == ast.Int || b == ast.Float)
	case *ast.ArrayLit:
		a, ok := n.(ast.Array)
		if !ok {
			return false
		}
		if a.Len != nil && *a.Len != len(e.Elems) {
			return false
		}
		for _, el := range e.Elems {
			if !checkExpr(a.Elem.Node, el) {
				return false
			}
		}
		return true
	}
	return false
}

// traitSatisfied reports whether a struct's fields carry every
// trait member under a compatible shape, extra fields ignored.
func traitSatisfied(members, fields map[string]ast.Type) bool {
	for name, t := range members {
		f, ok := fields[name]
		if !ok || !assignableNode(t.Node, f.Node) {
			return false
		}
	}
	return true
}

func contentAssignable(a, b map[string]ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for name, t := range a {
		u, ok := b[name]
		if !ok || !assignable(t, u) {
			return false
		}
	}
	return true
}

func typesAssignable(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !assignable(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isAny(n ast.TypeNode) bool {
	b, ok := n.(ast.Basic)
	return ok && b == ast.Any
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
