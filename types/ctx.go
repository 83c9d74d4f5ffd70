package types

import "github.com/wu-lang/wu/ast"

type ctxKind int

const (
	ctxLoop ctxKind = iota
	ctxFunction
	ctxCalling
	ctxImplement
	ctxForeign
	ctxSplat
	// ctxNothing masks the frames below it from top-of-stack
	// checks without hiding them from containment checks.
	ctxNothing
)

// A ctx is one frame of the traversal context, threaded as an
// explicit parameter through the checker. The zero ctx (nil) is
// the empty context.
type ctx struct {
	up   *ctx
	kind ctxKind

	implType ast.Type            // ctxImplement
	foreign  map[string]ast.Type // ctxForeign
	splat    *int                // ctxSplat
	pos      ast.Pos             // ctxCalling
}

func (x *ctx) push(kind ctxKind) *ctx {
	return &ctx{up: x, kind: kind}
}

func (x *ctx) loop() *ctx     { return x.push(ctxLoop) }
func (x *ctx) function() *ctx { return x.push(ctxFunction) }
func (x *ctx) nothing() *ctx  { return x.push(ctxNothing) }

func (x *ctx) calling(pos ast.Pos) *ctx {
	c := x.push(ctxCalling)
	c.pos = pos
	return c
}

func (x *ctx) implement(t ast.Type) *ctx {
	c := x.push(ctxImplement)
	c.implType = t
	return c
}

func (x *ctx) foreignModule(content map[string]ast.Type) *ctx {
	c := x.push(ctxForeign)
	c.foreign = content
	return c
}

// reimplement swaps the target of the topmost implement frame,
// as happens after each method rebuilds the struct type.
func (x *ctx) reimplement(t ast.Type) *ctx {
	if x != nil && x.kind == ctxImplement {
		return x.up.implement(t)
	}
	return x.implement(t)
}

func (x *ctx) splatCtx(n *int) *ctx {
	c := x.push(ctxSplat)
	c.splat = n
	return c
}

func (x *ctx) inLoop() bool {
	for ; x != nil; x = x.up {
		if x.kind == ctxLoop {
			return true
		}
	}
	return false
}

func (x *ctx) inFunction() bool {
	for ; x != nil; x = x.up {
		if x.kind == ctxFunction {
			return true
		}
	}
	return false
}

// implTarget returns the outermost enclosing implement target,
// so with nested implement blocks `Self` stays bound to the
// outermost one.
func (x *ctx) implTarget() (ast.Type, bool) {
	var t ast.Type
	var ok bool
	for ; x != nil; x = x.up {
		if x.kind == ctxImplement {
			t, ok = x.implType, true
		}
	}
	return t, ok
}

// nearestForeign returns the content snapshot of the nearest
// enclosing foreign-module frame.
func (x *ctx) nearestForeign() (map[string]ast.Type, bool) {
	for ; x != nil; x = x.up {
		if x.kind == ctxForeign {
			return x.foreign, true
		}
	}
	return nil, false
}

// topSplat returns the splat arity only when the topmost frame
// is a splat context with a known count.
func (x *ctx) topSplat() (int, bool) {
	if x != nil && x.kind == ctxSplat && x.splat != nil {
		return *x.splat, true
	}
	return 0, false
}
