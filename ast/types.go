package ast

// A Type is a static type: a structural shape (Node)
// and a binding qualifier (Mode) orthogonal to it.
type Type struct {
	Node TypeNode
	Mode Mode
}

// A TypeNode is the structural shape of a type.
type TypeNode interface {
	typeNode()
	String() string
}

// A Basic is a primitive type, the wildcard, or the self-type.
type Basic int

const (
	Int Basic = iota
	Float
	Bool
	Str
	Char
	Nil
	Any
	// This is the self-type placeholder inside an implement block.
	This
)

// An Id is an unresolved reference to an identifier-named type.
// It captures the referencing expression; its type is computed
// lazily and an Id must never reach a final type comparison.
type Id struct {
	X Expr
}

// An Array type with an optional fixed length.
type Array struct {
	Elem Type
	Len  *int
}

// A Tuple type.
type Tuple struct {
	Elems []Type
}

// An Optional wraps a shape that also accepts nil.
type Optional struct {
	Elem TypeNode
}

// A Func type. Body, when non-nil, refers back to the literal
// the type was inferred from.
type Func struct {
	Params   []Type
	Ret      Type
	Body     Expr
	IsMethod bool
}

// A Module type maps exported member names to their types.
// Foreign marks modules loaded across a file boundary, whose
// deferred references resolve against the captured content
// rather than the current scope.
type Module struct {
	Content map[string]Type
	Foreign bool
}

// A Struct type. ID is the stable identity used for the
// implementation registry; two structurally identical structs
// with different IDs are distinct implementation targets.
type Struct struct {
	Name   string
	Fields map[string]Type
	ID     string
}

// A Trait type.
type Trait struct {
	Name    string
	Members map[string]Type
}

func (Basic) typeNode()    {}
func (Id) typeNode()       {}
func (Array) typeNode()    {}
func (Tuple) typeNode()    {}
func (Optional) typeNode() {}
func (Func) typeNode()     {}
func (Module) typeNode()   {}
func (Struct) typeNode()   {}
func (Trait) typeNode()    {}

// A ModeKind selects the qualifier carried by a Mode.
type ModeKind int

const (
	ModeRegular ModeKind = iota
	ModeImmutable
	// ModeOptional marks a binding as optionally-assigned.
	// It is distinct from the Optional shape.
	ModeOptional
	// ModeUndeclared marks a struct or trait type value itself:
	// a reference to the type, not an instance of it.
	ModeUndeclared
	// ModeImplemented marks a member attached by an implement
	// block rather than declared in the original struct literal.
	ModeImplemented
	// ModeSplat marks a variadic bundle of Count elements;
	// a nil Count is unknown until resolved.
	ModeSplat
	// ModeUnwrap marks a splatted argument expanded in place,
	// contributing Count extra positional arguments.
	ModeUnwrap
)

// A Mode is a binding qualifier. Count is used by ModeSplat
// (nil when the element count is unknown) and ModeUnwrap.
type Mode struct {
	Kind  ModeKind
	Count *int
}

// SplatN returns a splat mode of n elements.
func SplatN(n int) Mode {
	return Mode{Kind: ModeSplat, Count: &n}
}

// Plain returns a type of the given shape in regular mode.
func Plain(n TypeNode) Type {
	return Type{Node: n}
}

// IdType returns a deferred identifier type over x.
func IdType(x Expr) Type {
	return Plain(Id{X: x})
}

// ArrayOf returns an array type, with a fixed length if n is non-nil.
func ArrayOf(elem Type, n *int) Type {
	return Plain(Array{Elem: elem, Len: n})
}

// TupleOf returns a tuple type of the given element types.
func TupleOf(elems []Type) Type {
	return Plain(Tuple{Elems: elems})
}

// FuncOf returns a function type with no body reference.
func FuncOf(params []Type, ret Type, isMethod bool) Type {
	return Plain(Func{Params: params, Ret: ret, IsMethod: isMethod})
}

// IsMethod reports whether t is a method-typed function.
func (t Type) IsMethod() bool {
	if f, ok := t.Node.(Func); ok {
		return f.IsMethod
	}
	return false
}
