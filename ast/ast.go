// Package ast defines the syntax tree of the Wu language
// as produced by the parser and consumed by the type checker,
// along with the surface type annotations attached to it.
package ast

import "fmt"

// A Pos is a position within a source file:
// a line number and a start/end column pair.
type Pos struct {
	Line int
	Col  [2]int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d.%d", p.Line, p.Col[0])
}

// After returns the position immediately following p on the same line.
func (p Pos) After() Pos {
	return Pos{Line: p.Line, Col: [2]int{p.Col[1] + 1, p.Col[1] + 1}}
}

// A Node is any node of the syntax tree.
type Node interface {
	// Span returns the node's source position.
	Span() Pos
}

// A Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

// An Expr is an expression.
type Expr interface {
	Node
	expr()
}

// An ExprStmt is a bare expression in statement position.
type ExprStmt struct {
	Pos Pos
	X   Expr
}

// A VarDecl declares a binding with an optional type annotation
// and an optional initial value.
// A nil Type.Node means the annotation was omitted.
type VarDecl struct {
	Pos    Pos
	Type   Type
	Name   string
	Value  Expr // nil if none
	Public bool
}

// A SplatVarDecl declares several bindings at once
// from a single splatted right-hand side.
type SplatVarDecl struct {
	Pos    Pos
	Type   Type
	Names  []string
	Value  Expr // nil if none
	Public bool
}

// A Return statement. Value is nil for a bare return.
type Return struct {
	Pos   Pos
	Value Expr
}

// A Break statement.
type Break struct {
	Pos Pos
}

// A Skip statement continues the enclosing loop.
type Skip struct {
	Pos Pos
}

// An Import statement brings the named members of a module
// into scope and binds the whole module under its path.
type Import struct {
	Pos    Pos
	Path   string
	Names  []string
	Public bool
}

// An Implement statement attaches methods to an existing struct.
// Target is an identifier or a module-qualified index expression.
// Body is a *Block of method declarations.
// Trait, if non-nil, names a trait the struct must satisfy afterwards.
type Implement struct {
	Pos    Pos
	Target Expr
	Body   Expr
	Trait  Expr
}

// An Assign statement.
type Assign struct {
	Pos         Pos
	Left, Right Expr
}

// A SplatAssign assigns one splatted right-hand side
// to several left-hand targets of a single type.
type SplatAssign struct {
	Pos   Pos
	Left  []Expr
	Right Expr
}

// An ExternBlock wraps a statement declared extern.
type ExternBlock struct {
	Pos  Pos
	Stmt Stmt
}

func (s *ExprStmt) Span() Pos     { return s.Pos }
func (s *VarDecl) Span() Pos      { return s.Pos }
func (s *SplatVarDecl) Span() Pos { return s.Pos }
func (s *Return) Span() Pos       { return s.Pos }
func (s *Break) Span() Pos        { return s.Pos }
func (s *Skip) Span() Pos         { return s.Pos }
func (s *Import) Span() Pos       { return s.Pos }
func (s *Implement) Span() Pos    { return s.Pos }
func (s *Assign) Span() Pos       { return s.Pos }
func (s *SplatAssign) Span() Pos  { return s.Pos }
func (s *ExternBlock) Span() Pos  { return s.Pos }

func (*ExprStmt) stmt()     {}
func (*VarDecl) stmt()      {}
func (*SplatVarDecl) stmt() {}
func (*Return) stmt()       {}
func (*Break) stmt()        {}
func (*Skip) stmt()         {}
func (*Import) stmt()       {}
func (*Implement) stmt()    {}
func (*Assign) stmt()       {}
func (*SplatAssign) stmt()  {}
func (*ExternBlock) stmt()  {}

// An Ident is a name in expression position.
type Ident struct {
	Pos  Pos
	Name string
}

// An IntLit is an integer literal.
type IntLit struct {
	Pos   Pos
	Value int64
}

// A FloatLit is a floating point literal.
type FloatLit struct {
	Pos   Pos
	Value float64
}

// A StrLit is a string literal.
type StrLit struct {
	Pos   Pos
	Value string
}

// A CharLit is a character literal.
type CharLit struct {
	Pos   Pos
	Value rune
}

// A BoolLit is a boolean literal.
type BoolLit struct {
	Pos   Pos
	Value bool
}

// A NilLit is the nil literal.
type NilLit struct {
	Pos Pos
}

// An ArrayLit is an array literal.
type ArrayLit struct {
	Pos   Pos
	Elems []Expr
}

// A TupleLit is a tuple literal.
type TupleLit struct {
	Pos   Pos
	Elems []Expr
}

// A FieldInit is one field: value pair of an Init expression.
type FieldInit struct {
	Name  string
	Value Expr
}

// An Init initializes a struct type with field values.
type Init struct {
	Pos    Pos
	Target Expr
	Fields []FieldInit
}

// A Block is a braced statement list in expression position.
// Its value is the value of its final statement.
type Block struct {
	Pos   Pos
	Stmts []Stmt
}

// An Else is one else-if (Cond non-nil) or else (Cond nil) arm.
type Else struct {
	Pos  Pos
	Cond Expr
	Body Expr
}

// An If expression with optional else-if/else arms.
type If struct {
	Pos   Pos
	Cond  Expr
	Then  Expr
	Elses []Else
}

// A While loop.
type While struct {
	Pos  Pos
	Cond Expr
	Body Expr
}

// A For loop. With Iter nil, X is a repeat count;
// otherwise X is the accumulator (an Ident or Splat)
// and Iter the iterator expression.
type For struct {
	Pos  Pos
	X    Expr
	Iter Expr
	Body Expr
}

// A Call applies arguments to a function-typed expression.
type Call struct {
	Pos  Pos
	Fun  Expr
	Args []Expr
}

// A Param is a named, typed function parameter
// or struct/trait member declaration.
type Param struct {
	Name string
	Type Type
}

// A Function is a function literal.
type Function struct {
	Pos      Pos
	Params   []Param
	Ret      Type
	Body     Expr
	IsMethod bool
}

// An Index expression: array indexing or member access.
type Index struct {
	Pos  Pos
	Left Expr
	Ind  Expr
}

// A Binary expression.
type Binary struct {
	Pos         Pos
	Left, Right Expr
	Op          Op
}

// A Neg is arithmetic negation.
type Neg struct {
	Pos Pos
	X   Expr
}

// A Not is boolean negation.
type Not struct {
	Pos Pos
	X   Expr
}

// A StructDef defines a struct type.
// ID is the parser-assigned stable identity of the definition,
// distinct even for structurally identical structs.
type StructDef struct {
	Pos    Pos
	Name   string
	Fields []Param
	ID     string
}

// A TraitDef defines a trait type.
type TraitDef struct {
	Pos     Pos
	Name    string
	Members []Param
}

// A SplatExpr bundles several expressions into a variadic value.
type SplatExpr struct {
	Pos   Pos
	Elems []Expr
}

// An UnwrapSplat expands a splatted value in place
// into positional arguments.
type UnwrapSplat struct {
	Pos Pos
	X   Expr
}

// An UnwrapOpt unwraps an optional value.
type UnwrapOpt struct {
	Pos Pos
	X   Expr
}

// A Cast converts an expression to a target type.
type Cast struct {
	Pos  Pos
	X    Expr
	Type Type
}

// A ModuleExpr is an inline module over a block.
type ModuleExpr struct {
	Pos  Pos
	Body Expr
}

// An Extern declares an externally-provided value of a known type.
type Extern struct {
	Pos  Pos
	Type Type
}

// An ExternExpr wraps an expression declared extern.
type ExternExpr struct {
	Pos Pos
	X   Expr
}

func (e *Ident) Span() Pos       { return e.Pos }
func (e *IntLit) Span() Pos      { return e.Pos }
func (e *FloatLit) Span() Pos    { return e.Pos }
func (e *StrLit) Span() Pos      { return e.Pos }
func (e *CharLit) Span() Pos     { return e.Pos }
func (e *BoolLit) Span() Pos     { return e.Pos }
func (e *NilLit) Span() Pos      { return e.Pos }
func (e *ArrayLit) Span() Pos    { return e.Pos }
func (e *TupleLit) Span() Pos    { return e.Pos }
func (e *Init) Span() Pos        { return e.Pos }
func (e *Block) Span() Pos       { return e.Pos }
func (e *If) Span() Pos          { return e.Pos }
func (e *While) Span() Pos       { return e.Pos }
func (e *For) Span() Pos         { return e.Pos }
func (e *Call) Span() Pos        { return e.Pos }
func (e *Function) Span() Pos    { return e.Pos }
func (e *Index) Span() Pos       { return e.Pos }
func (e *Binary) Span() Pos      { return e.Pos }
func (e *Neg) Span() Pos         { return e.Pos }
func (e *Not) Span() Pos         { return e.Pos }
func (e *StructDef) Span() Pos   { return e.Pos }
func (e *TraitDef) Span() Pos    { return e.Pos }
func (e *SplatExpr) Span() Pos   { return e.Pos }
func (e *UnwrapSplat) Span() Pos { return e.Pos }
func (e *UnwrapOpt) Span() Pos   { return e.Pos }
func (e *Cast) Span() Pos        { return e.Pos }
func (e *ModuleExpr) Span() Pos  { return e.Pos }
func (e *Extern) Span() Pos      { return e.Pos }
func (e *ExternExpr) Span() Pos  { return e.Pos }

func (*Ident) expr()       {}
func (*IntLit) expr()      {}
func (*FloatLit) expr()    {}
func (*StrLit) expr()      {}
func (*CharLit) expr()     {}
func (*BoolLit) expr()     {}
func (*NilLit) expr()      {}
func (*ArrayLit) expr()    {}
func (*TupleLit) expr()    {}
func (*Init) expr()        {}
func (*Block) expr()       {}
func (*If) expr()          {}
func (*While) expr()       {}
func (*For) expr()         {}
func (*Call) expr()        {}
func (*Function) expr()    {}
func (*Index) expr()       {}
func (*Binary) expr()      {}
func (*Neg) expr()         {}
func (*Not) expr()         {}
func (*StructDef) expr()   {}
func (*TraitDef) expr()    {}
func (*SplatExpr) expr()   {}
func (*UnwrapSplat) expr() {}
func (*UnwrapOpt) expr()   {}
func (*Cast) expr()        {}
func (*ModuleExpr) expr()  {}
func (*Extern) expr()      {}
func (*ExternExpr) expr()  {}

// An Op is a binary operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Pow
	And
	Or
	Eq
	NEq
	Lt
	Gt
	LtEq
	GtEq
	Concat
	PipeLeft
	PipeRight
)

var opStrings = [...]string{
	Add:       "+",
	Sub:       "-",
	Mul:       "*",
	Div:       "/",
	Mod:       "%",
	Pow:       "^",
	And:       "and",
	Or:        "or",
	Eq:        "==",
	NEq:       "!=",
	Lt:        "<",
	Gt:        ">",
	LtEq:      "<=",
	GtEq:      ">=",
	Concat:    "++",
	PipeLeft:  "<|",
	PipeRight: "|>",
}

func (op Op) String() string {
	if int(op) < len(opStrings) {
		return opStrings[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}
