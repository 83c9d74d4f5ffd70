package ast

import (
	"fmt"
	"strconv"
	"strings"
)

func (t Type) String() string {
	return t.Mode.String() + t.Node.String()
}

var basicStrings = [...]string{
	Int:   "int",
	Float: "float",
	Bool:  "bool",
	Str:   "str",
	Char:  "char",
	Nil:   "nil",
	Any:   "any",
	This:  "self",
}

func (b Basic) String() string {
	if int(b) < len(basicStrings) {
		return basicStrings[b]
	}
	return fmt.Sprintf("basic(%d)", int(b))
}

func (n Id) String() string {
	return "deid(" + ExprString(n.X) + ")"
}

func (n Array) String() string {
	if n.Len != nil {
		return fmt.Sprintf("[%s; %d]", n.Elem, *n.Len)
	}
	return "[" + n.Elem.String() + "]"
}

func (n Tuple) String() string {
	var s strings.Builder
	s.WriteRune('(')
	for i, t := range n.Elems {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(t.String())
	}
	s.WriteRune(')')
	return s.String()
}

func (n Optional) String() string {
	return n.Elem.String() + "?"
}

func (n Func) String() string {
	var s strings.Builder
	s.WriteString("fun(")
	for i, p := range n.Params {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(p.String())
	}
	s.WriteString(") -> ")
	s.WriteString(n.Ret.String())
	return s.String()
}

func (n Module) String() string { return "module" }
func (n Struct) String() string { return n.Name }
func (n Trait) String() string  { return n.Name }

var modeStrings = [...]string{
	ModeRegular:     "",
	ModeImmutable:   "constant ",
	ModeOptional:    "optional? ",
	ModeUndeclared:  "undeclared ",
	ModeImplemented: "",
	ModeSplat:       "...",
	ModeUnwrap:      "*",
}

func (m Mode) String() string {
	if int(m.Kind) < len(modeStrings) {
		return modeStrings[m.Kind]
	}
	return ""
}

// ExprString renders an expression in surface syntax,
// for use in error messages. It covers the forms that
// can appear in type annotations and deferred references.
func ExprString(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *Index:
		return ExprString(e.Left) + "." + ExprString(e.Ind)
	case *NilLit:
		return "nil"
	case *IntLit:
		return strconv.FormatInt(e.Value, 10)
	case *FloatLit:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *StrLit:
		return strconv.Quote(e.Value)
	case *BoolLit:
		return strconv.FormatBool(e.Value)
	case *CharLit:
		return strconv.QuoteRune(e.Value)
	case *Call:
		return ExprString(e.Fun) + "(…)"
	default:
		return "…"
	}
}
