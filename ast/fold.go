package ast

// Fold constant-folds an expression, reducing integer arithmetic
// over literal operands, literal negation, and array literals
// element-wise. Anything else is returned unchanged.
// The checker folds before literal-compatibility checks and
// array bounds checks, which depend on syntax rather than type.
func Fold(e Expr) Expr {
	switch e := e.(type) {
	case *Neg:
		if x, ok := Fold(e.X).(*IntLit); ok {
			return &IntLit{Pos: e.Pos, Value: -x.Value}
		}
	case *Binary:
		left, lok := Fold(e.Left).(*IntLit)
		right, rok := Fold(e.Right).(*IntLit)
		if !lok || !rok {
			return e
		}
		switch e.Op {
		case Add:
			return &IntLit{Pos: e.Pos, Value: left.Value + right.Value}
		case Sub:
			return &IntLit{Pos: e.Pos, Value: left.Value - right.Value}
		case Mul:
			return &IntLit{Pos: e.Pos, Value: left.Value * right.Value}
		case Div:
			if right.Value != 0 {
				return &IntLit{Pos: e.Pos, Value: left.Value / right.Value}
			}
		case Mod:
			if right.Value != 0 {
				return &IntLit{Pos: e.Pos, Value: left.Value % right.Value}
			}
		case Pow:
			if right.Value >= 0 {
				v := int64(1)
				for i := int64(0); i < right.Value; i++ {
					v *= left.Value
				}
				return &IntLit{Pos: e.Pos, Value: v}
			}
		}
	case *ArrayLit:
		elems := make([]Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = Fold(el)
		}
		return &ArrayLit{Pos: e.Pos, Elems: elems}
	}
	return e
}
