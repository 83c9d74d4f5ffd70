package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFold(t *testing.T) {
	t.Parallel()
	num := func(v int64) *IntLit { return &IntLit{Value: v} }
	bin := func(l Expr, op Op, r Expr) *Binary {
		return &Binary{Left: l, Right: r, Op: op}
	}
	tests := []struct {
		name string
		e    Expr
		want Expr
	}{
		{"literal unchanged", num(5), num(5)},
		{"addition", bin(num(2), Add, num(3)), num(5)},
		{"subtraction", bin(num(2), Sub, num(3)), num(-1)},
		{"multiplication", bin(num(2), Mul, num(3)), num(6)},
		{"division", bin(num(7), Div, num(2)), num(3)},
		{"modulo", bin(num(7), Mod, num(2)), num(1)},
		{"power", bin(num(2), Pow, num(10)), num(1024)},
		{"zero exponent", bin(num(2), Pow, num(0)), num(1)},
		{"negation", &Neg{X: num(3)}, num(-3)},
		{"negated expression", &Neg{X: bin(num(1), Add, num(2))}, num(-3)},
		{"nested", bin(bin(num(1), Add, num(2)), Mul, num(3)), num(9)},
		{
			"division by zero untouched",
			bin(num(1), Div, num(0)),
			bin(num(1), Div, num(0)),
		},
		{
			"non-literal operand untouched",
			bin(&Ident{Name: "x"}, Add, num(1)),
			bin(&Ident{Name: "x"}, Add, num(1)),
		},
		{
			"array folds elementwise",
			&ArrayLit{Elems: []Expr{bin(num(1), Add, num(1)), num(3)}},
			&ArrayLit{Elems: []Expr{num(2), num(3)}},
		},
		{
			"string concat untouched",
			bin(&StrLit{Value: "a"}, Concat, num(1)),
			bin(&StrLit{Value: "a"}, Concat, num(1)),
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := Fold(test.e)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Fold(%s) mismatch (-want +got):\n%s", ExprString(test.e), diff)
			}
		})
	}
}
