package types

import (
	"testing"

	"github.com/wu-lang/wu/ast"
)

func intp(n int) *int { return &n }

func TestAssignableNode(t *testing.T) {
	t.Parallel()
	three := intp(3)
	pointFields := map[string]ast.Type{
		"x": ast.Plain(ast.Int),
		"y": ast.Plain(ast.Int),
	}
	point := ast.Struct{Name: "Point", Fields: pointFields, ID: "s0"}
	show := ast.Trait{Name: "Show", Members: map[string]ast.Type{
		"x": ast.Plain(ast.Int),
	}}
	tests := []struct {
		name string
		a, b ast.TypeNode
		want bool
	}{
		{"int int", ast.Int, ast.Int, true},
		{"int str", ast.Int, ast.Str, false},
		{"any wildcard left", ast.Any, ast.Str, true},
		{"any wildcard right", ast.Str, ast.Any, true},
		{"optional any wildcard", ast.Optional{Elem: ast.Any}, ast.Func{}, true},
		{"optional accepts nil", ast.Optional{Elem: ast.Int}, ast.Nil, true},
		{"optional accepts inner", ast.Optional{Elem: ast.Int}, ast.Int, true},
		{"optional accepts optional", ast.Optional{Elem: ast.Int}, ast.Optional{Elem: ast.Int}, true},
		{"optional rejects other", ast.Optional{Elem: ast.Int}, ast.Str, false},
		{"nil satisfies optional", ast.Nil, ast.Optional{Elem: ast.Int}, true},
		{"non-optional rejects optional", ast.Int, ast.Optional{Elem: ast.Int}, false},
		{
			"unsized array accepts sized",
			ast.Array{Elem: ast.Plain(ast.Int)},
			ast.Array{Elem: ast.Plain(ast.Int), Len: three},
			true,
		},
		{
			"sized array wants exact length",
			ast.Array{Elem: ast.Plain(ast.Int), Len: three},
			ast.Array{Elem: ast.Plain(ast.Int), Len: intp(4)},
			false,
		},
		{
			"sized array rejects unsized",
			ast.Array{Elem: ast.Plain(ast.Int), Len: three},
			ast.Array{Elem: ast.Plain(ast.Int)},
			false,
		},
		{
			"array element mismatch",
			ast.Array{Elem: ast.Plain(ast.Int)},
			ast.Array{Elem: ast.Plain(ast.Str)},
			false,
		},
		{
			"tuple elementwise",
			ast.Tuple{Elems: []ast.Type{ast.Plain(ast.Int), ast.Plain(ast.Str)}},
			ast.Tuple{Elems: []ast.Type{ast.Plain(ast.Int), ast.Plain(ast.Str)}},
			true,
		},
		{
			"tuple width",
			ast.Tuple{Elems: []ast.Type{ast.Plain(ast.Int)}},
			ast.Tuple{Elems: []ast.Type{ast.Plain(ast.Int), ast.Plain(ast.Str)}},
			false,
		},
		{
			"func shape",
			ast.Func{Params: []ast.Type{ast.Plain(ast.Int)}, Ret: ast.Plain(ast.Str)},
			ast.Func{Params: []ast.Type{ast.Plain(ast.Int)}, Ret: ast.Plain(ast.Str)},
			true,
		},
		{
			"func return mismatch",
			ast.Func{Ret: ast.Plain(ast.Str)},
			ast.Func{Ret: ast.Plain(ast.Int)},
			false,
		},
		{
			"method flag distinguishes",
			ast.Func{Ret: ast.Plain(ast.Nil), IsMethod: true},
			ast.Func{Ret: ast.Plain(ast.Nil)},
			false,
		},
		{
			"struct identity same id",
			point,
			ast.Struct{Name: "Point", Fields: nil, ID: "s0"},
			true,
		},
		{
			"struct identity different id",
			point,
			ast.Struct{Name: "Point", Fields: pointFields, ID: "s1"},
			false,
		},
		{"struct satisfies trait", point, show, true},
		{"trait satisfied by struct", show, point, true},
		{
			"trait not satisfied",
			ast.Trait{Name: "Show", Members: map[string]ast.Type{"show": ast.Plain(ast.Str)}},
			point,
			false,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := assignableNode(test.a, test.b); got != test.want {
				t.Errorf("assignableNode(%s, %s)=%v, want %v", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestAssignableMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b ast.Mode
		want bool
	}{
		{"regular regular", ast.Mode{}, ast.Mode{}, true},
		{"regular immutable", ast.Mode{}, ast.Mode{Kind: ast.ModeImmutable}, true},
		{"optional wildcard", ast.Mode{Kind: ast.ModeOptional}, ast.Mode{Kind: ast.ModeSplat}, true},
		{"undeclared never", ast.Mode{Kind: ast.ModeUndeclared}, ast.Mode{Kind: ast.ModeUndeclared}, false},
		{"splat fewer into more", ast.SplatN(2), ast.SplatN(3), true},
		{"splat more into fewer", ast.SplatN(3), ast.SplatN(2), false},
		{"splat unknown count", ast.Mode{Kind: ast.ModeSplat}, ast.SplatN(2), true},
		{"splat against regular", ast.SplatN(2), ast.Mode{}, false},
		{"unwrap against regular", ast.Mode{Kind: ast.ModeUnwrap}, ast.Mode{}, true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := assignableMode(test.a, test.b); got != test.want {
				t.Errorf("assignableMode(%v, %v)=%v, want %v", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestIdenticalIsStrictAtTopLevel(t *testing.T) {
	t.Parallel()
	if identicalNode(ast.Any, ast.Int) {
		t.Errorf("identicalNode(any, int)=true, want false")
	}
	if !identicalNode(ast.Int, ast.Int) {
		t.Errorf("identicalNode(int, int)=false, want true")
	}
	// One level down the wildcard applies again.
	a := ast.Array{Elem: ast.Plain(ast.Any)}
	b := ast.Array{Elem: ast.Plain(ast.Int)}
	if !identicalNode(a, b) {
		t.Errorf("identicalNode([any], [int])=false, want true")
	}
	if identical(ast.Plain(ast.Int), ast.Type{Node: ast.Int, Mode: ast.Mode{Kind: ast.ModeImmutable}}) {
		t.Errorf("identical ignored the mode")
	}
	if !identical(ast.Plain(ast.Str), ast.Plain(ast.Str)) {
		t.Errorf("identical(str, str)=false, want true")
	}
}

func TestIdenticalMode(t *testing.T) {
	t.Parallel()
	if identicalMode(ast.Mode{}, ast.Mode{Kind: ast.ModeImmutable}) {
		t.Errorf("regular and immutable modes compare identical")
	}
	if identicalMode(ast.SplatN(2), ast.SplatN(3)) {
		t.Errorf("splat counts 2 and 3 compare identical")
	}
	if !identicalMode(ast.SplatN(2), ast.SplatN(2)) {
		t.Errorf("equal splat counts compare different")
	}
	one := ast.Mode{Kind: ast.ModeUnwrap, Count: intp(1)}
	two := ast.Mode{Kind: ast.ModeUnwrap, Count: intp(2)}
	if !identicalMode(one, two) {
		t.Errorf("unwrap counts should not distinguish modes")
	}
}

func TestCheckExpr(t *testing.T) {
	t.Parallel()
	three := intp(3)
	arr := func(vs ...int64) *ast.ArrayLit {
		a := &ast.ArrayLit{}
		for _, v := range vs {
			a.Elems = append(a.Elems, &ast.IntLit{Value: v})
		}
		return a
	}
	tests := []struct {
		name string
		n    ast.TypeNode
		e    ast.Expr
		want bool
	}{
		{"int literal as int", ast.Int, &ast.IntLit{Value: 5}, true},
		{"int literal as float", ast.Float, &ast.IntLit{Value: 5}, true},
		{"int literal as str", ast.Str, &ast.IntLit{Value: 5}, false},
		{"str literal no fast path", ast.Str, &ast.StrLit{Value: "a"}, false},
		{"array exact length", ast.Array{Elem: ast.Plain(ast.Int), Len: three}, arr(1, 2, 3), true},
		{"array wrong length", ast.Array{Elem: ast.Plain(ast.Int), Len: three}, arr(1, 2), false},
		{"array unsized", ast.Array{Elem: ast.Plain(ast.Float)}, arr(1, 2), true},
		{
			"nested array",
			ast.Array{Elem: ast.Plain(ast.Array{Elem: ast.Plain(ast.Int)})},
			&ast.ArrayLit{Elems: []ast.Expr{arr(1), arr(2, 3)}},
			true,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := checkExpr(test.n, test.e); got != test.want {
				t.Errorf("checkExpr(%s, %s)=%v, want %v",
					test.n, ast.ExprString(test.e), got, test.want)
			}
		})
	}
}
