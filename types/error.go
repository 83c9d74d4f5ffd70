package types

import (
	"fmt"
	"strings"

	"github.com/wu-lang/wu/ast"
)

// An ErrorKind classifies a language-rule violation.
type ErrorKind int

const (
	NameNotFound ErrorKind = iota
	MismatchedType
	MismatchedReturnType
	MismatchedArgumentCount
	MismatchedSplatArgument
	MissingFieldAssignment
	NoSuchMember
	IndexOutOfBounds
	NotIndexable
	InvalidOperation
	MultipleSplatParameters
	MethodOutsideImplementation
	CannotImplementType
	MissingTraitMethod
	MismatchedTraitMethodType
	ModuleNotFound
	UnexpectedImplicitExpression
	IllegalControlFlow
	IllegalShadow
)

type checkError struct {
	kind  ErrorKind
	path  string
	pos   ast.Pos
	msg   string
	notes []string
}

func note(err *checkError, f string, vs ...interface{}) {
	err.notes = append(err.notes, fmt.Sprintf(f, vs...))
}

func (err *checkError) Error() string {
	var s strings.Builder
	s.WriteString(err.path)
	s.WriteString(":")
	s.WriteString(err.pos.String())
	s.WriteString(": ")
	s.WriteString(err.msg)
	for _, n := range err.notes {
		s.WriteString("\n\t")
		s.WriteString(n)
	}
	return s.String()
}

// Kind returns the error's classification.
func (err *checkError) Kind() ErrorKind { return err.kind }

// ErrorKindOf reports the kind of a checker-produced error.
func ErrorKindOf(err error) (ErrorKind, bool) {
	cerr, ok := err.(*checkError)
	if !ok {
		return 0, false
	}
	return cerr.kind, true
}
