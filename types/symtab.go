package types

import "github.com/wu-lang/wu/ast"

// A frame is one scope's name bindings.
type frame map[string]ast.Type

// A symtab is a stack of scope frames, innermost last, together
// with two registries whose lifetime is the whole compilation
// unit: the implementation registry, keyed by struct stable id
// and holding members attached by implement blocks, and the
// foreign-module registry, holding exported-content snapshots of
// imported modules for deferred-reference resolution.
type symtab struct {
	frames []frame

	impls   map[string]frame
	foreign map[string]frame
}

func (f frame) clone() frame {
	g := make(frame, len(f))
	for name, t := range f {
		g[name] = t
	}
	return g
}

func newSymtab() *symtab {
	return &symtab{
		frames:  []frame{make(frame)},
		impls:   make(map[string]frame),
		foreign: make(map[string]frame),
	}
}

// symtabFrom returns a table whose root frame holds the given
// bindings, used to resolve deferred references against a
// foreign module's snapshot.
func symtabFrom(content map[string]ast.Type) *symtab {
	s := newSymtab()
	for name, t := range content {
		s.frames[0][name] = t
	}
	return s
}

func (s *symtab) push() {
	s.frames = append(s.frames, make(frame))
}

func (s *symtab) putFrame(f frame) {
	s.frames = append(s.frames, f)
}

func (s *symtab) pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// assign binds name in the innermost frame, shadowing any outer
// binding of the same name.
func (s *symtab) assign(name string, t ast.Type) {
	s.frames[len(s.frames)-1][name] = t
}

// fetch resolves name innermost-to-outermost.
func (s *symtab) fetch(name string) (ast.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return ast.Type{}, false
}

// root returns the outermost frame.
func (s *symtab) root() frame {
	return s.frames[0]
}

// implement registers a member for the struct identified by id.
// The registry is not scoped: once bound, an implementation is
// visible wherever the struct type flows for the rest of the run.
func (s *symtab) implement(id, name string, t ast.Type) {
	m, ok := s.impls[id]
	if !ok {
		m = make(frame)
		s.impls[id] = m
	}
	m[name] = t
}

func (s *symtab) implementations(id string) (frame, bool) {
	m, ok := s.impls[id]
	return m, ok
}

// implementation returns the registered member, which the caller
// has already established is present.
func (s *symtab) implementation(id, name string) ast.Type {
	return s.impls[id][name]
}

// merge unions another table's implementation registry into this
// one, as happens when an imported module's check completes.
func (s *symtab) merge(other *symtab) {
	for id, members := range other.impls {
		for name, t := range members {
			s.implement(id, name, t)
		}
	}
}

// importForeign records the exported content of a module under
// each name bound from it, so deferred references in those types
// resolve against the module's own snapshot.
func (s *symtab) importForeign(name string, content map[string]ast.Type) {
	s.foreign[name] = content
}

func (s *symtab) foreignModule(name string) (map[string]ast.Type, bool) {
	m, ok := s.foreign[name]
	return m, ok
}
