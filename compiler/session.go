package compiler

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/ardnew/packscript/lang"
)

// Session executes script text incrementally. Variables, functions, tags and
// resources persist between calls to [Session.Exec].
type Session struct {
	host    *unitHost
	tags    *TagRegistry
	machine *lang.Machine
	dir     string
	inputs  int
}

// NewSession returns a session defining functions in namespace for pack
// format. Includes resolve against the working directory and then lib.
func NewSession(namespace string, format int, lib []string) *Session {
	tags := &TagRegistry{}
	h := &unitHost{Scope: NewScope(namespace, tags), res: NewRegistry(namespace), lib: lib}

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}

	return &Session{
		host: h,
		tags: tags,
		machine: lang.New(h,
			lang.WithVar("ns", namespace),
			lang.WithVar("pack_format", format),
		),
		dir: dir,
	}
}

// Exec runs text and returns the lines it emitted outside of any function.
func (s *Session) Exec(ctx context.Context, text string) ([]string, error) {
	s.inputs++

	lines, err := Lines(filepath.Join(s.dir, "<input "+strconv.Itoa(s.inputs)+">"), text)
	if err != nil {
		return nil, err
	}

	s.host.Reset(discard)

	if err := s.machine.Exec(ctx, lines); err != nil {
		return nil, err
	}

	return slices.Clone(s.host.Buffer(discard)), nil
}

// Namespace returns the namespace of unqualified function names.
func (s *Session) Namespace() string { return s.host.Namespace() }

// Functions returns every function defined so far.
func (s *Session) Functions() []Function { return s.host.Functions() }

// Lookup returns the lines of the function named name.
func (s *Session) Lookup(name string) ([]string, bool) { return s.host.Lookup(name) }

// Tags returns the function tags registered so far.
func (s *Session) Tags() *TagRegistry { return s.tags }

// Resources returns the resources created so far.
func (s *Session) Resources() []Resource { return s.host.res.Resources() }

// Names returns the names of all variables, builtins included.
func (s *Session) Names() []string { return s.machine.Names() }

// Get returns the value of a variable.
func (s *Session) Get(name string) (any, bool) { return s.machine.Get(name) }
