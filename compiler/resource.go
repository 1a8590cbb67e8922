package compiler

import (
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/ardnew/packscript/lang"
)

// Registry holds resources by type and qualified name.
type Registry struct {
	namespace string
	types     map[string]map[string]Value
}

// NewRegistry returns an empty registry whose unqualified names default to
// namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{namespace: namespace, types: map[string]map[string]Value{}}
}

// SetNamespace changes the default namespace.
func (r *Registry) SetNamespace(namespace string) { r.namespace = namespace }

func (r *Registry) key(name string) string {
	return qualify(strings.TrimSuffix(name, ".json"), r.namespace)
}

// Set stores value as the resource typ/name, replacing any previous value.
func (r *Registry) Set(typ, name string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return lang.WrapError(err).With(slog.String("resource", typ), slog.String("name", name))
	}

	byName, ok := r.types[typ]
	if !ok {
		byName = map[string]Value{}
		r.types[typ] = byName
	}

	byName[r.key(name)] = v

	return nil
}

// Get returns the resource typ/name.
func (r *Registry) Get(typ, name string) (Value, error) {
	v, ok := r.types[typ][r.key(name)]
	if !ok {
		return Value{}, ErrResourceNotFound.With(slog.String("resource", typ), slog.String("name", r.key(name)))
	}

	return v, nil
}

// Types returns the sorted resource types.
func (r *Registry) Types() []string { return slices.Sorted(maps.Keys(r.types)) }

// Names returns the sorted names of resources of typ.
func (r *Registry) Names(typ string) []string {
	return slices.Sorted(maps.Keys(r.types[typ]))
}

// Len returns the number of resources.
func (r *Registry) Len() int {
	n := 0
	for _, byName := range r.types {
		n += len(byName)
	}

	return n
}

// MergeTags stores every tag of t as a resource of type "tags/<folder>".
func (r *Registry) MergeTags(t *TagRegistry, folder string) {
	typ := "tags/" + folder

	for _, tag := range t.Tags() {
		values := make([]any, 0, len(t.Values(tag)))
		for _, fn := range t.Values(tag) {
			values = append(values, fn)
		}

		_ = r.Set(typ, tag, map[string]any{"values": values})
	}
}

// Resource is one entry of a [Registry] ready to be written.
type Resource struct {
	Type  string
	Name  string
	Value Value
}

// Path returns the location of the resource relative to the pack root:
// data/<namespace>/<type>/<path>, with ".json" appended when the path has no
// extension.
func (res Resource) Path() string {
	ns, rel, ok := strings.Cut(res.Name, ":")
	if !ok {
		ns, rel = "minecraft", res.Name
	}

	if !strings.Contains(rel, ".") {
		rel += ".json"
	}

	return path.Join("data", ns, res.Type, rel)
}

// Resources returns every resource ordered by type and name.
func (r *Registry) Resources() []Resource {
	out := make([]Resource, 0, r.Len())

	for _, typ := range r.Types() {
		for _, name := range r.Names(typ) {
			out = append(out, Resource{Type: typ, Name: name, Value: r.types[typ][name]})
		}
	}

	return out
}
