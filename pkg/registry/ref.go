package registry

import "fmt"

type refKind int

const (
	refValue refKind = iota
	refLabel
)

// Ref identifies a model either by dotted label or by value. A value may be
// a *apps.Model, a reflect.Type, or an instance (or pointer to one) of a
// declared model type. Refs are resolved to a model handle by
// Registry.Validate.
type Ref struct {
	kind  refKind
	label string
	value any
}

// Named refers to a model by its "app.model" label.
func Named(label string) Ref {
	return Ref{kind: refLabel, label: label}
}

// Of refers to a model by handle, type, or instance. A string passed to Of
// is a value like any other; use Named for labels.
func Of(v any) Ref {
	return Ref{kind: refValue, value: v}
}

// Labels converts dotted labels to Refs, for registering configured models.
func Labels(labels ...string) []Ref {
	refs := make([]Ref, len(labels))
	for i, l := range labels {
		refs[i] = Named(l)
	}
	return refs
}

func (r Ref) String() string {
	if r.kind == refLabel {
		return r.label
	}
	return fmt.Sprintf("%v", r.value)
}
