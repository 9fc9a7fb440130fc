package apps

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// Options is per-model metadata given at declaration time.
type Options struct {
	// AppLabel overrides the application label passed to Apps.Declare.
	AppLabel string

	// ModelName overrides the lower-cased Go type name.
	ModelName string

	// Abstract marks a type that only exists to be embedded in other models.
	Abstract bool
}

type declaration struct {
	value any
	opts  Options
}

// With attaches Options to a model value passed to Apps.Declare.
func With(v any, opts Options) any {
	return declaration{value: v, opts: opts}
}

// Abstract declares v as an abstract model.
func Abstract(v any) any {
	return With(v, Options{Abstract: true})
}

// unwrap splits a Declare argument into the model value and its Options.
func unwrap(v any) (any, Options) {
	if d, ok := v.(declaration); ok {
		return d.value, d.opts
	}
	return v, Options{}
}

// Model is the handle for a declared model type. Handles are created by
// Apps.Declare and compared by pointer.
type Model struct {
	appLabel  string
	modelName string
	abstract  bool
	typ       reflect.Type
	schema    *schema.Schema
}

// AppLabel returns the label of the application owning the model.
func (m *Model) AppLabel() string { return m.appLabel }

// ModelName returns the lower-cased model name.
func (m *Model) ModelName() string { return m.modelName }

// Name returns the Go type name of the model.
func (m *Model) Name() string { return m.typ.Name() }

// Abstract reports whether the model was declared abstract.
func (m *Model) Abstract() bool { return m.abstract }

// Type returns the struct type backing the model.
func (m *Model) Type() reflect.Type { return m.typ }

// Table returns the table name derived by the ORM naming strategy.
func (m *Model) Table() string { return m.schema.Table }

// String returns the dotted label, e.g. "auth.user".
func (m *Model) String() string { return m.appLabel + "." + m.modelName }

// PrimaryKey returns the primary key of obj rendered as text. obj must be a
// value of, or a pointer to, the model's struct type.
func (m *Model) PrimaryKey(ctx context.Context, obj any) (string, error) {
	field := m.schema.PrioritizedPrimaryField
	if field == nil {
		return "", fmt.Errorf("%w: %s", ErrNoPrimaryKey, m)
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", fmt.Errorf("%w: nil %s", ErrNotModel, m)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != m.typ {
		return "", fmt.Errorf("%w: %T is not %s", ErrNotModel, obj, m)
	}

	value, zero := field.ValueOf(ctx, rv)
	if zero {
		return "", fmt.Errorf("%w: %s", ErrUnsaved, m)
	}
	return fmt.Sprint(value), nil
}

// New returns a pointer to a zero instance of the model with its primary
// key set from pk.
func (m *Model) New(ctx context.Context, pk string) (any, error) {
	field := m.schema.PrioritizedPrimaryField
	if field == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, m)
	}

	ptr := reflect.New(m.typ)
	if err := field.Set(ctx, ptr, pk); err != nil {
		return nil, fmt.Errorf("setting %s primary key %q: %w", m, pk, err)
	}
	return ptr.Interface(), nil
}

// structType unwraps pointers and reflect.Type values down to a struct type.
// Returns nil if v does not name a struct.
func structType(v any) reflect.Type {
	var t reflect.Type
	switch x := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		t = x
	default:
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return nil
	}
	return t
}

// newModel parses v into a Model owned by appLabel unless opts name another
// application.
func newModel(appLabel string, v any, opts Options, cache *sync.Map) (*Model, error) {
	t := structType(v)
	if t == nil {
		return nil, fmt.Errorf("%w: %T", ErrNotModel, v)
	}

	if opts.AppLabel != "" {
		appLabel = opts.AppLabel
	}
	if appLabel == "" || strings.Contains(appLabel, ".") {
		return nil, fmt.Errorf("%w: app label %q for %s", ErrInvalidLabel, appLabel, t.Name())
	}

	s, err := schema.Parse(reflect.New(t).Interface(), cache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.Name(), err)
	}

	name := opts.ModelName
	if name == "" {
		name = t.Name()
	}

	return &Model{
		appLabel:  appLabel,
		modelName: strings.ToLower(name),
		abstract:  opts.Abstract,
		typ:       t,
		schema:    s,
	}, nil
}
