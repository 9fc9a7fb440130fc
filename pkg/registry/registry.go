// Package registry tracks which model types take part in the activity
// stream.
//
// Every registered model gets three generic relations to the Action model,
// one per role (actor, target, action object), so that Actions pointing at
// an instance can be looked up from the instance. The Registry is built once
// at application start, populated from configuration, and then handed to the
// code that creates Actions, which calls Check before storing one.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/relations"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

// DefaultActionModel is the label of the Action record model.
const DefaultActionModel = "actstream.action"

// Resolver looks up model types. *apps.Apps implements it.
type Resolver interface {
	Resolve(appLabel, modelName string) (*apps.Model, error)
	ModelOf(v any) (*apps.Model, bool)
	Installed(appLabel string) bool
}

// RelationBuilder attaches and looks up generic relations.
// *relations.Table implements it.
type RelationBuilder interface {
	Attach(related, owner *apps.Model, name string, opts relations.Options) (*relations.Relation, error)
	Get(owner *apps.Model, name string) (*relations.Relation, bool)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithActionModel overrides the label of the model that generic relations
// point at.
func WithActionModel(label string) Option {
	return func(r *Registry) {
		if label != "" {
			r.actionLabel = label
		}
	}
}

// Registry maps each registered model to the generic relations created for
// it. It is safe for concurrent use; registration is expected to finish
// before Check is called from request handlers.
type Registry struct {
	mu          sync.RWMutex
	resolver    Resolver
	builder     RelationBuilder
	actionLabel string
	logger      *slog.Logger
	entries     map[*apps.Model]map[types.Role]*relations.Relation
}

// New creates an empty Registry.
func New(resolver Resolver, builder RelationBuilder, opts ...Option) *Registry {
	r := &Registry{
		resolver:    resolver,
		builder:     builder,
		actionLabel: DefaultActionModel,
		logger:      slog.New(slog.DiscardHandler),
		entries:     make(map[*apps.Model]map[types.Role]*relations.Relation),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Label returns "<app_label>_<model_name>" for m.
func Label(m *apps.Model) string {
	return m.AppLabel() + "_" + m.ModelName()
}

// Validate resolves ref to a model and checks that it is a concrete model of
// an installed application. Validation failures wrap kind, which defaults to
// types.ErrImproperlyConfigured when nil. Label parse and lookup errors from
// the Resolver are returned unchanged.
func (r *Registry) Validate(ref Ref, kind error) (*apps.Model, error) {
	if kind == nil {
		kind = types.ErrImproperlyConfigured
	}

	m, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: object %s is not a model type", kind, ref)
	}
	if m.Abstract() {
		return nil, fmt.Errorf("%w: the model %s is abstract, so it cannot be registered with actstream", kind, m.Name())
	}
	if !r.resolver.Installed(m.AppLabel()) {
		return nil, fmt.Errorf("%w: the model %s is not installed, please add %s to installed_apps", kind, m.Name(), m.AppLabel())
	}
	return m, nil
}

// resolve returns nil without an error when a value ref does not name a
// declared model.
func (r *Registry) resolve(ref Ref) (*apps.Model, error) {
	if ref.kind == refLabel {
		appLabel, modelName, err := apps.ParseLabel(ref.label)
		if err != nil {
			return nil, err
		}
		return r.resolver.Resolve(appLabel, modelName)
	}
	m, ok := r.resolver.ModelOf(ref.value)
	if !ok {
		return nil, nil
	}
	return m, nil
}

// Register validates each ref and sets up generic relations for models not
// yet registered. Registered models are skipped. Refs are processed in
// order; a failure stops processing and leaves earlier refs registered.
func (r *Registry) Register(refs ...Ref) error {
	for _, ref := range refs {
		m, err := r.Validate(ref, types.ErrImproperlyConfigured)
		if err != nil {
			return err
		}
		added, err := r.add(m)
		if err != nil {
			return err
		}
		if added {
			r.logger.Debug("registered actionable model", "model", m.String())
		}
	}
	return nil
}

func (r *Registry) add(m *apps.Model) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[m]; ok {
		return false, nil
	}
	rels, err := r.setupGenericRelations(m)
	if err != nil {
		return false, err
	}
	r.entries[m] = rels
	return true, nil
}

// setupGenericRelations attaches one generic relation per role from the
// Action model to m. A relation left by an earlier registration is reused
// when it matches exactly; any other relation under the same name is a
// collision.
func (r *Registry) setupGenericRelations(m *apps.Model) (map[types.Role]*relations.Relation, error) {
	appLabel, modelName, err := apps.ParseLabel(r.actionLabel)
	if err != nil {
		return nil, err
	}
	action, err := r.resolver.Resolve(appLabel, modelName)
	if err != nil {
		return nil, err
	}

	queryName := "actions_with_" + Label(m)
	rels := make(map[types.Role]*relations.Relation, len(types.Roles))
	for _, role := range types.Roles {
		name := string(role) + "_actions"
		opts := relations.Options{
			ContentTypeField: role.ContentTypeField(),
			ObjectIDField:    role.ObjectIDField(),
			RelatedQueryName: queryName + "_as_" + string(role),
		}
		if rel, ok := r.builder.Get(m, name); ok && rel.Related == action && rel.Options() == opts {
			rels[role] = rel
			continue
		}
		rel, err := r.builder.Attach(action, m, name, opts)
		if err != nil {
			return nil, fmt.Errorf("setting up %s relation for %s: %w", role, m, err)
		}
		rels[role] = rel
	}
	return rels, nil
}

// Unregister validates each ref and removes registered models. Unknown
// models are ignored. Relations already attached are left in place and are
// reused if the model is registered again.
func (r *Registry) Unregister(refs ...Ref) error {
	for _, ref := range refs {
		m, err := r.Validate(ref, types.ErrImproperlyConfigured)
		if err != nil {
			return err
		}

		r.mu.Lock()
		_, ok := r.entries[m]
		delete(r.entries, m)
		r.mu.Unlock()

		if ok {
			r.logger.Debug("unregistered actionable model", "model", m.String())
		}
	}
	return nil
}

// Check fails unless ref names a registered model. Instances resolve to
// their model type. Validation failures wrap types.ErrRuntime; an
// unregistered model yields an error matching both types.ErrRuntime and
// types.ErrImproperlyConfigured.
func (r *Registry) Check(ref Ref) error {
	_, err := r.checked(ref)
	return err
}

func (r *Registry) checked(ref Ref) (*apps.Model, error) {
	m, err := r.Validate(ref, types.ErrRuntime)
	if err != nil {
		return nil, err
	}
	if !r.registered(m) {
		return nil, &notRegisteredError{model: m}
	}
	return m, nil
}

func (r *Registry) registered(m *apps.Model) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[m]
	return ok
}

// IsRegistered reports whether ref resolves to a registered model. Refs that
// fail validation are not registered.
func (r *Registry) IsRegistered(ref Ref) bool {
	return r.Check(ref) == nil
}

// Relations returns the model ref resolves to and its generic relations
// keyed by role. It fails the same way Check does.
func (r *Registry) Relations(ref Ref) (*apps.Model, map[types.Role]*relations.Relation, error) {
	m, err := r.checked(ref)
	if err != nil {
		return nil, nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	rels := make(map[types.Role]*relations.Relation, len(r.entries[m]))
	for role, rel := range r.entries[m] {
		rels[role] = rel
	}
	return m, rels, nil
}

// Models returns the registered models sorted by dotted label.
func (r *Registry) Models() []*apps.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]*apps.Model, 0, len(r.entries))
	for m := range r.entries {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].String() < models[j].String() })
	return models
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

type notRegisteredError struct {
	model *apps.Model
}

func (e *notRegisteredError) Error() string {
	return fmt.Sprintf("the model %s is not registered, please use the actstream registry to register it", e.model.Name())
}

func (e *notRegisteredError) Is(target error) bool {
	return target == types.ErrImproperlyConfigured || target == types.ErrRuntime
}
