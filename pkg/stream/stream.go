// Package stream records Actions between registered models and reads them
// back through the generic relations the registry attached.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/registry"
	"github.com/mesh-intelligence/actstream/pkg/relations"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

// Store persists actions. *sqlite.Backend implements it.
type Store interface {
	SaveAction(ctx context.Context, a *types.Action) (string, error)
	RelatedActions(ctx context.Context, rel *relations.Relation, objectID string) ([]*types.Action, error)
}

// Resolver maps a stored content type back to its model.
type Resolver interface {
	Resolve(appLabel, modelName string) (*apps.Model, error)
}

// Stream sends and queries actions for models registered in a Registry.
type Stream struct {
	registry *registry.Registry
	resolver Resolver
	store    Store
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Stream.
type Option func(*Stream)

// WithLogger sets the logger used to report sent actions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for action timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Stream) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Stream over reg, resolving content types with resolver and
// persisting to store.
func New(reg *registry.Registry, resolver Resolver, store Store, opts ...Option) *Stream {
	s := &Stream{
		registry: reg,
		resolver: resolver,
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendOption sets an optional part of an action.
type SendOption func(*sendOptions)

type sendOptions struct {
	target       any
	actionObject any
	description  string
	private      bool
	at           time.Time
}

// Target sets the object the action was performed on.
func Target(obj any) SendOption {
	return func(o *sendOptions) { o.target = obj }
}

// ActionObject sets the object linked to the action itself.
func ActionObject(obj any) SendOption {
	return func(o *sendOptions) { o.actionObject = obj }
}

// Description sets the free text description.
func Description(text string) SendOption {
	return func(o *sendOptions) { o.description = text }
}

// Private marks the action as not public.
func Private() SendOption {
	return func(o *sendOptions) { o.private = true }
}

// At sets the action timestamp instead of the current time.
func At(t time.Time) SendOption {
	return func(o *sendOptions) { o.at = t }
}

// Send records that actor performed verb. The actor, and the target and
// action object when given, must be saved instances of registered models;
// otherwise the registry check error is returned and nothing is stored.
func (s *Stream) Send(ctx context.Context, actor any, verb string, opts ...SendOption) (*types.Action, error) {
	if verb == "" {
		return nil, types.ErrInvalidVerb
	}
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &types.Action{
		Verb:        verb,
		Description: o.description,
		Public:      !o.private,
		Timestamp:   o.at,
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}

	participants := []struct {
		role types.Role
		obj  any
	}{
		{types.RoleActor, actor},
		{types.RoleTarget, o.target},
		{types.RoleActionObject, o.actionObject},
	}
	for _, p := range participants {
		if p.obj == nil {
			if p.role == types.RoleActor {
				return nil, types.ErrInvalidActor
			}
			continue
		}
		ct, id, err := s.identify(ctx, p.obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.role, err)
		}
		if err := a.SetParticipant(p.role, ct, id); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.SaveAction(ctx, a); err != nil {
		return nil, fmt.Errorf("saving action: %w", err)
	}
	s.logger.Info("action sent", "action_id", a.ActionID, "action", a.String())
	return a, nil
}

// identify checks obj against the registry and returns its content type and
// primary key.
func (s *Stream) identify(ctx context.Context, obj any) (contentType, objectID string, err error) {
	m, _, err := s.registry.Relations(registry.Of(obj))
	if err != nil {
		return "", "", err
	}
	id, err := m.PrimaryKey(ctx, obj)
	if err != nil {
		return "", "", err
	}
	return m.String(), id, nil
}

// ActionsFor returns the actions in which obj plays role, newest first.
func (s *Stream) ActionsFor(ctx context.Context, obj any, role types.Role) ([]*types.Action, error) {
	m, rels, err := s.registry.Relations(registry.Of(obj))
	if err != nil {
		return nil, err
	}
	rel, ok := rels[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidRole, role)
	}
	id, err := m.PrimaryKey(ctx, obj)
	if err != nil {
		return nil, err
	}
	return s.store.RelatedActions(ctx, rel, id)
}

// Participant returns a new instance of the model stored for role in a, with
// only its primary key set. Returns ErrNotFound when the role is unset.
func (s *Stream) Participant(ctx context.Context, a *types.Action, role types.Role) (any, error) {
	ct, id := a.Participant(role)
	if ct == "" {
		return nil, fmt.Errorf("%w: action %s has no %s", types.ErrNotFound, a.ActionID, role)
	}
	appLabel, modelName, err := apps.ParseLabel(ct)
	if err != nil {
		return nil, err
	}
	m, err := s.resolver.Resolve(appLabel, modelName)
	if err != nil {
		return nil, err
	}
	return m.New(ctx, id)
}
