// Package relations keeps generic relation descriptors in a side table.
//
// A generic relation links an owner model to a related model (the Action
// record type) whose rows point back at owner instances through a
// (content type, object id) column pair rather than a fixed foreign key.
// Descriptors are indexed by (owner, name) for the forward accessor and by
// (related, related query name) for the reverse one, so neither model type
// is mutated to expose them.
package relations

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/actstream/pkg/apps"
)

// Side table errors.
var (
	ErrRelationExists  = errors.New("relation already exists")
	ErrInvalidRelation = errors.New("invalid relation")
)

// Options names the columns and reverse accessor of a generic relation.
type Options struct {
	ContentTypeField string
	ObjectIDField    string
	RelatedQueryName string
}

// Relation describes one generic relation from Owner to Related.
type Relation struct {
	Owner   *apps.Model
	Related *apps.Model

	// Name is the accessor on Owner, e.g. "actor_actions".
	Name string

	// ContentTypeField and ObjectIDField name the columns of Related that
	// identify an Owner instance.
	ContentTypeField string
	ObjectIDField    string

	// RelatedQueryName is the reverse accessor on Related, e.g.
	// "actions_with_auth_user_as_actor".
	RelatedQueryName string
}

// Options returns the column and reverse accessor names of r.
func (r *Relation) Options() Options {
	return Options{
		ContentTypeField: r.ContentTypeField,
		ObjectIDField:    r.ObjectIDField,
		RelatedQueryName: r.RelatedQueryName,
	}
}

func (r *Relation) String() string {
	return fmt.Sprintf("%s.%s -> %s(%s, %s)", r.Owner, r.Name, r.Related, r.ContentTypeField, r.ObjectIDField)
}

type ownerKey struct {
	owner *apps.Model
	name  string
}

type reverseKey struct {
	related   *apps.Model
	queryName string
}

// Table is the side table of generic relations. It is safe for concurrent
// use.
type Table struct {
	mu      sync.RWMutex
	byOwner map[ownerKey]*Relation
	reverse map[reverseKey]*Relation
}

// NewTable creates an empty side table.
func NewTable() *Table {
	return &Table{
		byOwner: make(map[ownerKey]*Relation),
		reverse: make(map[reverseKey]*Relation),
	}
}

// Attach creates a generic relation named name on owner pointing at related
// and records it under both indexes. Attaching a name already used on owner,
// or a related query name already used on related, fails with
// ErrRelationExists.
func (t *Table) Attach(related, owner *apps.Model, name string, opts Options) (*Relation, error) {
	if related == nil || owner == nil || name == "" ||
		opts.ContentTypeField == "" || opts.ObjectIDField == "" || opts.RelatedQueryName == "" {
		return nil, fmt.Errorf("%w: %q on %v", ErrInvalidRelation, name, owner)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fk := ownerKey{owner: owner, name: name}
	if _, exists := t.byOwner[fk]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrRelationExists, owner, name)
	}
	rk := reverseKey{related: related, queryName: opts.RelatedQueryName}
	if _, exists := t.reverse[rk]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrRelationExists, related, opts.RelatedQueryName)
	}

	rel := &Relation{
		Owner:            owner,
		Related:          related,
		Name:             name,
		ContentTypeField: opts.ContentTypeField,
		ObjectIDField:    opts.ObjectIDField,
		RelatedQueryName: opts.RelatedQueryName,
	}
	t.byOwner[fk] = rel
	t.reverse[rk] = rel
	return rel, nil
}

// Get returns the relation named name on owner.
func (t *Table) Get(owner *apps.Model, name string) (*Relation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rel, ok := t.byOwner[ownerKey{owner: owner, name: name}]
	return rel, ok
}

// Reverse returns the relation exposed on related under queryName.
func (t *Table) Reverse(related *apps.Model, queryName string) (*Relation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rel, ok := t.reverse[reverseKey{related: related, queryName: queryName}]
	return rel, ok
}

// ForOwner returns every relation attached to owner, sorted by name.
func (t *Table) ForOwner(owner *apps.Model) []*Relation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var rels []*Relation
	for k, rel := range t.byOwner {
		if k.owner == owner {
			rels = append(rels, rel)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })
	return rels
}

// Len returns the number of relations in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byOwner)
}
