// Package apps is the application registry that owns model types: it records
// which applications are installed, declares Go struct types as models under
// an application label, and resolves "app.model" labels back to model
// handles.
package apps

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Lookup and declaration errors.
var (
	ErrLookup       = errors.New("model lookup failed")
	ErrInvalidLabel = errors.New("invalid label")
	ErrNotModel     = errors.New("not a model type")
	ErrConflict     = errors.New("conflicting model declaration")
	ErrNoPrimaryKey = errors.New("model has no primary key")
	ErrUnsaved      = errors.New("instance has no primary key value")
)

// Apps holds the declared models and the set of installed applications for
// a single process.
type Apps struct {
	mu        sync.RWMutex
	installed map[string]bool
	models    map[string]map[string]*Model // app label -> model name -> model
	byType    map[reflect.Type]*Model
	schemas   sync.Map // ORM schema cache shared by all declarations
}

// New creates an Apps with the given application labels installed.
func New(installed ...string) *Apps {
	a := &Apps{
		installed: make(map[string]bool),
		models:    make(map[string]map[string]*Model),
		byType:    make(map[reflect.Type]*Model),
	}
	a.Install(installed...)
	return a
}

// Install marks application labels as installed. Idempotent.
func (a *Apps) Install(labels ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, l := range labels {
		a.installed[l] = true
	}
}

// Installed reports whether the application label is installed.
func (a *Apps) Installed(appLabel string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.installed[appLabel]
}

// InstalledApps returns the installed application labels, sorted.
func (a *Apps) InstalledApps() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	labels := make([]string, 0, len(a.installed))
	for l := range a.installed {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Declare parses each value as a model type owned by appLabel and returns
// the handles in argument order. Values may be struct values, pointers to
// structs, or reflect.Types, optionally wrapped by With or Abstract.
// Declaring the same type twice returns the existing handle; declaring a
// different type under a taken label fails with ErrConflict. Declaration
// does not install the application.
func (a *Apps) Declare(appLabel string, models ...any) ([]*Model, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	declared := make([]*Model, 0, len(models))
	for _, arg := range models {
		v, opts := unwrap(arg)
		if t := structType(v); t != nil {
			if m, ok := a.byType[t]; ok {
				declared = append(declared, m)
				continue
			}
		}

		m, err := newModel(appLabel, v, opts, &a.schemas)
		if err != nil {
			return declared, err
		}

		byName := a.models[m.appLabel]
		if byName == nil {
			byName = make(map[string]*Model)
			a.models[m.appLabel] = byName
		}
		if other, ok := byName[m.modelName]; ok {
			return declared, fmt.Errorf("%w: %s is already declared by %s", ErrConflict, m, other.typ)
		}

		byName[m.modelName] = m
		a.byType[m.typ] = m
		declared = append(declared, m)
	}
	return declared, nil
}

// Resolve returns the model declared as modelName in appLabel. The model
// name is matched case-insensitively. Errors wrap ErrLookup.
func (a *Apps) Resolve(appLabel, modelName string) (*Model, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	byName, ok := a.models[appLabel]
	if !ok {
		return nil, fmt.Errorf("%w: no app with label %q", ErrLookup, appLabel)
	}
	m, ok := byName[strings.ToLower(modelName)]
	if !ok {
		return nil, fmt.Errorf("%w: app %q doesn't have a %q model", ErrLookup, appLabel, modelName)
	}
	return m, nil
}

// ModelOf returns the model for v, which may be a *Model, a reflect.Type, or
// a struct value or pointer of a declared type.
func (a *Apps) ModelOf(v any) (*Model, bool) {
	if m, ok := v.(*Model); ok {
		return m, m != nil
	}
	t := structType(v)
	if t == nil {
		return nil, false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.byType[t]
	return m, ok
}

// Models returns every declared model sorted by dotted label.
func (a *Apps) Models() []*Model {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var all []*Model
	for _, byName := range a.models {
		for _, m := range byName {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].String() < all[j].String() })
	return all
}

// ParseLabel splits a dotted "app.model" label. Errors wrap both ErrLookup
// and ErrInvalidLabel.
func ParseLabel(label string) (appLabel, modelName string, err error) {
	appLabel, modelName, ok := strings.Cut(label, ".")
	if !ok || appLabel == "" || modelName == "" || strings.Contains(modelName, ".") {
		return "", "", fmt.Errorf("%w: %w: %q, expected \"app.model\"", ErrLookup, ErrInvalidLabel, label)
	}
	return appLabel, modelName, nil
}
