package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/internal/models"
	"github.com/mesh-intelligence/actstream/internal/sqlite"
	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/registry"
	"github.com/mesh-intelligence/actstream/pkg/relations"
	"github.com/mesh-intelligence/actstream/pkg/stream"
)

// env is everything a command needs once configuration has been applied:
// the declared models, the populated registry, and, when opened, the action
// store.
type env struct {
	settings  *settings
	logger    *slog.Logger
	apps      *apps.Apps
	relations *relations.Table
	registry  *registry.Registry
	backend   *sqlite.Backend
	stream    *stream.Stream
}

// loadEnv resolves settings and populates the registry from config. A
// configured model that fails registration is a configuration error.
func loadEnv(cmd *cobra.Command, flags *rootFlags) (*env, error) {
	s, err := resolveSettings(flags)
	if err != nil {
		return nil, sysError(err)
	}
	logger := newLogger(s.logLevel, s.logFormat, cmd.ErrOrStderr())

	a := apps.New(s.installedApps...)
	if err := models.Declare(a); err != nil {
		return nil, sysError(fmt.Errorf("declare models: %w", err))
	}

	rt := relations.NewTable()
	reg := registry.New(a, rt,
		registry.WithLogger(logger),
		registry.WithActionModel(s.actionModel),
	)
	if err := reg.Register(registry.Labels(s.models...)...); err != nil {
		return nil, sysError(fmt.Errorf("config %s: %w", cfgKeyModels, err))
	}

	return &env{
		settings:  s,
		logger:    logger,
		apps:      a,
		relations: rt,
		registry:  reg,
	}, nil
}

// openEnv is loadEnv plus an attached action store. The caller must call
// close.
func openEnv(cmd *cobra.Command, flags *rootFlags) (*env, error) {
	e, err := loadEnv(cmd, flags)
	if err != nil {
		return nil, err
	}

	b := sqlite.NewBackend()
	b.SetLogger(e.logger)
	if err := b.Attach(e.settings.backend); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	e.backend = b
	e.stream = stream.New(e.registry, e.apps, b, stream.WithLogger(e.logger))
	return e, nil
}

func (e *env) close() {
	if e.backend != nil {
		if err := e.backend.Detach(); err != nil {
			e.logger.Warn("detach backend", "error", err)
		}
	}
}

// instance parses "app.model:pk" and returns a new instance of the model
// with its primary key set.
func (e *env) instance(ctx context.Context, ref string) (any, error) {
	label, pk, ok := strings.Cut(ref, ":")
	if !ok || pk == "" {
		return nil, userError(fmt.Errorf("invalid object reference %q, expected \"app.model:pk\"", ref))
	}
	appLabel, modelName, err := apps.ParseLabel(label)
	if err != nil {
		return nil, userError(err)
	}
	m, err := e.apps.Resolve(appLabel, modelName)
	if err != nil {
		return nil, userError(err)
	}
	obj, err := m.New(ctx, pk)
	if err != nil {
		return nil, userError(err)
	}
	return obj, nil
}

// writeJSON prints v as indented JSON to the command output.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	return nil
}
