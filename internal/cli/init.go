package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/internal/paths"
	"github.com/mesh-intelligence/actstream/internal/sqlite"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize actstream configuration and storage",
		Long: "Create the configuration directory with a default config.yaml when missing,\n" +
			"then create the data directory and the action store schema.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	configPath := paths.ConfigFile(configDir)
	created, err := writeConfigIfMissing(configPath, flags.dataDir)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	// Settings are resolved after the file exists so an existing data_dir
	// is honored.
	e, err := loadEnv(cmd, flags)
	if err != nil {
		return err
	}

	backend := sqlite.NewBackend()
	backend.SetLogger(e.logger)
	if err := backend.Attach(e.settings.backend); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if created {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Action store ready in %s (%d actionable models)\n", e.settings.backend.DataDir, e.registry.Len())
	return nil
}
