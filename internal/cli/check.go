package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/pkg/registry"
)

type checkResult struct {
	Model string `json:"model"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <app.model>...",
		Short: "Check that models are registered as actionable",
		Long:  "Check each model label against the registry. Exits 1 if any label is not registered.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}

			results := make([]checkResult, 0, len(args))
			failed := 0
			for _, label := range args {
				r := checkResult{Model: label, OK: true}
				if err := e.registry.Check(registry.Named(label)); err != nil {
					r.OK = false
					r.Error = err.Error()
					failed++
				}
				results = append(results, r)
			}

			if flags.jsonMode {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.OK {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", r.Model)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Model, r.Error)
					}
				}
			}

			if failed > 0 {
				return userError(fmt.Errorf("%d of %d models are not actionable", failed, len(args)))
			}
			return nil
		},
	}
}
