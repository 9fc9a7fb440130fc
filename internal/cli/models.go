package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/pkg/registry"
)

// modelRow is one line of models output.
type modelRow struct {
	Label      string `json:"label"`
	Table      string `json:"table"`
	Installed  bool   `json:"installed"`
	Abstract   bool   `json:"abstract"`
	Actionable bool   `json:"actionable"`
}

func newModelsCmd(flags *rootFlags) *cobra.Command {
	var actionableOnly bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and whether they are actionable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}

			rows := []modelRow{}
			for _, m := range e.apps.Models() {
				actionable := e.registry.IsRegistered(registry.Of(m))
				if actionableOnly && !actionable {
					continue
				}
				rows = append(rows, modelRow{
					Label:      m.String(),
					Table:      m.Table(),
					Installed:  e.apps.Installed(m.AppLabel()),
					Abstract:   m.Abstract(),
					Actionable: actionable,
				})
			}

			if flags.jsonMode {
				return writeJSON(cmd, rows)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tTABLE\tINSTALLED\tABSTRACT\tACTIONABLE")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Label, r.Table, yesNo(r.Installed), yesNo(r.Abstract), yesNo(r.Actionable))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&actionableOnly, "actionable", false, "only list registered models")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
