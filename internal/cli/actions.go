package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/pkg/types"
)

func newActionsCmd(flags *rootFlags) *cobra.Command {
	var roleName string
	cmd := &cobra.Command{
		Use:   "actions <app.model:pk>",
		Short: "List the actions an object takes part in",
		Long:  "List actions, newest first, in which the object plays the given role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			role, err := types.ParseRole(roleName)
			if err != nil {
				return userError(err)
			}

			e, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			obj, err := e.instance(ctx, args[0])
			if err != nil {
				return err
			}
			actions, err := e.stream.ActionsFor(ctx, obj, role)
			if err != nil {
				return classifyError(err)
			}

			if flags.jsonMode {
				return writeJSON(cmd, actions)
			}
			for _, a := range actions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", a.Timestamp.Format(time.RFC3339), a.ActionID, a)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&roleName, "role", string(types.RoleActor), "role the object plays: actor, target or action_object")
	return cmd
}
