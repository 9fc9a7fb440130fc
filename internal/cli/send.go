package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/stream"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

func newSendCmd(flags *rootFlags) *cobra.Command {
	var (
		target       string
		actionObject string
		description  string
		private      bool
	)
	cmd := &cobra.Command{
		Use:   "send <app.model:pk> <verb>",
		Short: "Record an action",
		Long: "Record that the actor performed verb, optionally on a target and with an\n" +
			"action object. Every object must belong to an actionable model.",
		Example: "  actstream send auth.user:1 joined --target auth.group:3",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			actor, err := e.instance(ctx, args[0])
			if err != nil {
				return err
			}
			opts := []stream.SendOption{stream.Description(description)}
			if target != "" {
				obj, err := e.instance(ctx, target)
				if err != nil {
					return err
				}
				opts = append(opts, stream.Target(obj))
			}
			if actionObject != "" {
				obj, err := e.instance(ctx, actionObject)
				if err != nil {
					return err
				}
				opts = append(opts, stream.ActionObject(obj))
			}
			if private {
				opts = append(opts, stream.Private())
			}

			a, err := e.stream.Send(ctx, actor, args[1], opts...)
			if err != nil {
				return classifyError(err)
			}

			if flags.jsonMode {
				return writeJSON(cmd, a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.ActionID, a)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target object as app.model:pk")
	cmd.Flags().StringVar(&actionObject, "action-object", "", "action object as app.model:pk")
	cmd.Flags().StringVar(&description, "description", "", "free text description")
	cmd.Flags().BoolVar(&private, "private", false, "mark the action as not public")
	return cmd
}

// classifyError maps validation failures to user errors and anything
// else, such as storage failures, to system errors.
func classifyError(err error) error {
	for _, target := range []error{
		types.ErrRuntime,
		types.ErrImproperlyConfigured,
		types.ErrInvalidVerb,
		types.ErrInvalidActor,
		apps.ErrLookup,
		apps.ErrUnsaved,
	} {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}
