package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate/guard"
)

var (
	errRedirected = errors.New("access redirected")
	errNotFound   = errors.New("no such route")
)

// CanCmd evaluates the route table for the persisted session. It fails when the path
// would not render.
func CanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can <path>",
		Short: "Check whether the current session may open a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctrl := guard.NewController(mgr)
			out := ctrl.Route(cmd.Context(), args[0], printNavigator(cmd.OutOrStdout()))
			switch out.Kind {
			case guard.Render:
				fmt.Fprintf(cmd.OutOrStdout(), "allow %s\n", out.Route.Path)
				return nil
			case guard.Redirect:
				return fmt.Errorf("%w: %s to %s", errRedirected, args[0], out.Target)
			case guard.NotFound:
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			default:
				return fmt.Errorf("session still loading for %s", args[0])
			}
		},
	}
}
