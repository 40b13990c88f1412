package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(mgr.State()))
			return nil
		},
	}
}
