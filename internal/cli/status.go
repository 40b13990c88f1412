package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/policy"
)

type statusView struct {
	Status    string               `json:"status"`
	Role      string               `json:"role,omitempty"`
	Profile   *sessiongate.Profile `json:"profile,omitempty"`
	Home      string               `json:"home"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the restored session",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().Bool("json", false, "print the state as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	mgr, err := openManager(cmd)
	if err != nil {
		return err
	}
	defer mgr.Close()

	st := mgr.State()
	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		fmt.Fprintln(cmd.OutOrStdout(), describe(st))
		return nil
	}

	view := statusView{
		Status:  st.Status.String(),
		Role:    st.Role.String(),
		Profile: st.Profile,
		Home:    policy.Home(st.Role),
	}
	if exp := mgr.ExpiresAt(); !exp.IsZero() {
		view.ExpiresAt = &exp
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
