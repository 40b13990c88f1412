package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/authclient"
	"github.com/coursedesk/sessiongate/logger"
)

func printNotifier(w io.Writer) sessiongate.Notifier {
	return sessiongate.NotifierFunc(func(_ context.Context, n sessiongate.Notification) {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	})
}

func printNavigator(w io.Writer) sessiongate.Navigator {
	return sessiongate.NavigatorFunc(func(_ context.Context, path string) {
		fmt.Fprintf(w, "-> %s\n", path)
	})
}

func buildManager(ctx context.Context, nav sessiongate.Navigator, notifier sessiongate.Notifier) (*sessiongate.Manager, error) {
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, err
	}

	client, err := authclient.New(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}

	return sessiongate.New().
		WithConfig(cfg).
		WithAuthenticator(client).
		WithLogger(logger.FromContext(ctx)).
		WithNotifier(notifier).
		WithNavigator(nav).
		Build()
}

// openManager builds a manager that prints effects to the command's streams and
// resolves the persisted session before returning.
func openManager(cmd *cobra.Command) (*sessiongate.Manager, error) {
	mgr, err := buildManager(cmd.Context(), printNavigator(cmd.OutOrStdout()), printNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	mgr.Initialize(cmd.Context())
	return mgr, nil
}

func describe(st sessiongate.State) string {
	switch st.Status {
	case sessiongate.StatusAuthenticated:
		name := ""
		if st.Profile != nil {
			name = st.Profile.Name
			if st.Profile.Email != "" {
				name += " <" + st.Profile.Email + ">"
			}
		}
		return fmt.Sprintf("authenticated as %s (%s)", name, st.Role)
	case sessiongate.StatusUnauthenticated:
		return "not logged in"
	default:
		return "loading"
	}
}
