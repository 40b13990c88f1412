package cli

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate/internal/devauth"
	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/token"
)

// DevAuthCmd runs a local authentication collaborator seeded with one user per role.
func DevAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devauth",
		Short: "Run a development authentication server",
		Long: "Serve the login endpoint configured in SESSIONGATE_AUTH_LOGIN_PATH with one " +
			"seeded account per role. Every account uses the password \"password\".",
		Args: cobra.NoArgs,
		RunE: runDevAuth,
	}
	cmd.Flags().String("addr", "127.0.0.1:8081", "listen address")
	cmd.Flags().Duration("ttl", time.Hour, "issued token lifetime")
	cmd.Flags().String("hs256-secret", "", "sign with HS256 using this secret instead of a fresh Ed25519 key")
	return cmd
}

func newDevIssuer(ttl time.Duration, secret string) (*token.Issuer, error) {
	if secret != "" {
		return token.NewIssuer(token.IssuerConfig{
			TTL:           ttl,
			SigningMethod: token.MethodHS256,
			PrivateKey:    []byte(secret),
			Issuer:        "sessiongate-devauth",
		})
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return token.NewIssuer(token.IssuerConfig{
		TTL:           ttl,
		SigningMethod: token.MethodEd25519,
		PrivateKey:    priv,
		Issuer:        "sessiongate-devauth",
	})
}

func runDevAuth(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)

	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}
	ttl, _ := cmd.Flags().GetDuration("ttl")
	secret, _ := cmd.Flags().GetString("hs256-secret")
	issuer, err := newDevIssuer(ttl, secret)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	users := devauth.DefaultUsers()
	srv, err := devauth.NewServer(devauth.Config{Issuer: issuer, Users: users})
	if err != nil {
		return err
	}

	e := newEcho()
	srv.Register(e, cfg.Auth.LoginPath)

	for _, u := range users {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", u.Email, u.Role)
	}
	addr, _ := cmd.Flags().GetString("addr")
	log.Info("Serving devauth", "addr", addr, "path", cfg.Auth.LoginPath)
	return runEcho(ctx, e, addr)
}
