// Package cli implements the sessiongate command line.
package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/logger"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg sessiongate.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) (sessiongate.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(sessiongate.Config)
	if !ok {
		return sessiongate.Config{}, errors.New("configuration missing from context")
	}
	return cfg, nil
}

// RootCmd builds the command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sessiongate",
		Short:         "Role-gated session manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadRuntime(cmd)
		},
	}

	root.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default ./.env when present)")
	root.PersistentFlags().String("store", "", "session backend: memory, file or redis (default file unless configured)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().Bool("log-json", false, "emit JSON logs")

	root.AddCommand(
		LoginCmd(),
		LogoutCmd(),
		StatusCmd(),
		CanCmd(),
		ServeCmd(),
		DevAuthCmd(),
	)
	return root
}

func loadRuntime(cmd *cobra.Command) error {
	flags := cmd.Flags()
	envFiles, err := flags.GetStringSlice("env-file")
	if err != nil {
		return err
	}
	cfg, err := sessiongate.LoadConfig(envFiles...)
	if err != nil {
		return err
	}

	backend, _ := flags.GetString("store")
	switch {
	case backend != "":
		cfg.Store.Backend = sessiongate.StoreBackend(backend)
	case cfg.Store.Backend == sessiongate.BackendMemory && os.Getenv(sessiongate.EnvPrefix+"STORE_BACKEND") == "":
		// Each CLI invocation is a new process.
		cfg.Store.Backend = sessiongate.BackendFile
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Log.Level = logger.LogLevel(level)
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON, _ = flags.GetBool("log-json")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewLogger(&logger.Config{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
		TimeFormat: time.Kitchen,
		Prefix:     "sessiongate",
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withConfig(ctx, cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	return nil
}
