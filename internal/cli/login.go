package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// LoginCmd authenticates against the configured collaborator and persists the session.
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		Long:  "Prompt for a password (or read it from stdin), log in and store the session snapshot.",
		Args:  cobra.NoArgs,
		RunE:  runLogin,
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	in := bufio.NewReader(cmd.InOrStdin())

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
		line, err := readLine(in)
		if err != nil {
			return err
		}
		email = line
	}
	password, err := readPassword(cmd, in)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	mgr, err := openManager(cmd)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if _, err := mgr.Login(cmd.Context(), email, password); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), describe(mgr.State()))
	return nil
}

func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
