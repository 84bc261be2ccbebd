package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/httpapi"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/config"
)

// ErrEmptyPassword is returned when no password was typed or piped in.
var ErrEmptyPassword = errors.New("password must not be empty")

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	cmd.AddCommand(newUserCreateCommand())

	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var email, role, memberID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login; the password is read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.RegisterUser.Handle(ctx, registeruser.BuildCommand(
					email,
					password,
					core.Role(role),
					core.MemberIDString(memberID),
					time.Now(),
				))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "user created", result)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", string(core.RoleStudent), "admin, librarian or student")
	cmd.Flags().StringVar(&memberID, "member", "", "member linked to a student login")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword masks input on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	var password string

	if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

		raw, err := term.ReadPassword(int(in.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}

		password = string(raw)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}

		password = line
	}

	password = strings.TrimSpace(password)
	if password == "" {
		return "", ErrEmptyPassword
	}

	return password, nil
}

func newTokenCommand() *cobra.Command {
	var (
		userID, role, memberID string
		ttl                    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token with JWT_SECRET, for scripts and smoke tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.JWTSecret == "" {
				return httpapi.ErrMissingJWTSecret
			}

			token, err := httpapi.SignToken(
				[]byte(cfg.JWTSecret),
				core.UserIDString(userID),
				core.Role(role),
				core.MemberIDString(memberID),
				time.Now(),
				ttl,
			)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the subject claim")
	cmd.Flags().StringVar(&role, "role", string(core.RoleAdmin), "role claim")
	cmd.Flags().StringVar(&memberID, "member", "", "member claim for student tokens")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
