package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLogoutCmd(lazy *lazyApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := lazy.get(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func newWhoamiCmd(lazy *lazyApp) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(lazy.opts.output)
			if err != nil {
				return err
			}
			a, err := lazy.get(cmd)
			if err != nil {
				return err
			}

			profile, err := requireSession(cmd, a, nil)
			if err != nil {
				return err
			}

			out := toProfileOutput(profile)
			if claims, ok := a.session.TokenClaims(cmd.Context()); ok {
				out.TokenSubject = claims.Subject
				if !claims.ExpiresAt.IsZero() {
					out.TokenExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
				}
			}

			if format != outputText {
				return writeStructured(cmd.OutOrStdout(), format, out)
			}

			lines := []string{
				"Signed in as " + profileLabel(profile),
				"user id: " + profile.ID,
			}
			if out.TokenExpiresAt != "" {
				lines = append(lines, "token expires: "+out.TokenExpiresAt)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return err
		},
	}
}
