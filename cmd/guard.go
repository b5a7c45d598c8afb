package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run `af login`")

// requireSession runs the session guard. Protected commands call it before any
// catalog request and produce no output when it fails. A profile returned by a
// sign-in in the same process is passed as known and skips verification.
func requireSession(cmd *cobra.Command, a *app, known *domain.Profile) (domain.Profile, error) {
	decision := a.session.Guard(cmd.Context(), known)
	if decision.Allowed {
		return decision.Profile, nil
	}

	a.logger.Debug("session guard denied", "redirect", decision.RedirectTo, "error", decision.Err)

	var authErr *domain.AuthError
	if errors.As(decision.Err, &authErr) && authErr.Reason != "" {
		return domain.Profile{}, fmt.Errorf("%w (%s)", errNotSignedIn, authErr.Reason)
	}
	return domain.Profile{}, errNotSignedIn
}

// guarded wires the app, checks the session and then hands over to run.
func guarded(lazy *lazyApp, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := lazy.get(cmd)
		if err != nil {
			return err
		}
		if _, err := requireSession(cmd, a, nil); err != nil {
			return err
		}
		return run(cmd, a, args)
	}
}
