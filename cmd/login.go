package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	authadapter "github.com/bnema/assetforge-cli/internal/adapters/auth"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

const defaultLoginTimeout = 5 * time.Minute

var errLoginURLNotConfigured = errors.New("login url not configured: set login_url in config.toml or ASSETFORGE_LOGIN_URL, or use `af login exchange` or `af login password`")

// landing picks the view opened right after a successful sign-in.
type landing struct {
	dashboard   bool
	browse      bool
	metricsAddr string
}

func newLoginCmd(lazy *lazyApp) *cobra.Command {
	var (
		timeout time.Duration
		land    landing
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser",
		Long:  "Opens the hosted sign-in page and waits for it to redirect back with a one-time session credential, which is exchanged for a session token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := lazy.get(cmd)
			if err != nil {
				return err
			}
			profile, err := runBrowserLogin(cmd, a, timeout)
			if err != nil {
				return err
			}
			return signedIn(cmd, a, profile, land)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultLoginTimeout, "How long to wait for the browser to redirect back")
	cmd.PersistentFlags().BoolVar(&land.dashboard, "dashboard", false, "Show the library overview after signing in")
	cmd.PersistentFlags().BoolVar(&land.browse, "browse", false, "Open the interactive browser after signing in")
	cmd.PersistentFlags().StringVar(&land.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while browsing")
	cmd.MarkFlagsMutuallyExclusive("dashboard", "browse")
	cmd.AddCommand(newLoginExchangeCmd(lazy, &land), newLoginPasswordCmd(lazy, &land))

	return cmd
}

func newLoginExchangeCmd(lazy *lazyApp, land *landing) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <session_id|callback-url|#fragment>",
		Short: "Exchange a one-time session credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := lazy.get(cmd)
			if err != nil {
				return err
			}

			credential, err := authadapter.ParseExchangeCredential(args[0])
			if err != nil {
				return err
			}

			profile, err := a.session.ExchangeOnce(cmd.Context(), credential)
			if err != nil {
				return fmt.Errorf("exchange session: %w", err)
			}
			return signedIn(cmd, a, profile, *land)
		},
	}
}

func newLoginPasswordCmd(lazy *lazyApp, land *landing) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Sign in with email and password",
		Long:  "Signs in with email and password. Without --password the password is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := lazy.get(cmd)
			if err != nil {
				return err
			}

			if password == "" {
				password, err = readSecretLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			profile, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			return signedIn(cmd, a, profile, *land)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prefer stdin)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runBrowserLogin(cmd *cobra.Command, a *app, timeout time.Duration) (domain.Profile, error) {
	if strings.TrimSpace(a.cfg.LoginURL) == "" {
		return domain.Profile{}, errLoginURLNotConfigured
	}

	state, err := authadapter.NewState()
	if err != nil {
		return domain.Profile{}, fmt.Errorf("generate login state: %w", err)
	}

	server, err := authadapter.StartCallbackServer(a.cfg.Listen, state)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("start callback server: %w", err)
	}
	defer server.Close()

	loginURL, err := authadapter.BuildLoginURL(a.cfg.LoginURL, server.RedirectURI())
	if err != nil {
		return domain.Profile{}, fmt.Errorf("build login url: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to sign in to Asset Forge:\n%s\n", loginURL)

	sessionID, err := server.WaitForSessionID(timeout)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("wait for login callback: %w", err)
	}

	profile, err := a.session.ExchangeOnce(cmd.Context(), sessionID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("exchange session: %w", err)
	}
	return profile, nil
}

// signedIn reports the sign-in and optionally continues into a protected view.
// The profile just returned by the backend is handed to the guard, so the landing
// view does not verify the session again.
func signedIn(cmd *cobra.Command, a *app, profile domain.Profile, land landing) error {
	if err := printSignedIn(cmd, profile); err != nil {
		return err
	}
	if !land.dashboard && !land.browse {
		return nil
	}

	if _, err := requireSession(cmd, a, &profile); err != nil {
		return err
	}
	if land.browse {
		return runBrowse(cmd, a, land.metricsAddr)
	}
	return runDashboard(cmd, a)
}

func printSignedIn(cmd *cobra.Command, profile domain.Profile) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", profileLabel(profile))
	return err
}

func profileLabel(p domain.Profile) string {
	name := p.DisplayName()
	if p.Email != "" && name != p.Email {
		return fmt.Sprintf("%s <%s>", name, p.Email)
	}
	return name
}

func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
