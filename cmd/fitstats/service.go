package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/config"
	"github.com/aaronromeo/fitstats/internal/oauth"
)

// service ties a provider to its config block and its data commands.
type service struct {
	provider oauth.Provider
	settings func(*config.Config) config.Service
	data     func(a *app, svc service) []*cobra.Command
}

func (s service) manager(a *app) (*oauth.Manager, error) {
	return a.manager(s.provider, s.settings(a.cfg))
}

func serviceCmd(a *app, svc service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   svc.provider.Name,
		Short: "Fetch " + svc.provider.Name + " data and manage its tokens",
	}
	cmd.AddCommand(leafCmds(a, svc)...)
	return cmd
}

func leafCmds(a *app, svc service) []*cobra.Command {
	return append(tokenCmds(a, svc), svc.data(a, svc)...)
}

func tokenCmds(a *app, svc service) []*cobra.Command {
	name := svc.provider.Name

	auth := &cobra.Command{
		Use:   "auth",
		Short: "Authorize " + name + " and store the issued tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := svc.manager(a)
			if err != nil {
				return err
			}
			state, err := authState(a.cfg.StateSecret)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Please go to the following URL to authorize the application and get the code:")
			fmt.Fprintln(a.out, m.AuthorizeURL(state))
			fmt.Fprint(a.out, "\nEnter the authorization code: ")

			code, err := bufio.NewReader(a.in).ReadString('\n')
			if err != nil && code == "" {
				return fmt.Errorf("read authorization code: %w", err)
			}
			tok, err := m.Exchange(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\nUpdated %s tokens; they expire on %s.\n", name, tok.Expiry().Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh " + name + " tokens if expired and rewrite the token file",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := svc.manager(a)
			if err != nil {
				return err
			}
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(a, name, st)
			if _, err := m.Sync(cmd.Context()); err != nil {
				return reauthHint(a, name, err)
			}
			fmt.Fprintf(a.out, "Created %s for GitHub Actions artifacts\n", a.cfg.TokenFile(svc.provider))
			return nil
		},
	}

	refresh := &cobra.Command{
		Use:   "tokens-refresh",
		Short: "Force a " + name + " token refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := svc.manager(a)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Refreshing %s tokens...\n", name)
			if _, err := m.Refresh(cmd.Context()); err != nil {
				return reauthHint(a, name, err)
			}
			fmt.Fprintf(a.out, "%s tokens refreshed!\n", name)
			return nil
		},
	}

	return []*cobra.Command{auth, tokens, refresh}
}

func printStatus(a *app, name string, st oauth.Status) {
	mark := func(ok bool, yes, no string) string {
		if ok {
			return yes
		}
		return no
	}
	expires := "unknown"
	if !st.ExpiresAt.IsZero() {
		expires = st.ExpiresAt.Format("2006-01-02 15:04:05 MST")
	}
	fmt.Fprintf(a.out, "%s token status:\n", name)
	fmt.Fprintf(a.out, "  Access Token:  %s\n", mark(st.HasAccessToken, "valid", "missing"))
	fmt.Fprintf(a.out, "  Refresh Token: %s\n", mark(st.HasRefreshToken, "available", "missing"))
	fmt.Fprintf(a.out, "  Expires:       %s\n", expires)
	fmt.Fprintf(a.out, "  Token Expired: %s\n", mark(st.Expired, "yes", "no"))
}

func reauthHint(a *app, name string, err error) error {
	if oauth.IsAuthError(err) {
		fmt.Fprintf(a.out, "Refresh token invalid. Please re-authenticate:\nRun: fitstats %s auth\n", name)
	}
	return err
}

// authState signs the state when a secret is configured; the manual flow
// otherwise only needs an unguessable value.
func authState(secret string) (string, error) {
	if secret != "" {
		return oauth.SignState([]byte(secret))
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
