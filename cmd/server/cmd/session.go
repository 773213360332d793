package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/planner/internal/client"
	"github.com/spf13/cobra"
)

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an administrator exists and who is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			exists, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:        %s\n", opts.serverURL)
			if !exists {
				fmt.Fprintln(out, "Administrator: not registered (run 'server register')")
				return nil
			}
			fmt.Fprintln(out, "Administrator: registered")
			if s := c.Session(); s != nil {
				fmt.Fprintf(out, "Logged in as:  %s\n", s.User.Username)
				if !s.ExpiresAt.IsZero() {
					fmt.Fprintf(out, "Session until: %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
				}
			} else {
				fmt.Fprintln(out, "Logged in as:  nobody (run 'server login')")
			}
			return nil
		},
	}
}

func newRegisterCommand(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the single administrator account",
		Long: `Register the administrator. Only one administrator can ever be registered;
once it exists, this command fails. Missing values are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			exists, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			if exists {
				return errors.New("an administrator is already registered; use 'server login'")
			}

			p := newPrompter(cmd)
			if username, err = p.valueOrPrompt(username, "Username", false); err != nil {
				return err
			}
			confirm := password
			if password, err = p.valueOrPrompt(password, "Password", true); err != nil {
				return err
			}
			if confirm == "" {
				if confirm, err = p.password("Confirm password"); err != nil {
					return err
				}
			}

			info, err := c.Register(cmd.Context(), username, password, confirm)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Administrator %q registered. Run 'server login' to sign in.\n", info.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "administrator username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "administrator password (prompted if omitted)")
	return cmd
}

func newLoginCommand(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the administrator and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if username, err = p.valueOrPrompt(username, "Username", false); err != nil {
				return err
			}
			if password, err = p.valueOrPrompt(password, "Password", true); err != nil {
				return err
			}

			session, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", session.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "administrator username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "administrator password (prompted if omitted)")
	return cmd
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				// The local session is gone either way.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the administrator the stored session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", me.Username, me.ID)
			return nil
		},
	}
}

// describe turns client errors into messages a person at a terminal can act on.
func describe(err error) error {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return errors.New("not logged in; run 'server login' first")
	case errors.Is(err, client.ErrUnauthorized):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" && apiErr.Detail != "authentication required" {
			return errors.New(apiErr.Detail)
		}
		return errors.New("session expired or invalid; run 'server login' again")
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Title
		}
		for field, problem := range apiErr.Fields {
			if msg == "" {
				msg = field + " " + problem
			}
		}
		if msg != "" {
			return errors.New(msg)
		}
	}
	return err
}
