package pharmactl

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
)

func (c *CLI) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			identity, err := c.console.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", identity.Subject, roleLabel(string(identity.Role)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	return screen(cmd, navigation.LoginPath)
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.quietNav = true
			if err := c.console.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *CLI) whoamiCommand() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity carried by the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := c.console.Session.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !identity.IsAuthenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "Subject: %s\nRole:    %s\nExpires: %s\n", identity.Subject, roleLabel(string(identity.Role)), identity.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			if !remote {
				return nil
			}
			user, err := c.console.Client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "User ID: %d\nActive:  %t\n", user.ID, user.IsActive)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also ask the backend for the account record")
	return cmd
}

func roleLabel(role string) string {
	if role == "" {
		return "no role"
	}
	return role
}
