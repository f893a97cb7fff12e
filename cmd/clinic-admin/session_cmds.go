package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/session"
)

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && line == "" {
					return clinic.NewValidationError("password", "is required")
				}
				password = strings.TrimRight(line, "\r\n")
				fmt.Fprintln(a.out)
			}
			if username == "" {
				return clinic.NewValidationError("username", "is required")
			}
			if password == "" {
				return clinic.NewValidationError("password", "is required")
			}

			res, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			expires := res.ExpiresAt
			if expires.IsZero() {
				expires = session.ExpiryFromToken(res.Token, a.now(), a.cfg.SessionTTL)
			}
			s := session.Session{Username: res.Admin, Token: res.Token, ExpiresAt: expires}
			if err := a.sessions.Save(cmd.Context(), s); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in as %s until %s\n", s.Username, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Admin username")
	cmd.Flags().StringP("password", "p", "", "Admin password (read from stdin when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Current(cmd.Context(), a.sessions, a.now())
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (session expires %s)\n", s.Username, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}
