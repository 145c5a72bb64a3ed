package main

import (
	"errors"
	"fmt"

	"bankdesk/internal/session"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// askOne is swappable in tests.
var askOne = survey.AskOne

var loginCmd = &cobra.Command{
	Use:   "login [identifier]",
	Short: "Sign in to the banking API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		identifier := ""
		if len(args) > 0 {
			identifier = args[0]
		}
		if identifier == "" {
			if err := askOne(&survey.Input{Message: "Username or email:"}, &identifier); err != nil {
				return err
			}
		}

		var password string
		if err := askOne(&survey.Password{Message: "Password:"}, &password); err != nil {
			return err
		}

		if err := a.sessions.Login(cmd.Context(), identifier, password); err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) {
				return fmt.Errorf("invalid username or password")
			}
			return err
		}

		profile, _ := a.sessions.CurrentUser()
		fmt.Printf("Signed in as %s\n", profile.UserName)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.sessions.Logout()
		if err := a.workspace.ClearSelection(); err != nil {
			a.logger.Warn("failed to clear workspace", "error", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, ok := a.sessions.CurrentUser()
		if !ok {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("%s <%s> (id %s)\n", profile.UserName, profile.UserEmail, profile.UserID)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		userName, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		if userName == "" {
			if err := askOne(&survey.Input{Message: "Username:"}, &userName); err != nil {
				return err
			}
		}
		if email == "" {
			if err := askOne(&survey.Input{Message: "Email:"}, &email); err != nil {
				return err
			}
		}

		var password string
		if err := askOne(&survey.Password{Message: "Password:"}, &password); err != nil {
			return err
		}

		resp, err := a.sessions.Register(cmd.Context(), userName, password, email)
		if err != nil {
			return err
		}
		fmt.Printf("Registered administrator %s\n", resp.UserName)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("username", "", "administrator username")
	registerCmd.Flags().String("email", "", "administrator email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}
