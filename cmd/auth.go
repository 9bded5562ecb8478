package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/auth"
	"github.com/pickbetter/labelscan/internal/models"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return credentialCommand(cmd, args[0], false)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return credentialCommand(cmd, args[0], true)
	},
}

func credentialCommand(cmd *cobra.Command, email string, signup bool) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		in := bufio.NewScanner(os.Stdin)
		if !in.Scan() {
			return fmt.Errorf("no password given")
		}
		password = strings.TrimSpace(in.Text())
	}

	provider := auth.NewProvider(app.cfg.Auth.BaseURL, app.cfg.Auth.APIKey)
	var session *auth.Session
	if signup {
		session, err = provider.SignUp(ctx, email, password)
	} else {
		session, err = provider.SignIn(ctx, email, password)
	}
	if err != nil {
		return err
	}

	path, err := models.DefaultSessionPath()
	if err != nil {
		return err
	}
	if err := auth.SaveSession(path, session); err != nil {
		return err
	}

	ev := models.NewScanEvent(models.EventSignedIn, time.Now())
	ev.UserID = session.UserID
	app.emitter.Emit(ctx, ev)

	fmt.Printf("Signed in as %s\n", session.Email)
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		path, err := models.DefaultSessionPath()
		if err != nil {
			return err
		}
		if err := auth.ClearSession(path); err != nil {
			return err
		}

		ev := models.NewScanEvent(models.EventSignedOut, time.Now())
		ev.UserID = app.userID()
		app.emitter.Emit(ctx, ev)

		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := models.DefaultSessionPath()
		if err != nil {
			return err
		}
		session, err := auth.LoadSession(path)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", session.Email, session.UserID)
		if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(time.Now()) {
			fmt.Println("Session token has expired; run 'labelscan login' again.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	signupCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}
