package auth

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/passvault/cli/internal/app"
	"github.com/passvault/cli/internal/forms"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/session"
)

// AuthCmd represents the auth command
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Authentication commands for passvault.

This command group includes sign in, sign up, sign out and session status.
The session token is kept in the configuration file between invocations.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to passvault",
	Long:  "Authenticate with username and password. Missing values are prompted for.",
	RunE:  runLogin,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a passvault account",
	Long:  "Create an account and sign in with it. Missing values are prompted for.",
	RunE:  runRegister,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long:  "Forget the stored session token. The server is not contacted.",
	RunE:  runLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  "Validate the stored session with the server and show the signed in user",
	RunE:  runStatus,
}

// Status is the machine readable form of `auth status`
type Status struct {
	LoggedIn  bool         `json:"logged_in" yaml:"logged_in"`
	User      *models.User `json:"user,omitempty" yaml:"user,omitempty"`
	Server    string       `json:"server" yaml:"server"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func runLogin(cmd *cobra.Command, args []string) error {
	a := app.Get()
	ctx := cmd.Context()

	form := forms.NewLogin()
	form.Open()

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if username == "" {
		if username, err = a.Prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = a.Prompt.Secret("Password: "); err != nil {
			return err
		}
	}
	form.Set(models.LoginData{Username: username, Password: password})

	if err := form.Validate(); err != nil {
		return a.Fail(err, form.FieldErrors().Messages())
	}

	a.Session.Restore(ctx)
	res := a.Session.Login(ctx, form.Values())
	form.Dismiss()
	return report(a, res)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a := app.Get()
	ctx := cmd.Context()

	form := forms.NewRegister()
	form.Open()

	d := form.Values()
	d.Username, _ = cmd.Flags().GetString("username")
	d.Email, _ = cmd.Flags().GetString("email")
	d.FirstName, _ = cmd.Flags().GetString("first-name")
	d.LastName, _ = cmd.Flags().GetString("last-name")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if d.Username == "" {
		if d.Username, err = a.Prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if d.Email == "" {
		if d.Email, err = a.Prompt.Line("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = a.Prompt.Secret("Password: "); err != nil {
			return err
		}
	}
	d.Password = password
	form.Set(d)

	if err := form.Validate(); err != nil {
		return a.Fail(err, form.FieldErrors().Messages())
	}

	a.Session.Restore(ctx)
	res := a.Session.Register(ctx, form.Values())
	form.Dismiss()
	return report(a, res)
}

func report(a *app.App, res session.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	a.Printer.PrintSuccess("%s", res.Message)
	a.Printer.PrintInfo("Hello, %s!", res.User.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a := app.Get()

	a.Session.Restore(cmd.Context())
	if !a.Session.State().Authenticated() {
		a.Printer.PrintInfo("Not logged in")
		return nil
	}

	a.Session.Logout()
	a.Printer.PrintSuccess("Successfully logged out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := app.Get()

	st := a.Session.Restore(cmd.Context())
	status := Status{
		LoggedIn: st.Authenticated(),
		User:     st.User,
		Server:   a.Config.Server.URL,
	}
	if exp, ok := session.TokenExpiry(st.Token); ok {
		status.ExpiresAt = &exp
	}

	if a.Printer.Structured() {
		return a.Printer.Print(status)
	}

	if !status.LoggedIn {
		a.Printer.Line("Status: Not logged in")
		a.Printer.Line("Server: %s", status.Server)
		return nil
	}

	a.Printer.Line("Hello, %s!", st.User.DisplayName())
	a.Printer.Line("Status: Logged in as %s", st.User.Username)
	if st.User.Email != "" {
		a.Printer.Line("Email: %s", st.User.Email)
	}
	a.Printer.Line("Server: %s", status.Server)
	if status.ExpiresAt != nil {
		a.Printer.Line("Session expires: %s", status.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringP("username", "u", "", "Username")
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().String("first-name", "", "First name")
	registerCmd.Flags().String("last-name", "", "Last name")

	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}
