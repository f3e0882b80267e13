package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/passvault/cli/cmd/auth"
	"github.com/passvault/cli/cmd/config"
	"github.com/passvault/cli/cmd/records"
	"github.com/passvault/cli/cmd/vaults"
	"github.com/passvault/cli/internal/app"
	"github.com/passvault/cli/internal/format"
	"github.com/passvault/cli/internal/utils"
)

var (
	cfgFile string
	debug   bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "passvault",
	Short: "passvault - command-line client for the passvault password manager",
	Long: `passvault gives command-line access to your password vaults.

Sign in with 'passvault auth login', list your vaults with
'passvault vaults list' and open one with 'passvault vaults open <id>'.
Passwords stay encrypted on the server and are only decrypted on demand
with the record's encryption key.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := app.Init(app.Options{
			ConfigFile: cfgFile,
			Debug:      debug,
			Output:     output,
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
			Err:        cmd.ErrOrStderr(),
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a := app.Get(); a != nil {
			a.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	a := app.Get()
	if a == nil {
		rootCmd.PrintErrln("Error:", err)
		return err
	}
	if !app.Reported(err) {
		a.Printer.PrintError("%s", err)
	}
	if utils.IsAuthError(err) {
		a.Printer.PrintWarning("Your session has expired. Run 'passvault auth login' to sign in again.")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.passvault.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", fmt.Sprintf("output format (%s)", strings.Join(format.Formats, ", ")))

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(vaults.VaultsCmd)
	rootCmd.AddCommand(records.RecordsCmd)
	rootCmd.AddCommand(config.ConfigCmd)
}
