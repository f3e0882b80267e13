package config

import (
	"github.com/spf13/cobra"

	"github.com/passvault/cli/internal/app"
	appConfig "github.com/passvault/cli/internal/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "CLI configuration commands",
	Long: `CLI configuration commands for passvault.

This command group shows and changes the settings stored in the
configuration file. The session token is never shown; use
'passvault auth logout' to remove it.`,
}

// listCmd lists every setting
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Get().Printer.Print(appConfig.Settings())
	},
}

// getCmd prints one setting
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := appConfig.GetValue(args[0])
		if err != nil {
			return err
		}
		a := app.Get()
		if a.Printer.Structured() {
			return a.Printer.Print(map[string]interface{}{args[0]: value})
		}
		a.Printer.Line("%v", value)
		return nil
	},
}

// setCmd changes one setting
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the configuration file.

Settable keys: server.url, server.timeout, format.default, format.colors`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.SetValue(args[0], args[1]); err != nil {
			return err
		}
		app.Get().Printer.PrintSuccess("%s set to %s", args[0], args[1])
		return nil
	},
}

// pathCmd prints the configuration file location
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Get().Printer.Line("%s", appConfig.Path())
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(listCmd)
	ConfigCmd.AddCommand(getCmd)
	ConfigCmd.AddCommand(setCmd)
	ConfigCmd.AddCommand(pathCmd)
}
