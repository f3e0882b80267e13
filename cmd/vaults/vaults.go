package vaults

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/passvault/cli/internal/app"
	"github.com/passvault/cli/internal/forms"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/shell"
	"github.com/passvault/cli/internal/utils"
	"github.com/passvault/cli/internal/vault"
)

// VaultsCmd represents the vaults command
var VaultsCmd = &cobra.Command{
	Use:   "vaults",
	Short: "Vault management commands",
	Long: `Vault management commands for passvault.

This command group lists, creates, edits and deletes vaults, and opens a
vault in an interactive shell where its records can be revealed.`,
	PersistentPreRunE: requireLogin,
}

// listCmd lists vaults
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List vaults",
	Long:  "List every vault owned by the signed in user",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// createCmd creates a vault
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a vault",
	Long:  "Create a vault protected by an unlock code. Without --name every field is prompted for.",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

// updateCmd edits a vault
var updateCmd = &cobra.Command{
	Use:   "update <vault-id>",
	Short: "Edit a vault",
	Long:  "Edit the fields of a vault. Without flags every field is prompted for, prefilled with its current value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

// deleteCmd deletes a vault
var deleteCmd = &cobra.Command{
	Use:   "delete <vault-id>",
	Short: "Delete a vault",
	Long:  "Delete a vault and all of its records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// openCmd unlocks a vault
var openCmd = &cobra.Command{
	Use:   "open <vault-id>",
	Short: "Open a vault",
	Long: `Unlock a vault with its unlock code and start an interactive shell
on its records. Revealed passwords are forgotten when the shell exits.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

// Row is one line of the vault list
type Row struct {
	ID           models.ID `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Type         string    `json:"vault_type" yaml:"vault_type"`
	Status       string    `json:"status" yaml:"status"`
	Shared       bool      `json:"is_shared" yaml:"is_shared"`
	Accesses     int       `json:"access_count" yaml:"access_count"`
	LastAccessed time.Time `json:"last_accessed_at" yaml:"last_accessed_at" table:"Last Accessed"`
}

// RowOf flattens a vault for display
func RowOf(v models.Vault) Row {
	return Row{
		ID:           v.ID,
		Name:         v.Attributes.Name,
		Type:         v.Attributes.VaultType,
		Status:       v.Attributes.Status,
		Shared:       v.Attributes.IsShared,
		Accesses:     v.Attributes.AccessCount,
		LastAccessed: v.Attributes.LastAccessedAt,
	}
}

func requireLogin(cmd *cobra.Command, args []string) error {
	if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
		return err
	}
	return app.Get().RequireLogin(cmd.Context())
}

func runList(cmd *cobra.Command, args []string) error {
	a := app.Get()
	c := a.Collection()

	if err := c.Refresh(cmd.Context()); err != nil {
		return a.Fail(err, c.Errors())
	}

	if c.Empty() && !a.Printer.Structured() {
		a.Printer.PrintInfo(vault.EmptyPlaceholder)
		return nil
	}

	vaults := c.Vaults()
	rows := make([]Row, 0, len(vaults))
	for _, v := range vaults {
		rows = append(rows, RowOf(v))
	}
	return a.Printer.Print(rows)
}

func runCreate(cmd *cobra.Command, args []string) error {
	a := app.Get()
	c := a.Collection()

	form := forms.NewVaultCreate()
	form.Open()

	d := form.Values()
	if err := readFields(cmd, a, &d.VaultFields, !cmd.Flags().Changed("name")); err != nil {
		return err
	}

	code, _ := cmd.Flags().GetString("unlock-code")
	if code == "" {
		var err error
		if code, err = a.Prompt.Secret("Unlock code: "); err != nil {
			return err
		}
	}
	d.UnlockCode = code
	form.Set(d)

	var created *models.Vault
	err := forms.Submit(cmd.Context(), form, c.Create, func(v *models.Vault) { created = v })
	if err != nil {
		return a.Fail(err, formMessages(form.FieldErrors().Messages(), form.Errors()))
	}

	a.Printer.PrintSuccess(forms.VaultCreatedMessage)
	return a.Printer.Print(RowOf(*created))
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a := app.Get()
	c := a.Collection()
	id, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}

	if err := c.Refresh(cmd.Context()); err != nil {
		return a.Fail(err, c.Errors())
	}
	existing, err := c.Find(id)
	if err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}

	form := forms.NewVaultUpdate()
	forms.EditVault(form, existing)

	d := form.Values()
	if err := readFields(cmd, a, &d.VaultFields, !anyFieldFlag(cmd)); err != nil {
		return err
	}
	d.UnlockCode, _ = cmd.Flags().GetString("unlock-code")
	form.Set(d)

	var updated *models.Vault
	send := func(ctx context.Context, d models.UpdateVaultData) (*models.Vault, error) {
		return c.Update(ctx, id, d)
	}
	if err := forms.Submit(cmd.Context(), form, send, func(v *models.Vault) { updated = v }); err != nil {
		return a.Fail(err, formMessages(form.FieldErrors().Messages(), form.Errors()))
	}

	a.Printer.PrintSuccess(forms.VaultUpdatedMessage)
	return a.Printer.Print(RowOf(*updated))
}

func runDelete(cmd *cobra.Command, args []string) error {
	a := app.Get()
	c := a.Collection()
	id, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := a.Prompt.Confirm(fmt.Sprintf("Delete vault %s and all of its records?", id))
		if err != nil {
			return err
		}
		if !ok {
			a.Printer.PrintInfo("Cancelled")
			return nil
		}
	}

	if err := c.Delete(cmd.Context(), id); err != nil {
		return a.Fail(err, c.Errors())
	}
	a.Printer.PrintSuccess("Vault %s deleted.", id)
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	a := app.Get()
	id, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}

	sh := shell.New(a.Access(), a.Prompt, a.Printer, a.Logger)
	if err := sh.Open(cmd.Context(), id); err != nil {
		return a.Fail(err, sh.Errors())
	}
	return sh.Run(cmd.Context())
}

// readFields applies the field flags to f. When interactive, fields without
// a flag are prompted for with their current value as the default.
func readFields(cmd *cobra.Command, a *app.App, f *models.VaultFields, interactive bool) error {
	flags := cmd.Flags()
	var err error

	switch {
	case flags.Changed("name"):
		f.Name, _ = flags.GetString("name")
	case interactive:
		if f.Name, err = a.Prompt.Default("Name ", f.Name); err != nil {
			return err
		}
	}

	switch {
	case flags.Changed("description"):
		f.Description, _ = flags.GetString("description")
	case interactive:
		if f.Description, err = a.Prompt.Default("Description ", f.Description); err != nil {
			return err
		}
	}

	switch {
	case flags.Changed("type"):
		f.VaultType, _ = flags.GetString("type")
	case interactive:
		if f.VaultType, err = a.Prompt.Choice("Type ", withDefault(models.VaultTypes, f.VaultType)); err != nil {
			return err
		}
	}

	switch {
	case flags.Changed("status"):
		f.Status, _ = flags.GetString("status")
	case interactive:
		if f.Status, err = a.Prompt.Choice("Status ", withDefault(models.VaultStatuses, f.Status)); err != nil {
			return err
		}
	}

	if flags.Changed("shared-with") {
		emails, _ := flags.GetStringSlice("shared-with")
		if err := validateEmails(emails); err != nil {
			return a.Fail(err, nil)
		}
		f.SharedWith = emails
	}
	if flags.Changed("shared") {
		f.IsShared, _ = flags.GetBool("shared")
	}
	return nil
}

// validateEmails reports every malformed --shared-with entry at once
func validateEmails(emails []string) error {
	errs := utils.NewMultiError()
	for _, e := range emails {
		if utils.ValidateEmail(e) != nil {
			errs.Add(utils.NewValidationError("shared_with", fmt.Sprintf("%q is not a valid email address.", e)))
		}
	}
	return errs.ErrorOrNil()
}

func anyFieldFlag(cmd *cobra.Command) bool {
	for _, name := range []string{"name", "description", "type", "status", "shared-with", "shared", "unlock-code"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// withDefault moves current to the front of options
func withDefault(options []string, current string) []string {
	if current == "" {
		return options
	}
	out := []string{current}
	for _, o := range options {
		if o != current {
			out = append(out, o)
		}
	}
	return out
}

func formMessages(fieldErrs, errs []string) []string {
	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return errs
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringP("name", "n", "", "Vault name")
		c.Flags().StringP("description", "d", "", "Vault description")
		c.Flags().StringP("type", "t", "", "Vault type (personal, business, shared, temporary)")
		c.Flags().StringP("status", "s", "", "Vault status (active, archived, deleted, locked)")
		c.Flags().StringSlice("shared-with", nil, "Emails the vault is shared with")
		c.Flags().Bool("shared", false, "Mark the vault as shared")
		c.Flags().String("unlock-code", "", "Unlock code (prompted when omitted on create)")
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	VaultsCmd.AddCommand(listCmd)
	VaultsCmd.AddCommand(createCmd)
	VaultsCmd.AddCommand(updateCmd)
	VaultsCmd.AddCommand(deleteCmd)
	VaultsCmd.AddCommand(openCmd)
}
