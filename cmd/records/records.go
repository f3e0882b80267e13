package records

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passvault/cli/internal/app"
	"github.com/passvault/cli/internal/forms"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/shell"
	"github.com/passvault/cli/internal/vault"
)

// RecordsCmd represents the records command
var RecordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Password record commands",
	Long: `Password record commands for passvault.

These commands work on one record without starting the vault shell. Use
'passvault vaults open <vault-id>' to browse a vault interactively.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return app.Get().RequireLogin(cmd.Context())
	},
}

// listCmd lists the records of a vault
var listCmd = &cobra.Command{
	Use:   "list <vault-id>",
	Short: "List the records of a vault",
	Long:  "Unlock a vault and list its records with masked passwords",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

// createCmd creates a record
var createCmd = &cobra.Command{
	Use:   "create <vault-id>",
	Short: "Create a record",
	Long:  "Create a password record in a vault. Without --name every field is prompted for.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

// decryptCmd reveals one password
var decryptCmd = &cobra.Command{
	Use:   "decrypt <vault-id> <record-id>",
	Short: "Decrypt a record's password",
	Long: `Unlock a vault, decrypt one of its records with the record's encryption
key and print the password. The vault is closed again afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: runDecrypt,
}

// deleteCmd deletes a record
var deleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// unlock opens the vault named by vaultID, taking the code from the flag or
// a prompt
func unlock(cmd *cobra.Command, a *app.App, vaultID models.ID) (*vault.Access, error) {
	code, _ := cmd.Flags().GetString("unlock-code")
	if code == "" {
		var err error
		if code, err = a.Prompt.Secret("Unlock code: "); err != nil {
			return nil, err
		}
	}

	access := a.Access()
	if err := access.Unlock(cmd.Context(), vaultID, code); err != nil {
		return nil, a.Fail(err, access.Snapshot().Errors)
	}
	return access, nil
}

func runList(cmd *cobra.Command, args []string) error {
	a := app.Get()

	vaultID, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}

	access, err := unlock(cmd, a, vaultID)
	if err != nil {
		return err
	}
	defer access.Close()

	rows := shell.Rows(access)
	if len(rows) == 0 && !a.Printer.Structured() {
		a.Printer.PrintInfo(vault.NoRecordsMessage)
		return nil
	}
	return a.Printer.Print(rows)
}

func runCreate(cmd *cobra.Command, args []string) error {
	a := app.Get()
	flags := cmd.Flags()
	vaultID, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}

	form := forms.NewRecordCreate()
	form.Open()

	if !flags.Changed("name") {
		if err := shell.FillRecord(a.Prompt, form); err != nil {
			form.Dismiss()
			return err
		}
	} else {
		d := form.Values()
		d.PasswordRecord.Name, _ = flags.GetString("name")
		d.PasswordRecord.Username, _ = flags.GetString("username")
		d.PasswordRecord.URL, _ = flags.GetString("url")
		d.PasswordRecord.Notes, _ = flags.GetString("notes")
		d.PasswordRecord.Password, _ = flags.GetString("password")
		d.EncryptionKey, _ = flags.GetString("encryption-key")

		if d.PasswordRecord.Password == "" {
			if d.PasswordRecord.Password, err = a.Prompt.Secret("Password: "); err != nil {
				return err
			}
		}
		if d.EncryptionKey == "" {
			if d.EncryptionKey, err = a.Prompt.Secret("Encryption key: "); err != nil {
				return err
			}
		}
		form.Set(d)
	}

	send := func(ctx context.Context, d models.CreatePasswordRecordData) (*models.PasswordRecord, error) {
		return a.Client.CreateRecord(ctx, a.Session.Token(), vaultID, d)
	}

	var created *models.PasswordRecord
	if err := forms.Submit(cmd.Context(), form, send, func(r *models.PasswordRecord) { created = r }); err != nil {
		msgs := form.FieldErrors().Messages()
		if len(msgs) == 0 {
			msgs = form.Errors()
		}
		return a.Fail(err, msgs)
	}

	a.Printer.PrintSuccess(forms.RecordCreatedMessage)
	return a.Printer.Print(shell.RecordRow{
		ID:       created.ID,
		Name:     created.Attributes.Name,
		Username: created.Attributes.Username,
		Password: vault.MaskToken,
		URL:      created.Attributes.URL,
		State:    vault.Masked.String(),
	})
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	a := app.Get()
	vaultID, err := a.ParseID(args[0], "Vault ID")
	if err != nil {
		return err
	}
	recordID, err := a.ParseID(args[1], "Record ID")
	if err != nil {
		return err
	}

	access, err := unlock(cmd, a, vaultID)
	if err != nil {
		return err
	}
	defer access.Close()

	if err := access.RequestReveal(recordID); err != nil {
		return a.Fail(err, nil)
	}

	key, _ := cmd.Flags().GetString("encryption-key")
	if key == "" {
		if key, err = a.Prompt.Secret("Encryption key: "); err != nil {
			return err
		}
	}

	plaintext, err := access.Decrypt(cmd.Context(), recordID, key)
	if err != nil {
		var msgs []string
		if p := access.Snapshot().Prompt; p != nil {
			msgs = p.Errors
		}
		return a.Fail(err, msgs)
	}

	if a.Printer.Structured() {
		return a.Printer.Print(map[string]string{"id": recordID.String(), "password": plaintext})
	}
	a.Printer.Line("%s", plaintext)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a := app.Get()
	id, err := a.ParseID(args[0], "Record ID")
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := a.Prompt.Confirm(fmt.Sprintf("Delete record %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			a.Printer.PrintInfo("Cancelled")
			return nil
		}
	}

	if err := a.Client.DeleteRecord(cmd.Context(), a.Session.Token(), id); err != nil {
		return a.Fail(err, nil)
	}
	a.Printer.PrintSuccess("Record %s deleted.", id)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{listCmd, decryptCmd} {
		c.Flags().String("unlock-code", "", "Vault unlock code (prompted when omitted)")
	}
	decryptCmd.Flags().String("encryption-key", "", "Record encryption key (prompted when omitted)")

	createCmd.Flags().StringP("name", "n", "", "Record name")
	createCmd.Flags().StringP("username", "u", "", "Username")
	createCmd.Flags().String("url", "", "Website URL")
	createCmd.Flags().String("notes", "", "Notes")
	createCmd.Flags().String("password", "", "Password (prompted when omitted)")
	createCmd.Flags().String("encryption-key", "", "Encryption key (prompted when omitted)")

	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	RecordsCmd.AddCommand(listCmd)
	RecordsCmd.AddCommand(createCmd)
	RecordsCmd.AddCommand(decryptCmd)
	RecordsCmd.AddCommand(deleteCmd)
}
