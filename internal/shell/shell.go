// Package shell is the interactive view of one unlocked vault. Leaving the
// shell closes the vault and forgets every revealed password.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/format"
	"github.com/passvault/cli/internal/forms"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/prompt"
	"github.com/passvault/cli/internal/utils"
	"github.com/passvault/cli/internal/vault"
)

const helpText = `Available commands:
  list              show the records of this vault
  reveal <id>       decrypt the password of a record
  mask <id>         hide a revealed password again
  add               create a record
  delete <id>       delete a record
  help              show this help
  close, exit       close the vault`

// RecordRow is one line of the record list
type RecordRow struct {
	ID       models.ID `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Username string    `json:"username" yaml:"username"`
	Password string    `json:"password" yaml:"password"`
	URL      string    `json:"url" yaml:"url"`
	State    string    `json:"state" yaml:"state"`
}

// Shell drives a vault.Access from user commands
type Shell struct {
	access  *vault.Access
	prompt  *prompt.Prompter
	printer *format.Printer
	logger  *zap.Logger
}

// New creates a shell
func New(access *vault.Access, p *prompt.Prompter, printer *format.Printer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{access: access, prompt: p, printer: printer, logger: logger}
}

// Open asks for the unlock code and unlocks the vault. On failure Errors
// holds the messages to show.
func (s *Shell) Open(ctx context.Context, vaultID models.ID) error {
	code, err := s.prompt.Secret("Unlock code: ")
	if err != nil {
		return err
	}

	if err := s.access.Unlock(ctx, vaultID, code); err != nil {
		return err
	}

	snap := s.access.Snapshot()
	s.printer.PrintSuccess("Vault %q unlocked.", snap.Vault.Attributes.Name)
	return nil
}

// Errors returns the messages of the last failed unlock
func (s *Shell) Errors() []string {
	return s.access.Snapshot().Errors
}

// Run reads commands until close, exit or end of input. The vault is closed
// when Run returns.
func (s *Shell) Run(ctx context.Context) error {
	defer s.access.Close()

	if err := s.list(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.prompt.Line(s.promptLabel())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			s.printer.Line(helpText)
		case "list", "ls":
			if err := s.list(); err != nil {
				return err
			}
		case "reveal":
			if id, ok := s.argID(args, "reveal"); ok {
				s.reveal(ctx, id)
			}
		case "mask":
			if id, ok := s.argID(args, "mask"); ok {
				s.access.Mask(id)
				s.printer.PrintInfo("Record %s masked.", id)
			}
		case "add":
			s.add(ctx)
		case "delete", "rm":
			if id, ok := s.argID(args, "delete"); ok {
				s.delete(ctx, id)
			}
		case "close", "exit", "quit":
			s.printer.PrintInfo("Vault closed.")
			return nil
		default:
			s.printer.PrintWarning("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (s *Shell) promptLabel() string {
	snap := s.access.Snapshot()
	if snap.Vault == nil {
		return "vault> "
	}
	return snap.Vault.Attributes.Name + "> "
}

func (s *Shell) argID(args []string, command string) (models.ID, bool) {
	if len(args) < 2 {
		s.printer.PrintWarning("Usage: %s <record-id>", command)
		return "", false
	}
	return models.ID(args[1]), true
}

// Rows builds the record list as currently displayed
func Rows(access *vault.Access) []RecordRow {
	snap := access.Snapshot()
	rows := make([]RecordRow, 0, len(snap.Records))
	for _, r := range snap.Records {
		rows = append(rows, RecordRow{
			ID:       r.ID,
			Name:     r.Attributes.Name,
			Username: r.Attributes.Username,
			Password: access.Display(r.ID),
			URL:      r.Attributes.URL,
			State:    access.State(r.ID).String(),
		})
	}
	return rows
}

func (s *Shell) list() error {
	rows := Rows(s.access)
	if len(rows) == 0 && !s.printer.Structured() {
		s.printer.PrintInfo(vault.NoRecordsMessage)
		return nil
	}
	return s.printer.Print(rows)
}

// reveal asks for the record key until the password is decrypted or the
// user gives up
func (s *Shell) reveal(ctx context.Context, id models.ID) {
	if err := s.access.RequestReveal(id); err != nil {
		s.printer.PrintErrors(utils.Normalize(err))
		return
	}

	for {
		key, err := s.prompt.Secret("Encryption key: ")
		if err != nil {
			s.access.DismissPrompt()
			return
		}

		plaintext, err := s.access.Decrypt(ctx, id, key)
		if err == nil {
			s.printer.PrintSuccess("Password: %s", plaintext)
			return
		}

		snap := s.access.Snapshot()
		if snap.Prompt == nil {
			s.printer.PrintErrors(utils.Normalize(err))
			return
		}
		s.printer.PrintErrors(snap.Prompt.Errors)

		retry, err := s.prompt.Confirm("Try again?")
		if err != nil || !retry {
			s.access.DismissPrompt()
			return
		}
	}
}

func (s *Shell) add(ctx context.Context) {
	form := forms.NewRecordCreate()
	form.Open()

	if err := FillRecord(s.prompt, form); err != nil {
		form.Dismiss()
		s.printer.PrintWarning("Record creation cancelled.")
		return
	}

	err := forms.Submit(ctx, form, s.access.CreateRecord, func(r *models.PasswordRecord) {
		s.logger.Debug("record created", zap.String("record_id", r.ID.String()))
	})
	if err != nil {
		if fe := form.FieldErrors(); len(fe) > 0 {
			s.printer.PrintErrors(fe.Messages())
		} else {
			s.printer.PrintErrors(form.Errors())
		}
		return
	}
	s.printer.PrintSuccess(forms.RecordCreatedMessage)
}

// FillRecord asks for every field of a new record
func FillRecord(p *prompt.Prompter, form *forms.Form[models.CreatePasswordRecordData]) error {
	d := form.Values()
	var err error

	if d.PasswordRecord.Name, err = p.Line("Name: "); err != nil {
		return err
	}
	if d.PasswordRecord.Username, err = p.Line("Username: "); err != nil {
		return err
	}
	if d.PasswordRecord.Password, err = p.Secret("Password: "); err != nil {
		return err
	}
	if d.PasswordRecord.URL, err = p.Line("URL (optional): "); err != nil {
		return err
	}
	if d.PasswordRecord.Notes, err = p.Line("Notes (optional): "); err != nil {
		return err
	}
	if d.EncryptionKey, err = p.Secret("Encryption key: "); err != nil {
		return err
	}

	form.Set(d)
	return nil
}

func (s *Shell) delete(ctx context.Context, id models.ID) {
	ok, err := s.prompt.Confirm(fmt.Sprintf("Delete record %s?", id))
	if err != nil || !ok {
		return
	}

	if err := s.access.DeleteRecord(ctx, id); err != nil {
		s.printer.PrintErrors(utils.Normalize(err))
		return
	}
	s.printer.PrintSuccess("Record %s deleted.", id)
}
