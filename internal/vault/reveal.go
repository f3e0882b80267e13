package vault

import (
	"context"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

// RecordState is the display state of one record's password
type RecordState int

const (
	// Masked is the initial state; the password shows as MaskToken
	Masked RecordState = iota
	// Revealed is reached only through a successful Decrypt
	Revealed
)

func (s RecordState) String() string {
	if s == Revealed {
		return "revealed"
	}
	return "masked"
}

// RequestReveal opens the key prompt for one record. It does not contact
// the server.
func (a *Access) RequestReveal(id models.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.open == nil {
		return ErrVaultClosed
	}
	if a.open.index(id) < 0 {
		return utils.NewValidationError("record", RecordNotFound)
	}
	a.open.prompt = &Prompt{RecordID: id}
	return nil
}

// DismissPrompt closes the key prompt without side effects
func (a *Access) DismissPrompt() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != nil {
		a.open.prompt = nil
	}
}

// Decrypt asks the server for a record's plaintext. The key is required and
// never cached, so every Masked -> Revealed transition costs a round trip.
// On failure the record stays masked and the prompt stays open with the
// errors.
func (a *Access) Decrypt(ctx context.Context, id models.ID, encryptionKey string) (string, error) {
	a.mu.Lock()
	sess := a.open
	if sess == nil {
		a.mu.Unlock()
		return "", ErrVaultClosed
	}
	if sess.index(id) < 0 {
		a.mu.Unlock()
		return "", utils.NewValidationError("record", RecordNotFound)
	}
	if err := utils.ValidateRequired(encryptionKey, "encryption_key", KeyRequired); err != nil {
		sess.prompt = &Prompt{RecordID: id, Errors: utils.Normalize(err)}
		a.mu.Unlock()
		return "", err
	}
	a.mu.Unlock()

	token := a.tokens.Token()
	if token == "" {
		a.mu.Lock()
		if a.open == sess {
			sess.prompt = &Prompt{RecordID: id, Errors: utils.Normalize(utils.ErrTokenMissing)}
		}
		a.mu.Unlock()
		return "", utils.ErrTokenMissing
	}

	plain, err := a.api.DecryptRecord(ctx, token, id, encryptionKey)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != sess {
		return "", ErrVaultClosed
	}
	if err != nil {
		sess.prompt = &Prompt{RecordID: id, Errors: utils.Normalize(err)}
		a.logger.Info("record decrypt failed", zap.String("record_id", id.String()), zap.Error(err))
		return "", err
	}

	sess.revealed[id] = plain
	if sess.prompt != nil && sess.prompt.RecordID == id {
		sess.prompt = nil
	}
	return plain, nil
}

// Mask hides a revealed record again and drops its plaintext. It never
// contacts the server and is idempotent.
func (a *Access) Mask(id models.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != nil {
		delete(a.open.revealed, id)
	}
}

// State returns the display state of a record
func (a *Access) State(id models.ID) RecordState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == nil {
		return Masked
	}
	if _, ok := a.open.revealed[id]; ok {
		return Revealed
	}
	return Masked
}

// Display returns the password text to show for a record
func (a *Access) Display(id models.ID) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == nil {
		return MaskToken
	}
	if plain, ok := a.open.revealed[id]; ok {
		return plain
	}
	return MaskToken
}
