package vault

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

// Snapshot is a copy of the unlock session. Records is nil unless IsOpen.
type Snapshot struct {
	VaultID models.ID
	IsOpen  bool
	Loading bool
	Vault   *models.Vault
	Records []models.PasswordRecord
	Errors  []string
	Prompt  *Prompt
}

// Prompt is an open decryption-key prompt scoped to one record
type Prompt struct {
	RecordID models.ID
	Errors   []string
}

// unlocked is the transient state of one open vault. A new value is made
// for every successful unlock; nothing is carried over from a previous one.
type unlocked struct {
	vault    models.Vault
	records  []models.PasswordRecord
	revealed map[models.ID]string
	prompt   *Prompt
}

// Access is the unlock workflow for a single vault at a time. It owns the
// unlocked records and the revealed-record set.
type Access struct {
	api    AccessAPI
	tokens TokenSource
	logger *zap.Logger

	mu      sync.Mutex
	seq     uint64
	vaultID models.ID
	loading bool
	open    *unlocked
	errors  []string
}

// NewAccess creates a closed workflow
func NewAccess(api AccessAPI, tokens TokenSource, logger *zap.Logger) *Access {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Access{api: api, tokens: tokens, logger: logger}
}

// Unlock opens a vault with its unlock code. An empty code fails locally.
// Unlocking while another vault is open closes it first.
func (a *Access) Unlock(ctx context.Context, vaultID models.ID, unlockCode string) error {
	if err := utils.ValidateRequired(unlockCode, "unlock_code", UnlockCodeRequired); err != nil {
		a.mu.Lock()
		a.errors = utils.Normalize(err)
		a.mu.Unlock()
		return err
	}

	token := a.tokens.Token()
	if token == "" {
		a.mu.Lock()
		a.errors = utils.Normalize(utils.ErrTokenMissing)
		a.mu.Unlock()
		return utils.ErrTokenMissing
	}

	a.mu.Lock()
	a.discard()
	a.seq++
	seq := a.seq
	a.vaultID = vaultID
	a.loading = true
	a.errors = nil
	a.mu.Unlock()

	resp, err := a.api.UnlockVault(ctx, token, vaultID, unlockCode)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq {
		a.logger.Debug("dropping unlock response for a closed vault", zap.String("vault_id", vaultID.String()))
		return ErrVaultClosed
	}
	a.loading = false
	if err != nil {
		a.errors = utils.Normalize(err)
		a.logger.Info("vault unlock failed", zap.String("vault_id", vaultID.String()), zap.Error(err))
		return err
	}

	a.open = &unlocked{
		vault:    resp.Data,
		records:  append([]models.PasswordRecord{}, resp.Included...),
		revealed: make(map[models.ID]string),
	}
	a.logger.Debug("vault unlocked",
		zap.String("vault_id", vaultID.String()),
		zap.Int("records", len(resp.Included)),
	)
	return nil
}

// Close discards the vault, its records and every revealed plaintext. It
// also invalidates an unlock still in flight. Closing a closed vault is a
// no-op.
func (a *Access) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.discard()
	a.vaultID = ""
	a.loading = false
	a.errors = nil
}

// discard drops the unlock session. Called with mu held.
func (a *Access) discard() {
	if a.open == nil {
		return
	}
	for id := range a.open.revealed {
		delete(a.open.revealed, id)
	}
	a.open.records = nil
	a.open.prompt = nil
	a.open = nil
}

// IsOpen reports whether a vault is unlocked
func (a *Access) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open != nil
}

// Snapshot returns a copy of the current state
func (a *Access) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		VaultID: a.vaultID,
		Loading: a.loading,
		Errors:  append([]string(nil), a.errors...),
	}
	if a.open == nil {
		return snap
	}

	v := a.open.vault
	snap.IsOpen = true
	snap.Vault = &v
	snap.Records = append([]models.PasswordRecord{}, a.open.records...)
	if p := a.open.prompt; p != nil {
		snap.Prompt = &Prompt{RecordID: p.RecordID, Errors: append([]string(nil), p.Errors...)}
	}
	return snap
}

// CreateRecord stores a new record in the open vault and appends it
func (a *Access) CreateRecord(ctx context.Context, data models.CreatePasswordRecordData) (*models.PasswordRecord, error) {
	a.mu.Lock()
	sess := a.open
	vaultID := a.vaultID
	a.mu.Unlock()
	if sess == nil {
		return nil, ErrVaultClosed
	}

	token := a.tokens.Token()
	if token == "" {
		return nil, utils.ErrTokenMissing
	}

	rec, err := a.api.CreateRecord(ctx, token, vaultID, data)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != sess {
		return nil, ErrVaultClosed
	}
	sess.records = append(sess.records, *rec)
	return rec, nil
}

// DeleteRecord deletes a record of the open vault. It stays listed when the
// server refuses.
func (a *Access) DeleteRecord(ctx context.Context, id models.ID) error {
	a.mu.Lock()
	sess := a.open
	if sess == nil {
		a.mu.Unlock()
		return ErrVaultClosed
	}
	if sess.index(id) < 0 {
		a.mu.Unlock()
		return utils.NewValidationError("record", RecordNotFound)
	}
	a.mu.Unlock()

	token := a.tokens.Token()
	if token == "" {
		return utils.ErrTokenMissing
	}

	err := a.api.DeleteRecord(ctx, token, id)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != sess {
		return ErrVaultClosed
	}
	if err != nil {
		a.errors = utils.Normalize(err)
		return err
	}
	if i := sess.index(id); i >= 0 {
		sess.records = append(sess.records[:i], sess.records[i+1:]...)
	}
	delete(sess.revealed, id)
	if sess.prompt != nil && sess.prompt.RecordID == id {
		sess.prompt = nil
	}
	a.errors = nil
	return nil
}

func (u *unlocked) index(id models.ID) int {
	for i, r := range u.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
