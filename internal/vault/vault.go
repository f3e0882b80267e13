// Package vault implements the vault list, the unlock workflow and the
// per-record decrypt workflow. Unlocked records and revealed plaintexts live
// only in memory and are discarded when the vault closes.
package vault

import (
	"context"
	"errors"

	"github.com/passvault/cli/internal/models"
)

// Display strings
const (
	EmptyPlaceholder   = "No vaults yet"
	NoRecordsMessage   = "No password records found in this vault."
	MaskToken          = "••••••••"
	UnlockCodeRequired = "Unlock code is required to access the vault."
	KeyRequired        = "Decryption key is required."
	RecordNotFound     = "Record not found in this vault."
)

var (
	// ErrVaultClosed is returned when an operation needs an open vault, or
	// when the vault was closed while the operation was in flight
	ErrVaultClosed = errors.New("vault is not open")

	// ErrVaultNotFound is returned by Find for an unknown id
	ErrVaultNotFound = errors.New("vault not found")
)

// TokenSource supplies the bearer token of the current session
type TokenSource interface {
	Token() string
}

// CollectionAPI is the server side of the vault list
type CollectionAPI interface {
	ListVaults(ctx context.Context, token string) ([]models.Vault, error)
	CreateVault(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error)
	UpdateVault(ctx context.Context, token string, id models.ID, data models.UpdateVaultData) (*models.Vault, error)
	DeleteVault(ctx context.Context, token string, id models.ID) error
}

// AccessAPI is the server side of the unlock and decrypt workflows
type AccessAPI interface {
	UnlockVault(ctx context.Context, token string, id models.ID, unlockCode string) (*models.UnlockResponse, error)
	DecryptRecord(ctx context.Context, token string, id models.ID, encryptionKey string) (string, error)
	CreateRecord(ctx context.Context, token string, vaultID models.ID, data models.CreatePasswordRecordData) (*models.PasswordRecord, error)
	DeleteRecord(ctx context.Context, token string, id models.ID) error
}
