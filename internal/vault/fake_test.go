package vault

import (
	"context"
	"sync"

	"github.com/passvault/cli/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// fakeAPI is an in-memory server. Each *Func may be nil for calls a test
// does not expect.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	ListVaultsFunc    func(ctx context.Context, token string) ([]models.Vault, error)
	CreateVaultFunc   func(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error)
	UpdateVaultFunc   func(ctx context.Context, token string, id models.ID, data models.UpdateVaultData) (*models.Vault, error)
	DeleteVaultFunc   func(ctx context.Context, token string, id models.ID) error
	UnlockVaultFunc   func(ctx context.Context, token string, id models.ID, code string) (*models.UnlockResponse, error)
	DecryptRecordFunc func(ctx context.Context, token string, id models.ID, key string) (string, error)
	CreateRecordFunc  func(ctx context.Context, token string, vaultID models.ID, data models.CreatePasswordRecordData) (*models.PasswordRecord, error)
	DeleteRecordFunc  func(ctx context.Context, token string, id models.ID) error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) ListVaults(ctx context.Context, token string) ([]models.Vault, error) {
	f.record("list")
	return f.ListVaultsFunc(ctx, token)
}

func (f *fakeAPI) CreateVault(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error) {
	f.record("create")
	return f.CreateVaultFunc(ctx, token, data)
}

func (f *fakeAPI) UpdateVault(ctx context.Context, token string, id models.ID, data models.UpdateVaultData) (*models.Vault, error) {
	f.record("update")
	return f.UpdateVaultFunc(ctx, token, id, data)
}

func (f *fakeAPI) DeleteVault(ctx context.Context, token string, id models.ID) error {
	f.record("delete")
	return f.DeleteVaultFunc(ctx, token, id)
}

func (f *fakeAPI) UnlockVault(ctx context.Context, token string, id models.ID, code string) (*models.UnlockResponse, error) {
	f.record("unlock")
	return f.UnlockVaultFunc(ctx, token, id, code)
}

func (f *fakeAPI) DecryptRecord(ctx context.Context, token string, id models.ID, key string) (string, error) {
	f.record("decrypt")
	return f.DecryptRecordFunc(ctx, token, id, key)
}

func (f *fakeAPI) CreateRecord(ctx context.Context, token string, vaultID models.ID, data models.CreatePasswordRecordData) (*models.PasswordRecord, error) {
	f.record("create_record")
	return f.CreateRecordFunc(ctx, token, vaultID, data)
}

func (f *fakeAPI) DeleteRecord(ctx context.Context, token string, id models.ID) error {
	f.record("delete_record")
	return f.DeleteRecordFunc(ctx, token, id)
}

func testVault(id, name string) models.Vault {
	return models.Vault{
		ID:   models.ID(id),
		Type: "vault",
		Attributes: models.VaultAttributes{
			Name:      name,
			VaultType: models.VaultTypeBusiness,
			Status:    models.VaultStatusActive,
		},
	}
}

func testRecord(id, username, ciphertext string) models.PasswordRecord {
	return models.PasswordRecord{
		ID:   models.ID(id),
		Type: "password_record",
		Attributes: models.PasswordRecordAttributes{
			Name:     "mail",
			Username: username,
			Password: ciphertext,
		},
	}
}
