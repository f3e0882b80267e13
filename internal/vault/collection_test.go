package vault

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

func TestCollection_RefreshEmpty(t *testing.T) {
	api := &fakeAPI{
		ListVaultsFunc: func(ctx context.Context, token string) ([]models.Vault, error) {
			assert.Equal(t, "tok", token)
			return []models.Vault{}, nil
		},
	}
	c := NewCollection(api, staticToken("tok"), nil)

	assert.False(t, c.Empty(), "an unloaded list is not empty")
	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Empty())
	assert.Empty(t, c.Vaults())
}

func TestCollection_RequiresToken(t *testing.T) {
	api := &fakeAPI{}
	c := NewCollection(api, staticToken(""), nil)

	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, utils.ErrTokenMissing)
	assert.Equal(t, []string{utils.TokenMissingMessage}, c.Errors())
	assert.Zero(t, api.total())
}

func TestCollection_CreateUpdate(t *testing.T) {
	api := &fakeAPI{
		ListVaultsFunc: func(ctx context.Context, token string) ([]models.Vault, error) {
			return []models.Vault{testVault("1", "Home"), testVault("2", "Work")}, nil
		},
		CreateVaultFunc: func(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error) {
			assert.Equal(t, "secret", data.UnlockCode)
			v := testVault("3", data.Name)
			return &v, nil
		},
		UpdateVaultFunc: func(ctx context.Context, token string, id models.ID, data models.UpdateVaultData) (*models.Vault, error) {
			v := testVault(id.String(), data.Name)
			return &v, nil
		},
	}
	c := NewCollection(api, staticToken("tok"), nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	fields := models.NewVaultFields()
	fields.Name = "Travel"
	_, err := c.Create(ctx, models.CreateVaultData{VaultFields: fields, UnlockCode: "secret"})
	require.NoError(t, err)

	fields.Name = "Office"
	_, err = c.Update(ctx, "2", models.UpdateVaultData{VaultFields: fields})
	require.NoError(t, err)

	vaults := c.Vaults()
	require.Len(t, vaults, 3)
	assert.Equal(t, "Home", vaults[0].Attributes.Name)
	assert.Equal(t, "Office", vaults[1].Attributes.Name)
	assert.Equal(t, "Travel", vaults[2].Attributes.Name)

	found, err := c.Find("3")
	require.NoError(t, err)
	assert.Equal(t, "Travel", found.Attributes.Name)

	_, err = c.Find("9")
	assert.ErrorIs(t, err, ErrVaultNotFound)
}

func TestCollection_DeleteFailureKeepsVault(t *testing.T) {
	api := &fakeAPI{
		ListVaultsFunc: func(ctx context.Context, token string) ([]models.Vault, error) {
			return []models.Vault{testVault("1", "Home")}, nil
		},
		DeleteVaultFunc: func(ctx context.Context, token string, id models.ID) error {
			return &url.Error{Op: "Delete", URL: "http://api/vaults/1/", Err: errors.New("connection reset")}
		},
	}
	c := NewCollection(api, staticToken("tok"), nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	err := c.Delete(ctx, "1")
	require.Error(t, err)
	assert.Len(t, c.Vaults(), 1)
	assert.Equal(t, []string{utils.ConnectivityMessage}, c.Errors())
}

func TestCollection_DeleteServerRejection(t *testing.T) {
	api := &fakeAPI{
		ListVaultsFunc: func(ctx context.Context, token string) ([]models.Vault, error) {
			return []models.Vault{testVault("1", "Home"), testVault("2", "Work")}, nil
		},
		DeleteVaultFunc: func(ctx context.Context, token string, id models.ID) error {
			if id == "1" {
				return utils.NewAPIError(422, []byte(`{"error":"Vault cannot be deleted"}`))
			}
			return nil
		},
	}
	c := NewCollection(api, staticToken("tok"), nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	require.Error(t, c.Delete(ctx, "1"))
	assert.Equal(t, []string{"Vault cannot be deleted"}, c.Errors())

	require.NoError(t, c.Delete(ctx, "2"))
	assert.Empty(t, c.Errors())
	vaults := c.Vaults()
	require.Len(t, vaults, 1)
	assert.Equal(t, models.ID("1"), vaults[0].ID)
}

func TestCollection_LoadingUntilEveryRequestFinishes(t *testing.T) {
	started := make(chan struct{}, 2)
	releaseList := make(chan struct{})
	releaseCreate := make(chan struct{})

	api := &fakeAPI{
		ListVaultsFunc: func(ctx context.Context, token string) ([]models.Vault, error) {
			started <- struct{}{}
			<-releaseList
			return []models.Vault{testVault("1", "Home")}, nil
		},
		CreateVaultFunc: func(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error) {
			started <- struct{}{}
			<-releaseCreate
			v := testVault("2", data.Name)
			return &v, nil
		},
	}
	c := NewCollection(api, staticToken("tok"), nil)
	ctx := context.Background()

	refreshed := make(chan error, 1)
	created := make(chan error, 1)
	go func() { refreshed <- c.Refresh(ctx) }()
	go func() {
		_, err := c.Create(ctx, models.CreateVaultData{VaultFields: models.VaultFields{Name: "Work"}, UnlockCode: "c"})
		created <- err
	}()
	<-started
	<-started
	assert.True(t, c.Loading())

	close(releaseCreate)
	require.NoError(t, <-created)
	assert.True(t, c.Loading(), "refresh is still in flight")

	close(releaseList)
	require.NoError(t, <-refreshed)
	assert.False(t, c.Loading())
}
