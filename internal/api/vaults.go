package api

import (
	"context"
	"net/http"

	"github.com/passvault/cli/internal/models"
)

// ListVaults returns the vaults of the token's user
func (c *Client) ListVaults(ctx context.Context, token string) ([]models.Vault, error) {
	var resp models.DataResponse[[]models.Vault]
	if err := c.do(ctx, http.MethodGet, "/vaults", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []models.Vault{}, nil
	}
	return resp.Data, nil
}

// CreateVault creates a vault
func (c *Client) CreateVault(ctx context.Context, token string, data models.CreateVaultData) (*models.Vault, error) {
	var resp models.DataResponse[models.Vault]
	if err := c.do(ctx, http.MethodPost, "/vaults", token, data, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateVault updates a vault's metadata
func (c *Client) UpdateVault(ctx context.Context, token string, id models.ID, data models.UpdateVaultData) (*models.Vault, error) {
	var resp models.DataResponse[models.Vault]
	if err := c.do(ctx, http.MethodPatch, "/vaults/"+escape(id), token, data, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteVault deletes a vault
func (c *Client) DeleteVault(ctx context.Context, token string, id models.ID) error {
	return c.do(ctx, http.MethodDelete, "/vaults/"+escape(id)+"/", token, nil, nil)
}

// UnlockVault opens a vault with its unlock code and returns its records
func (c *Client) UnlockVault(ctx context.Context, token string, id models.ID, unlockCode string) (*models.UnlockResponse, error) {
	var resp models.UnlockResponse
	body := models.UnlockRequest{UnlockCode: unlockCode}
	if err := c.do(ctx, http.MethodPost, "/vaults/"+escape(id)+"/login", token, body, &resp); err != nil {
		return nil, err
	}
	if resp.Included == nil {
		resp.Included = []models.PasswordRecord{}
	}
	return &resp, nil
}
