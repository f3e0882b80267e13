package api

import (
	"context"
	"net/http"

	"github.com/passvault/cli/internal/models"
)

// CreateRecord stores a record in a vault. The server encrypts the password
// with the given key.
func (c *Client) CreateRecord(ctx context.Context, token string, vaultID models.ID, data models.CreatePasswordRecordData) (*models.PasswordRecord, error) {
	var resp models.DataResponse[models.PasswordRecord]
	path := "/vaults/" + escape(vaultID) + "/password_records"
	if err := c.do(ctx, http.MethodPost, path, token, data, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DecryptRecord asks the server for a record's plaintext password
func (c *Client) DecryptRecord(ctx context.Context, token string, id models.ID, encryptionKey string) (string, error) {
	var resp models.DecryptResponse
	path := "/password_records/" + escape(id) + "/decrypt_password"
	body := models.DecryptRequest{EncryptionKey: encryptionKey}
	if err := c.do(ctx, http.MethodPost, path, token, body, &resp); err != nil {
		return "", err
	}
	return resp.Password, nil
}

// DeleteRecord deletes a record
func (c *Client) DeleteRecord(ctx context.Context, token string, id models.ID) error {
	return c.do(ctx, http.MethodDelete, "/password_records/"+escape(id), token, nil, nil)
}
