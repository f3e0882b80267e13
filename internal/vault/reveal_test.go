package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

func openAccess(t *testing.T, api *fakeAPI) *Access {
	t.Helper()
	a := NewAccess(api, staticToken("tok"), nil)
	require.NoError(t, a.Unlock(context.Background(), "3", "correct"))
	return a
}

func pearlAPI() *fakeAPI {
	api := unlockingAPI()
	api.UnlockVaultFunc = func(ctx context.Context, token string, id models.ID, code string) (*models.UnlockResponse, error) {
		return &models.UnlockResponse{
			Data:     testVault("3", "Daniel's Vault"),
			Included: []models.PasswordRecord{testRecord("1", "Pearl", "XhBBdFifBGAOciip")},
		}, nil
	}
	return api
}

func TestDecrypt_RevealThenMaskWithoutNetwork(t *testing.T) {
	api := pearlAPI()
	a := openAccess(t, api)
	ctx := context.Background()

	require.NoError(t, a.RequestReveal("1"))
	assert.Equal(t, models.ID("1"), a.Snapshot().Prompt.RecordID)
	assert.Zero(t, api.count("decrypt"), "opening the prompt must not call the server")

	plain, err := a.Decrypt(ctx, "1", "key")
	require.NoError(t, err)
	assert.Equal(t, "DecryptedPassword123", plain)
	assert.Equal(t, "DecryptedPassword123", a.Display("1"))
	assert.Equal(t, Revealed, a.State("1"))
	assert.Nil(t, a.Snapshot().Prompt)

	// the stored ciphertext is untouched
	assert.Equal(t, "XhBBdFifBGAOciip", a.Snapshot().Records[0].Attributes.Password)

	before := api.total()
	a.Mask("1")
	assert.Equal(t, MaskToken, a.Display("1"))
	assert.Equal(t, Masked, a.State("1"))
	assert.Equal(t, before, api.total())
}

func TestMask_Idempotent(t *testing.T) {
	a := openAccess(t, pearlAPI())
	_, err := a.Decrypt(context.Background(), "1", "key")
	require.NoError(t, err)

	a.Mask("1")
	first := a.Snapshot()
	a.Mask("1")
	assert.Equal(t, first, a.Snapshot())
	assert.Equal(t, Masked, a.State("1"))
}

func TestDecrypt_EmptyKeyFailsLocally(t *testing.T) {
	api := pearlAPI()
	a := openAccess(t, api)

	_, err := a.Decrypt(context.Background(), "1", "")
	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, KeyRequired, valErr.Message)
	assert.Zero(t, api.count("decrypt"))

	snap := a.Snapshot()
	require.NotNil(t, snap.Prompt)
	assert.Equal(t, []string{KeyRequired}, snap.Prompt.Errors)
}

func TestDecrypt_FailureKeepsPromptOpen(t *testing.T) {
	a := openAccess(t, pearlAPI())
	ctx := context.Background()
	require.NoError(t, a.RequestReveal("1"))

	_, err := a.Decrypt(ctx, "1", "wrong")
	require.Error(t, err)
	assert.Equal(t, Masked, a.State("1"))
	snap := a.Snapshot()
	require.NotNil(t, snap.Prompt)
	assert.Equal(t, []string{"Invalid encryption key"}, snap.Prompt.Errors)

	// retry succeeds and closes the prompt
	_, err = a.Decrypt(ctx, "1", "key")
	require.NoError(t, err)
	assert.Nil(t, a.Snapshot().Prompt)
}

func TestReveal_RequiresDecryptEveryTime(t *testing.T) {
	api := pearlAPI()
	a := openAccess(t, api)
	ctx := context.Background()

	_, err := a.Decrypt(ctx, "1", "key")
	require.NoError(t, err)
	a.Mask("1")

	require.NoError(t, a.RequestReveal("1"))
	assert.Equal(t, Masked, a.State("1"), "re-opening the prompt does not reveal")

	_, err = a.Decrypt(ctx, "1", "key")
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("decrypt"))
}

func TestDecrypt_UnknownRecordOrClosedVault(t *testing.T) {
	api := pearlAPI()
	a := openAccess(t, api)
	ctx := context.Background()

	var valErr *utils.ValidationError
	_, err := a.Decrypt(ctx, "404", "key")
	assert.ErrorAs(t, err, &valErr)
	assert.ErrorAs(t, a.RequestReveal("404"), &valErr)

	a.Close()
	_, err = a.Decrypt(ctx, "1", "key")
	assert.ErrorIs(t, err, ErrVaultClosed)
	assert.ErrorIs(t, a.RequestReveal("1"), ErrVaultClosed)
	assert.Zero(t, api.count("decrypt"))
}

func TestDecrypt_CloseDuringFlightDropsPlaintext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := pearlAPI()
	api.DecryptRecordFunc = func(ctx context.Context, token string, id models.ID, key string) (string, error) {
		close(started)
		<-release
		return "late-plaintext", nil
	}
	a := openAccess(t, api)

	done := make(chan error)
	go func() {
		_, err := a.Decrypt(context.Background(), "1", "key")
		done <- err
	}()
	<-started
	a.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrVaultClosed)
	assert.Equal(t, MaskToken, a.Display("1"))
}

func TestDismissPrompt(t *testing.T) {
	api := pearlAPI()
	a := openAccess(t, api)

	require.NoError(t, a.RequestReveal("1"))
	a.DismissPrompt()
	assert.Nil(t, a.Snapshot().Prompt)
	assert.Equal(t, Masked, a.State("1"))
	assert.Zero(t, api.count("decrypt"))
}
