package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault/cli/internal/format"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/prompt"
	"github.com/passvault/cli/internal/utils"
	"github.com/passvault/cli/internal/vault"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fakeServer struct {
	mu       sync.Mutex
	decrypts int
	deleted  []models.ID
	created  []models.CreatePasswordRecordData
	failDel  bool
}

func (f *fakeServer) UnlockVault(ctx context.Context, token string, id models.ID, code string) (*models.UnlockResponse, error) {
	if code != "open-sesame" {
		return nil, utils.NewAPIError(401, []byte(`{"error":"Invalid unlock code"}`))
	}
	return &models.UnlockResponse{
		Data: models.Vault{ID: id, Attributes: models.VaultAttributes{Name: "Personal"}},
		Included: []models.PasswordRecord{{
			ID:         "1",
			Attributes: models.PasswordRecordAttributes{Name: "mail", Username: "Pearl", Password: "XhBBdFifBGAOciip"},
		}},
	}, nil
}

func (f *fakeServer) DecryptRecord(ctx context.Context, token string, id models.ID, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decrypts++
	if key != "key" {
		return "", utils.NewAPIError(422, []byte(`{"errors":["Invalid encryption key"]}`))
	}
	return "DecryptedPassword123", nil
}

func (f *fakeServer) CreateRecord(ctx context.Context, token string, vaultID models.ID, data models.CreatePasswordRecordData) (*models.PasswordRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, data)
	return &models.PasswordRecord{
		ID:         "2",
		Attributes: models.PasswordRecordAttributes{Name: data.PasswordRecord.Name, Username: data.PasswordRecord.Username, Password: "cipher"},
	}, nil
}

func (f *fakeServer) DeleteRecord(ctx context.Context, token string, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errors.New("connection reset")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type harness struct {
	server *fakeServer
	access *vault.Access
	shell  *Shell
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(input string) *harness {
	h := &harness{server: &fakeServer{}, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.access = vault.NewAccess(h.server, staticToken("t"), nil)
	printer := &format.Printer{Out: h.out, Err: h.errOut, Format: "table"}
	h.shell = New(h.access, prompt.New(strings.NewReader(input), &bytes.Buffer{}), printer, nil)
	return h
}

func TestOpen_WrongCode(t *testing.T) {
	h := newHarness("nope\n")

	err := h.shell.Open(context.Background(), "7")
	require.Error(t, err)
	assert.False(t, h.access.IsOpen())
	assert.Equal(t, []string{"Invalid unlock code"}, h.shell.Errors())
}

func TestRun_RevealAndMask(t *testing.T) {
	h := newHarness("open-sesame\nreveal 1\nkey\nlist\nmask 1\nlist\nexit\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))
	require.NoError(t, h.shell.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, `Vault "Personal" unlocked.`)
	assert.Contains(t, out, "Password: DecryptedPassword123")
	assert.Contains(t, out, "Record 1 masked.")
	assert.Equal(t, 1, h.server.decrypts)

	// list shows the mask, then the plaintext, then the mask again
	first := strings.Index(out, vault.MaskToken)
	revealed := strings.LastIndex(out, "DecryptedPassword123")
	last := strings.LastIndex(out, vault.MaskToken)
	assert.Less(t, first, revealed)
	assert.Less(t, revealed, last)

	assert.False(t, h.access.IsOpen(), "leaving the shell closes the vault")
}

func TestRun_RevealRetryThenGiveUp(t *testing.T) {
	h := newHarness("open-sesame\nreveal 1\nwrong\ny\n\nn\nexit\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))
	require.NoError(t, h.shell.Run(context.Background()))

	assert.Equal(t, 1, h.server.decrypts, "an empty key never reaches the server")
	assert.Contains(t, h.errOut.String(), "Invalid encryption key")
	assert.Contains(t, h.errOut.String(), vault.KeyRequired)
	assert.NotContains(t, h.out.String(), "DecryptedPassword123")
}

func TestRun_AddRecord(t *testing.T) {
	h := newHarness("open-sesame\nadd\nGitHub\npearl\ns3cret\n\n\nkey\nexit\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))

	require.NoError(t, h.shell.Run(context.Background()))
	rows := Rows(h.access)

	require.Len(t, h.server.created, 1)
	assert.Equal(t, "GitHub", h.server.created[0].PasswordRecord.Name)
	assert.Equal(t, "key", h.server.created[0].EncryptionKey)
	assert.Contains(t, h.out.String(), "New record successfully created.")
	assert.Empty(t, rows, "records are gone once the shell has closed the vault")
}

func TestRun_AddRecordInvalid(t *testing.T) {
	h := newHarness("open-sesame\nadd\n\npearl\ns3cret\nftp:bad url\n\nkey\nexit\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))
	require.NoError(t, h.shell.Run(context.Background()))

	assert.Empty(t, h.server.created)
	assert.Contains(t, h.errOut.String(), "Name is required.")
}

func TestRun_DeleteFailureKeepsRecord(t *testing.T) {
	h := newHarness("open-sesame\ndelete 1\ny\n")
	h.server.failDel = true
	require.NoError(t, h.shell.Open(context.Background(), "7"))

	err := h.shell.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, h.server.deleted)
	assert.Contains(t, h.errOut.String(), utils.UnexpectedMessage)
}

func TestRun_DeleteConfirmed(t *testing.T) {
	h := newHarness("open-sesame\ndelete 1\ny\nlist\nexit\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))
	require.NoError(t, h.shell.Run(context.Background()))

	assert.Equal(t, []models.ID{"1"}, h.server.deleted)
	assert.Contains(t, h.out.String(), "Record 1 deleted.")
	assert.Contains(t, h.out.String(), vault.NoRecordsMessage)
}

func TestRun_UnknownAndUsage(t *testing.T) {
	h := newHarness("open-sesame\nfrobnicate\nreveal\nhelp\n")
	require.NoError(t, h.shell.Open(context.Background(), "7"))
	require.NoError(t, h.shell.Run(context.Background()))

	assert.Contains(t, h.errOut.String(), "Unknown command")
	assert.Contains(t, h.errOut.String(), "Usage: reveal <record-id>")
	assert.Contains(t, h.out.String(), "Available commands:")
	assert.False(t, h.access.IsOpen())
}
