package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testToken = "tok-1"

type fakeServer struct {
	mu       sync.Mutex
	vaults   []map[string]interface{}
	decrypts int
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+testToken
	}
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	user := map[string]string{"username": "pearl", "first_name": "Pearl", "email": "pearl@example.com"}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			User struct{ Username, Password string }
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.User.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"auth_token": testToken, "user": user})
	})
	mux.HandleFunc("/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	})
	mux.HandleFunc("/vaults", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": f.vaults})
	})
	mux.HandleFunc("/vaults/7/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["unlock_code"] != "open" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"errors": []string{"Invalid unlock code"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"id": 7, "type": "vault", "attributes": map[string]interface{}{"name": "Personal"}},
			"included": []interface{}{
				map[string]interface{}{"id": 1, "type": "password_record", "attributes": map[string]interface{}{
					"name": "mail", "username": "Pearl", "password": "XhBBdFifBGAOciip",
				}},
			},
		})
	})
	mux.HandleFunc("/password_records/1/decrypt_password", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.decrypts++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"password": "DecryptedPassword123"})
	})
	return mux
}

type env struct {
	server *fakeServer
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	f := &fakeServer{vaults: []map[string]interface{}{}}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	t.Setenv("PASSVAULT_SERVER_URL", srv.URL)
	t.Setenv("PASSVAULT_FORMAT_COLORS", "false")
	return &env{server: f, config: filepath.Join(t.TempDir(), "passvault.yaml")}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (e *env) run(input string, args ...string) (string, string, error) {
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))

	err := Execute()
	return out.String(), errOut.String(), err
}

func (e *env) storedToken(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.config)
	require.NoError(t, err)

	var doc struct {
		Auth struct {
			Token string `yaml:"token"`
		} `yaml:"auth"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc.Auth.Token
}

func TestVaultsList_RequiresLogin(t *testing.T) {
	e := newEnv(t)

	_, errOut, err := e.run("", "vaults", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	assert.Contains(t, errOut, "not logged in")
}

func TestLogin_PersistsTokenAndGreets(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Login successful")
	assert.Contains(t, out, "Hello, Pearl!")
	assert.Equal(t, testToken, e.storedToken(t))

	out, _, err = e.run("", "vaults", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No vaults yet")
}

func TestLogin_PromptsForPassword(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run("pearl\npw\n", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, Pearl!")
}

func TestLogin_Rejected(t *testing.T) {
	e := newEnv(t)

	_, errOut, err := e.run("", "auth", "login", "-u", "pearl", "-p", "nope")
	require.Error(t, err)
	assert.Contains(t, errOut, "Invalid username or password")
	assert.Empty(t, e.storedToken(t))
}

func TestLogin_MissingPassword(t *testing.T) {
	e := newEnv(t)

	_, errOut, err := e.run("\n", "auth", "login", "-u", "pearl")
	require.Error(t, err)
	assert.Contains(t, errOut, "Password is required.")
}

func TestStatusAndLogout(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	out, _, err := e.run("", "-o", "json", "auth", "status")
	require.NoError(t, err)
	var status struct {
		LoggedIn bool `json:"logged_in"`
		User     struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "pearl", status.User.Username)

	out, _, err = e.run("", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully logged out")
	assert.Empty(t, e.storedToken(t))

	out, _, err = e.run("", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: Not logged in")
}

func TestVaultsList_Table(t *testing.T) {
	e := newEnv(t)
	e.server.vaults = []map[string]interface{}{
		{"id": 7, "type": "vault", "attributes": map[string]interface{}{
			"name": "Personal", "vault_type": "personal", "status": "active",
		}},
	}
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	out, _, err := e.run("", "vaults", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Personal")
	assert.NotContains(t, out, "No vaults yet")
}

func TestRecordsDecrypt(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	out, _, err := e.run("", "records", "decrypt", "7", "1", "--unlock-code", "open", "--encryption-key", "key")
	require.NoError(t, err)
	assert.Equal(t, "DecryptedPassword123\n", out)
	assert.Equal(t, 1, e.server.decrypts)
}

func TestRecordsDecrypt_EmptyKeyNeverCallsServer(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	_, errOut, err := e.run("\n", "records", "decrypt", "7", "1", "--unlock-code", "open")
	require.Error(t, err)
	assert.Contains(t, errOut, "Decryption key is required.")
	assert.Zero(t, e.server.decrypts)
}

func TestRecordsList_WrongUnlockCode(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	_, errOut, err := e.run("", "records", "list", "7", "--unlock-code", "shut")
	require.Error(t, err)
	assert.Contains(t, errOut, "Invalid unlock code")
}

func TestConfigSetGet(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run("", "config", "set", "format.default", "yaml")
	require.NoError(t, err)

	out, _, err := e.run("", "config", "get", "format.default")
	require.NoError(t, err)
	assert.Equal(t, "format.default: yaml\n", out)

	_, _, err = e.run("", "config", "set", "auth.token", "x")
	assert.Error(t, err)

	out, _, err = e.run("", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, e.config+"\n", out)
}

func TestRecordsDelete_RejectsMalformedID(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	_, errOut, err := e.run("", "records", "delete", "1/../2", "-y")
	require.Error(t, err)
	assert.Contains(t, errOut, "Record ID contains invalid characters.")
}

func TestVaultsCreate_RejectsBadSharedWith(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run("", "auth", "login", "-u", "pearl", "-p", "pw")
	require.NoError(t, err)

	_, errOut, err := e.run("", "vaults", "create", "-n", "Work",
		"--shared-with", "ok@example.com,nope,also-bad", "--unlock-code", "c")
	require.Error(t, err)
	assert.Contains(t, errOut, `"nope" is not a valid email address.`)
	assert.Contains(t, errOut, `"also-bad" is not a valid email address.`)
	assert.NotContains(t, errOut, "ok@example.com")
}

func TestConfigSet_RejectsBadServerURL(t *testing.T) {
	e := newEnv(t)

	_, errOut, err := e.run("", "config", "set", "server.url", "api.example.com")
	require.Error(t, err)
	assert.Contains(t, errOut, "URL must start with http:// or https://.")
}
