package config

import "fmt"

// TokenStore persists the bearer token under the single auth.token key of
// the config file.
type TokenStore struct{}

// Load returns the persisted token, or "" when none is stored
func (TokenStore) Load() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig == nil {
		return "", fmt.Errorf("configuration not initialized")
	}
	return globalConfig.Auth.Token, nil
}

// Save persists the token
func (TokenStore) Save(token string) error {
	return writeToken(token)
}

// Clear erases the persisted token
func (TokenStore) Clear() error {
	return writeToken("")
}

func writeToken(token string) error {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	v.Set("auth.token", token)
	globalConfig.Auth.Token = token

	return persist("auth.token", token)
}
