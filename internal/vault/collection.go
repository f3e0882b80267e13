package vault

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

// Collection is the list of vaults owned by the current user
type Collection struct {
	api    CollectionAPI
	tokens TokenSource
	logger *zap.Logger

	mu      sync.Mutex
	vaults  []models.Vault
	loaded   bool
	inflight int
	errors   []string
}

// NewCollection creates an empty, unloaded collection
func NewCollection(api CollectionAPI, tokens TokenSource, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{api: api, tokens: tokens, logger: logger}
}

// Refresh replaces the list with the server's
func (c *Collection) Refresh(ctx context.Context) error {
	token, err := c.start()
	if err != nil {
		return err
	}

	vaults, err := c.api.ListVaults(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.errors = utils.Normalize(err)
		return err
	}
	c.vaults = vaults
	c.loaded = true
	c.errors = nil
	c.logger.Debug("vaults loaded", zap.Int("count", len(vaults)))
	return nil
}

// Create creates a vault and appends it to the list
func (c *Collection) Create(ctx context.Context, data models.CreateVaultData) (*models.Vault, error) {
	token, err := c.start()
	if err != nil {
		return nil, err
	}

	created, err := c.api.CreateVault(ctx, token, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.errors = utils.Normalize(err)
		return nil, err
	}
	c.vaults = append(c.vaults, *created)
	c.errors = nil
	return created, nil
}

// Update updates a vault and replaces it in place by id
func (c *Collection) Update(ctx context.Context, id models.ID, data models.UpdateVaultData) (*models.Vault, error) {
	token, err := c.start()
	if err != nil {
		return nil, err
	}

	updated, err := c.api.UpdateVault(ctx, token, id, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.errors = utils.Normalize(err)
		return nil, err
	}
	for i := range c.vaults {
		if c.vaults[i].ID == id {
			c.vaults[i] = *updated
			break
		}
	}
	c.errors = nil
	return updated, nil
}

// Delete deletes a vault. The vault leaves the list only once the server
// confirms; on failure it stays and Errors holds the server text.
func (c *Collection) Delete(ctx context.Context, id models.ID) error {
	token, err := c.start()
	if err != nil {
		return err
	}

	err = c.api.DeleteVault(ctx, token, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.errors = utils.Normalize(err)
		return err
	}
	for i := range c.vaults {
		if c.vaults[i].ID == id {
			c.vaults = append(c.vaults[:i], c.vaults[i+1:]...)
			break
		}
	}
	c.errors = nil
	return nil
}

// Vaults returns a copy of the list
func (c *Collection) Vaults() []models.Vault {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Vault{}, c.vaults...)
}

// Find returns the vault with the given id
func (c *Collection) Find(id models.ID) (models.Vault, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.vaults {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Vault{}, ErrVaultNotFound
}

// Empty reports whether a loaded list has no vaults
func (c *Collection) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && len(c.vaults) == 0
}

// Loading reports whether any request is in flight
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Errors returns the messages of the last failed operation
func (c *Collection) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

func (c *Collection) start() (string, error) {
	token := c.tokens.Token()

	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.errors = utils.Normalize(utils.ErrTokenMissing)
		return "", utils.ErrTokenMissing
	}
	c.inflight++
	return token, nil
}
