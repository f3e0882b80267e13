package models

import "time"

// Vault types accepted by the server
const (
	VaultTypePersonal  = "personal"
	VaultTypeBusiness  = "business"
	VaultTypeShared    = "shared"
	VaultTypeTemporary = "temporary"
)

// Vault statuses accepted by the server
const (
	VaultStatusActive   = "active"
	VaultStatusArchived = "archived"
	VaultStatusDeleted  = "deleted"
	VaultStatusLocked   = "locked"
)

// VaultTypes lists the vault types in display order; the first is the default
var VaultTypes = []string{VaultTypePersonal, VaultTypeBusiness, VaultTypeShared, VaultTypeTemporary}

// VaultStatuses lists the vault statuses in display order; the first is the default
var VaultStatuses = []string{VaultStatusActive, VaultStatusArchived, VaultStatusDeleted, VaultStatusLocked}

// Vault is a vault resource as returned by the API
type Vault struct {
	ID         ID              `json:"id" yaml:"id"`
	Type       string          `json:"type" yaml:"type"`
	Attributes VaultAttributes `json:"attributes" yaml:"attributes"`
}

// VaultAttributes holds the vault metadata. The unlock code is write-only
// and never part of a response.
type VaultAttributes struct {
	Name           string    `json:"name" yaml:"name"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	VaultType      string    `json:"vault_type" yaml:"vault_type"`
	Status         string    `json:"status" yaml:"status"`
	SharedWith     []string  `json:"shared_with" yaml:"shared_with"`
	IsShared       bool      `json:"is_shared" yaml:"is_shared"`
	AccessCount    int       `json:"access_count" yaml:"access_count"`
	FailedAttempts int       `json:"failed_attempts" yaml:"failed_attempts"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
	LastAccessedAt time.Time `json:"last_accessed_at" yaml:"last_accessed_at"`
}

// VaultFields are the editable vault fields shared by create and update
type VaultFields struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	VaultType   string   `json:"vault_type" validate:"required,oneof=personal business shared temporary"`
	Status      string   `json:"status" validate:"required,oneof=active archived deleted locked"`
	SharedWith  []string `json:"shared_with"`
	IsShared    bool     `json:"is_shared"`
}

// NewVaultFields returns fields with the default type and status
func NewVaultFields() VaultFields {
	return VaultFields{
		VaultType:  VaultTypes[0],
		Status:     VaultStatuses[0],
		SharedWith: []string{},
	}
}

// FieldsOf copies the editable fields of an existing vault
func FieldsOf(v Vault) VaultFields {
	shared := append([]string{}, v.Attributes.SharedWith...)
	return VaultFields{
		Name:        v.Attributes.Name,
		Description: v.Attributes.Description,
		VaultType:   v.Attributes.VaultType,
		Status:      v.Attributes.Status,
		SharedWith:  shared,
		IsShared:    v.Attributes.IsShared,
	}
}

// CreateVaultData is the vault creation payload; the unlock code is mandatory
type CreateVaultData struct {
	VaultFields
	UnlockCode string `json:"unlock_code" validate:"required"`
}

// UpdateVaultData is the vault update payload; the unlock code is optional
type UpdateVaultData struct {
	VaultFields
	UnlockCode string `json:"unlock_code,omitempty"`
}

// UnlockRequest is sent to open a vault
type UnlockRequest struct {
	UnlockCode string `json:"unlock_code"`
}

// UnlockResponse carries the vault and its records
type UnlockResponse struct {
	Data     Vault            `json:"data"`
	Included []PasswordRecord `json:"included"`
}
