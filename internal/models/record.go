package models

import "time"

// PasswordRecord is a credential entry of a vault. Attributes.Password is
// the ciphertext held by the server and is never replaced by plaintext.
type PasswordRecord struct {
	ID         ID                       `json:"id" yaml:"id"`
	Type       string                   `json:"type" yaml:"type"`
	Attributes PasswordRecordAttributes `json:"attributes" yaml:"attributes"`
}

// PasswordRecordAttributes holds the record fields
type PasswordRecordAttributes struct {
	Name      string    `json:"name" yaml:"name"`
	Username  string    `json:"username" yaml:"username"`
	Password  string    `json:"password" yaml:"password"`
	URL       string    `json:"url,omitempty" yaml:"url,omitempty"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// PasswordRecordFields are the user supplied record fields
type PasswordRecordFields struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	URL      string `json:"url" validate:"omitempty,url"`
	Notes    string `json:"notes"`
}

// CreatePasswordRecordData is the record creation payload
type CreatePasswordRecordData struct {
	EncryptionKey  string               `json:"encryption_key" validate:"required"`
	PasswordRecord PasswordRecordFields `json:"password_record"`
}

// DecryptRequest carries the per-record key
type DecryptRequest struct {
	EncryptionKey string `json:"encryption_key"`
}

// DecryptResponse carries the plaintext password
type DecryptResponse struct {
	Password string `json:"password"`
}
