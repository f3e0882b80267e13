package forms

import "github.com/passvault/cli/internal/models"

// Success messages shown after a form is accepted
const (
	VaultCreatedMessage  = "Vault created."
	VaultUpdatedMessage  = "Vault updated."
	RecordCreatedMessage = "New record successfully created."
)

// NewLogin returns the sign in form
func NewLogin() *Form[models.LoginData] {
	return New(func() models.LoginData { return models.LoginData{} })
}

// NewRegister returns the sign up form
func NewRegister() *Form[models.RegisterData] {
	return New(func() models.RegisterData { return models.RegisterData{} })
}

// NewVaultCreate returns the vault creation form with the default type and
// status preselected
func NewVaultCreate() *Form[models.CreateVaultData] {
	return New(func() models.CreateVaultData {
		return models.CreateVaultData{VaultFields: models.NewVaultFields()}
	})
}

// NewVaultUpdate returns the vault edit form. Edit it with the fields of the
// vault being changed.
func NewVaultUpdate() *Form[models.UpdateVaultData] {
	return New(func() models.UpdateVaultData {
		return models.UpdateVaultData{VaultFields: models.NewVaultFields()}
	})
}

// EditVault prefills an update form from an existing vault. The unlock code
// starts empty and is only sent when the user sets one.
func EditVault(f *Form[models.UpdateVaultData], v models.Vault) {
	f.Edit(models.UpdateVaultData{VaultFields: models.FieldsOf(v)})
}

// NewRecordCreate returns the password record form
func NewRecordCreate() *Form[models.CreatePasswordRecordData] {
	return New(func() models.CreatePasswordRecordData { return models.CreatePasswordRecordData{} })
}
