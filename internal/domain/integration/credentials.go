package integration

import (
	"os"
)

// HubTokenEnv is checked before the keychain so CI and headless setups
// can inject a token without a credential store.
const HubTokenEnv = "TUNEDECK_HUB_TOKEN"

const hubTokenID = "hub:token"

// SecretStore is the slice of Keychain the credential manager needs.
type SecretStore interface {
	SetSecret(id, secret string) error
	GetSecret(id string) (string, error)
	RemoveSecret(id string) error
}

// CredentialManager resolves the model-hub token used to download
// gated datasets and base models.
type CredentialManager struct {
	store SecretStore
}

// NewCredentialManager creates a credential manager backed by the
// platform keychain.
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{store: NewKeychain("tunedeck")}
}

// NewCredentialManagerWithStore creates a credential manager backed by
// a custom secret store.
func NewCredentialManagerWithStore(store SecretStore) *CredentialManager {
	return &CredentialManager{store: store}
}

// HubToken returns the current hub token: the environment variable
// wins, then the keychain. An empty string means not logged in.
func (c *CredentialManager) HubToken() string {
	if token := os.Getenv(HubTokenEnv); token != "" {
		return token
	}
	token, err := c.store.GetSecret(hubTokenID)
	if err != nil {
		return ""
	}
	return token
}

// SetHubToken stores the hub token in the keychain.
func (c *CredentialManager) SetHubToken(token string) error {
	return c.store.SetSecret(hubTokenID, token)
}

// ClearHubToken removes the stored hub token.
func (c *CredentialManager) ClearHubToken() error {
	return c.store.RemoveSecret(hubTokenID)
}

// LoggedIn reports whether a hub token is available from any source.
func (c *CredentialManager) LoggedIn() bool {
	return c.HubToken() != ""
}
