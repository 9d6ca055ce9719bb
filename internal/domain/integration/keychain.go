// Package integration connects TuneDeck to the model hub: credential
// storage and the OAuth login flow for gated datasets and base models.
package integration

import (
	"github.com/danieljoos/wincred"
)

// Keychain stores hub credentials in the Windows Credential Manager.
// All entries share a prefix so they are identifiable in the manager UI.
type Keychain struct {
	prefix string
}

// NewKeychain creates a keychain scoped to prefix.
func NewKeychain(prefix string) *Keychain {
	return &Keychain{prefix: prefix}
}

func (k *Keychain) target(id string) string {
	return k.prefix + ":" + id
}

// SetSecret writes a secret, replacing any previous value.
func (k *Keychain) SetSecret(id, secret string) error {
	cred := wincred.NewGenericCredential(k.target(id))
	cred.CredentialBlob = []byte(secret)
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

// GetSecret reads a secret back.
func (k *Keychain) GetSecret(id string) (string, error) {
	cred, err := wincred.GetGenericCredential(k.target(id))
	if err != nil {
		return "", err
	}
	return string(cred.CredentialBlob), nil
}

// RemoveSecret deletes a secret.
func (k *Keychain) RemoveSecret(id string) error {
	cred, err := wincred.GetGenericCredential(k.target(id))
	if err != nil {
		return err
	}
	return cred.Delete()
}
