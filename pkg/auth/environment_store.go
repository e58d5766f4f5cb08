package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It lets CI and containers run without a keychain.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets the credential from VEXRANK_TOKEN
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := os.Getenv("VEXRANK_TOKEN")
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	// The environment carries no profile name, so use the default
	if name == "" {
		name = DefaultProfile
	}

	return &Account{
		Name:         name,
		Token:        token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single profile if the environment variable is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment credential is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("VEXRANK_TOKEN") != ""
}
