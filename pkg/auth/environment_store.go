package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements TokenStore over the STRAVA_ACCESS_TOKEN
// environment variable. It is read-only and serves as the last-resort
// backend; config loading honors a .env file before this store is queried.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based token store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables.
func (e *EnvironmentStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve gets the token from the environment. The environment holds a
// single token, returned under whatever name was asked for.
func (e *EnvironmentStore) Retrieve(name string) (*Token, error) {
	accessToken := os.Getenv("STRAVA_ACCESS_TOKEN")
	if accessToken == "" {
		return nil, ErrTokenNotFound
	}

	if name == "" {
		name = DefaultTokenName
	}

	return &Token{
		Name:         name,
		AccessToken:  accessToken,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set.
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("STRAVA_ACCESS_TOKEN") != ""
}
