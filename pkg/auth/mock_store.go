package auth

import "sync"

// MockStore is an in-memory TokenStore for testing.
type MockStore struct {
	tokens    map[string]Token
	failStore bool
	mu        sync.RWMutex
}

// NewMockStore creates an empty in-memory token store.
func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]Token)}
}

// SetFailStore makes subsequent Store calls fail.
func (m *MockStore) SetFailStore(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStore = fail
}

// Store saves a token in memory.
func (m *MockStore) Store(token *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return ErrStoreUnavailable
	}
	if token == nil || token.Name == "" {
		return ErrInvalidToken
	}
	m.tokens[token.Name] = *token
	return nil
}

// Retrieve gets a token from memory.
func (m *MockStore) Retrieve(name string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, exists := m.tokens[name]
	if !exists {
		return nil, ErrTokenNotFound
	}
	return &token, nil
}

// Delete removes a token from memory.
func (m *MockStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tokens[name]; !exists {
		return ErrTokenNotFound
	}
	delete(m.tokens, name)
	return nil
}

// Exists checks if a token exists in memory.
func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.tokens[name]
	return exists
}
