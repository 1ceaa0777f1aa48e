package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// TokenSource hands out auth tokens and forgets them on demand.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// StaticToken is a fixed credential such as an API key. Invalidate is a no-op.
type StaticToken string

// Token returns the key.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("empty token")
	}
	return string(s), nil
}

// Invalidate does nothing for a static key.
func (s StaticToken) Invalidate() {}

// RefreshFunc obtains a fresh token from the issuer.
type RefreshFunc func(ctx context.Context) (string, error)

// KeyringTokenSource caches a token in memory and in the OS keyring, asking
// refresh for a new one when neither has it.
type KeyringTokenSource struct {
	service string
	user    string
	refresh RefreshFunc

	mu     sync.Mutex
	cached string
}

// NewKeyringTokenSource creates a token source stored under service/user.
func NewKeyringTokenSource(service, user string, refresh RefreshFunc) *KeyringTokenSource {
	return &KeyringTokenSource{service: service, user: user, refresh: refresh}
}

// Token returns the cached token, the keyring copy, or a refreshed one.
func (k *KeyringTokenSource) Token(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.cached != "" {
		return k.cached, nil
	}

	token, err := keyring.Get(k.service, k.user)
	if err == nil && token != "" {
		k.cached = token
		return token, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		fetchLog.Printf("failed to read %s token from keyring: %v", k.service, err)
	}

	if k.refresh == nil {
		return "", fmt.Errorf("no %s token and no way to refresh", k.service)
	}
	token, err = k.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh %s token: %w", k.service, err)
	}
	if err := keyring.Set(k.service, k.user, token); err != nil {
		fetchLog.Printf("failed to save %s token to keyring: %v", k.service, err)
	}
	k.cached = token
	return token, nil
}

// Invalidate drops the cached token from memory and the keyring.
func (k *KeyringTokenSource) Invalidate() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.cached = ""
	if err := keyring.Delete(k.service, k.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		fetchLog.Printf("failed to remove %s token from keyring: %v", k.service, err)
	}
}
