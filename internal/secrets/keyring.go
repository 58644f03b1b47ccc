// Package secrets stores optional credentials in the OS keyring.
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const Service = "soulsync"

// Known keys.
const (
	TelegramBotToken = "telegram_bot_token"
	JWTSecret        = "jwt_secret"
	DatabaseURL      = "database_url"
)

var (
	// ErrNotFound is returned when the key has no stored value.
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Keys lists the secrets the service knows how to resolve.
func Keys() []string {
	return []string{TelegramBotToken, JWTSecret, DatabaseURL}
}

func Get(key string) (string, error) {
	v, err := keyring.Get(Service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown secret %q", key)
	}
	if value == "" {
		return errors.New("secret value cannot be empty")
	}
	if err := keyring.Set(Service, key, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", key, err)
	}
	return nil
}

func Delete(key string) error {
	if err := keyring.Delete(Service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}

// Resolve returns current when set, otherwise the keyring value for key.
// A missing entry is not an error.
func Resolve(current, key string) (string, error) {
	if current != "" {
		return current, nil
	}
	v, err := Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func known(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
