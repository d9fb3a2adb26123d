// Package keyring stores the bearer token in the system keyring.
package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/ideas"
	"github.com/zalando/go-keyring"
)

// Defaults for the keyring entry.
const (
	DefaultService = "ideas"
	DefaultUser    = "token"
)

var _ ideas.TokenSource = (*Store)(nil)

// Store reads and writes one token entry in the system keyring.
type Store struct {
	Service string
	User    string
}

// Token returns the stored token, or "" when none is stored.
func (s *Store) Token(context.Context) (string, error) {
	tok, err := keyring.Get(s.service(), s.user())
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring: get: %w", err)
	}
	return tok, nil
}

// Set stores token, replacing any previous one.
func (s *Store) Set(token string) error {
	if token == "" {
		return fmt.Errorf("keyring: empty token: %w", ideas.ErrValidation)
	}
	if err := keyring.Set(s.service(), s.user(), token); err != nil {
		return fmt.Errorf("keyring: set: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s *Store) Delete() error {
	err := keyring.Delete(s.service(), s.user())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring: delete: %w", err)
	}
	return nil
}

func (s *Store) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultService
}

func (s *Store) user() string {
	if s != nil && s.User != "" {
		return s.User
	}
	return DefaultUser
}
