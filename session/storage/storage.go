// Package storage persists the token pair in durable client-side storage.
// Exactly two values exist: the access token and the refresh token, stored
// under fixed keys. The store never holds one without the other.
package storage

import (
	"strings"

	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
)

// Fixed storage keys for the persisted credentials.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// TokenPair is the access/refresh token pair. Invariant: a persisted pair is
// always complete - either both tokens are present or neither is.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (p TokenPair) Complete() bool {
	return strings.TrimSpace(p.AccessToken) != "" && strings.TrimSpace(p.RefreshToken) != ""
}

// Empty reports whether neither token is present.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// TokenStore is the durable credential store.
type TokenStore interface {
	// Tokens returns the stored pair, or ErrNoStoredTokens when absent.
	Tokens() (TokenPair, error)
	// Save persists a complete pair, replacing whatever was stored.
	// Incomplete pairs are rejected with ErrIncompleteTokenPair.
	Save(pair TokenPair) error
	// SaveAccess overwrites only the access token, preserving the stored
	// refresh token. Fails with ErrNoStoredTokens when nothing is stored -
	// an access token must never exist without its refresh token.
	SaveAccess(accessToken string) error
	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear() error
}

func validatePair(pair TokenPair) error {
	if !pair.Complete() {
		return apperrors.Wrapf(apperrors.ErrIncompleteTokenPair, "[storage] refusing to persist")
	}
	return nil
}
