package storagefakes

import (
	"sync"

	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
	"github.com/spotdesk/spotdesk-go/session/storage"
)

var _ storage.TokenStore = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory TokenStore for tests. Operations can be made
// to fail by setting the corresponding error field.
type FakeTokenStore struct {
	lock sync.RWMutex
	pair storage.TokenPair
	has  bool

	TokensErr error
	SaveErr   error
	ClearErr  error
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

// Seed pre-loads a pair without the Save validation, for arranging test state.
func (ts *FakeTokenStore) Seed(pair storage.TokenPair) {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.pair = pair
	ts.has = !pair.Empty()
}

func (ts *FakeTokenStore) Tokens() (storage.TokenPair, error) {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	if ts.TokensErr != nil {
		return storage.TokenPair{}, ts.TokensErr
	}
	if !ts.has {
		return storage.TokenPair{}, apperrors.ErrNoStoredTokens
	}
	return ts.pair, nil
}

func (ts *FakeTokenStore) Save(pair storage.TokenPair) error {
	if ts.SaveErr != nil {
		return ts.SaveErr
	}
	if !pair.Complete() {
		return apperrors.ErrIncompleteTokenPair
	}
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.pair = pair
	ts.has = true
	return nil
}

func (ts *FakeTokenStore) SaveAccess(accessToken string) error {
	if ts.SaveErr != nil {
		return ts.SaveErr
	}
	if accessToken == "" {
		return apperrors.ErrIncompleteTokenPair
	}
	ts.lock.Lock()
	defer ts.lock.Unlock()
	if !ts.has {
		return apperrors.ErrNoStoredTokens
	}
	ts.pair.AccessToken = accessToken
	return nil
}

func (ts *FakeTokenStore) Clear() error {
	if ts.ClearErr != nil {
		return ts.ClearErr
	}
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.pair = storage.TokenPair{}
	ts.has = false
	return nil
}

// Stored returns the current pair and whether one is stored.
func (ts *FakeTokenStore) Stored() (storage.TokenPair, bool) {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return ts.pair, ts.has
}
