package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
)

// FileStore persists the token pair as a JSON file holding exactly the two
// fixed keys. Writes are atomic (temp file + rename) so a concurrent reader
// in another process never observes a half-written pair. When a secret is
// configured the file is sealed with AES-GCM instead of written in the clear.
type FileStore struct {
	mu     sync.Mutex
	path   string
	secret string
}

var _ TokenStore = (*FileStore)(nil)

// FileStoreOption defines a function type to modify the FileStore instance.
type FileStoreOption func(*FileStore)

// WithSecret enables at-rest encryption of the credentials file. The secret
// is stretched into an AES key via HKDF-SHA256.
func WithSecret(secret string) FileStoreOption {
	return func(fs *FileStore) {
		fs.secret = secret
	}
}

// NewFileStore creates a file-backed token store at path.
func NewFileStore(path string, options ...FileStoreOption) *FileStore {
	fs := &FileStore{path: path}
	for _, opt := range options {
		opt(fs)
	}
	return fs
}

// Path returns the credentials file location.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Tokens() (TokenPair, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.read()
}

func (fs *FileStore) Save(pair TokenPair) error {
	if err := validatePair(pair); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(pair)
}

func (fs *FileStore) SaveAccess(accessToken string) error {
	if accessToken == "" {
		return apperrors.Wrapf(apperrors.ErrIncompleteTokenPair, "[FileStore.SaveAccess] empty access token")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	pair, err := fs.read()
	if err != nil {
		return err
	}
	pair.AccessToken = accessToken
	return fs.write(pair)
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove")
	}
	return nil
}

func (fs *FileStore) read() (TokenPair, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return TokenPair{}, apperrors.ErrNoStoredTokens
		}
		return TokenPair{}, errors.Wrap(err, "[FileStore] read")
	}
	if fs.secret != "" {
		raw, err = open(fs.secret, raw)
		if err != nil {
			return TokenPair{}, errors.Wrap(err, "[FileStore] decrypt")
		}
	}
	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[FileStore] decode")
	}
	if pair.Empty() {
		return TokenPair{}, apperrors.ErrNoStoredTokens
	}
	return pair, nil
}

func (fs *FileStore) write(pair TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "[FileStore] encode")
	}
	if fs.secret != "" {
		raw, err = seal(fs.secret, raw)
		if err != nil {
			return errors.Wrap(err, "[FileStore] encrypt")
		}
	}
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileStore] mkdir")
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore] temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore] write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore] chmod")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore] close")
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore] rename")
	}
	return nil
}
