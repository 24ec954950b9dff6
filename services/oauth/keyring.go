package oauth

import (
	"encoding/json"

	"github.com/99designs/keyring"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/customeros/fresh/config"
)

const tokenKey = "gmail-oauth-token"

// KeyringStore keeps the token as JSON in the OS keyring, falling back to
// an encrypted file when no keyring service is available.
type KeyringStore struct {
	ring keyring.Keyring
	key  string
}

func OpenKeyring(cfg *config.KeyringConfig) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: cfg.ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(cfg.FilePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening keyring")
	}
	return ring, nil
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring, key: tokenKey}
}

func (s *KeyringStore) Load() (*oauth2.Token, error) {
	item, err := s.ring.Get(s.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting credential %q", s.key)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(item.Data, token); err != nil {
		return nil, errors.Wrapf(err, "decoding credential %q", s.key)
	}
	return token, nil
}

func (s *KeyringStore) Save(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "encoding token")
	}
	err = s.ring.Set(keyring.Item{
		Key:         s.key,
		Data:        data,
		Label:       "fresh Gmail token",
		Description: "OAuth token used to read password reset emails",
	})
	if err != nil {
		return errors.Wrapf(err, "setting credential %q", s.key)
	}
	return nil
}

// Delete is a no-op when nothing is stored.
func (s *KeyringStore) Delete() error {
	err := s.ring.Remove(s.key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return errors.Wrapf(err, "deleting credential %q", s.key)
	}
	return nil
}
