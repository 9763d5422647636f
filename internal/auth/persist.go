package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// KeyringPersister stores a session in the system keyring under one account
// name, typically "<orgID>:<email>".
type KeyringPersister struct {
	service string
	account string
}

// NewKeyringPersister creates a keyring persister. An empty service uses the
// CLI's service name.
func NewKeyringPersister(service, account string) *KeyringPersister {
	if service == "" {
		service = constants.KeyringService
	}

	return &KeyringPersister{service: service, account: account}
}

func (p *KeyringPersister) SaveSession(ctx context.Context, token *motor.SessionToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := keyring.Set(p.service, p.account, string(data)); err != nil {
		return fmt.Errorf("saving session to keyring: %w", err)
	}

	return nil
}

// LoadSession returns nil without an error when nothing is stored. A corrupt
// entry is removed so the user can log in again.
func (p *KeyringPersister) LoadSession(ctx context.Context) (*motor.SessionToken, error) {
	data, err := keyring.Get(p.service, p.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading session from keyring: %w", err)
	}

	var token motor.SessionToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, p.ClearSession(ctx)
	}

	return &token, nil
}

func (p *KeyringPersister) ClearSession(ctx context.Context) error {
	err := keyring.Delete(p.service, p.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting session from keyring: %w", err)
	}

	return nil
}

// FilePersister stores a session as JSON in a file readable only by the
// owner. It is the fallback where no keyring is available.
type FilePersister struct {
	path string
}

// NewFilePersister creates a file persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) SaveSession(ctx context.Context, token *motor.SessionToken) error {
	if err := os.MkdirAll(filepath.Dir(p.path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.WriteFile(p.path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

func (p *FilePersister) LoadSession(ctx context.Context) (*motor.SessionToken, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var token motor.SessionToken
	if err := json.Unmarshal(data, &token); err != nil {
		_ = p.ClearSession(ctx)

		return nil, fmt.Errorf("parsing session file: %w", err)
	}

	return &token, nil
}

func (p *FilePersister) ClearSession(ctx context.Context) error {
	err := os.Remove(p.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}

	return nil
}
