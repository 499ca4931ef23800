package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

// TokenStore persists the token as a small JSON document on disk so it
// survives restarts of the CLI.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore stores the token at path, creating parent directories on first write.
func NewTokenStore(path string) (*TokenStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("token file path is required")
	}
	return &TokenStore{path: filepath.Clean(path)}, nil
}

// DefaultPath is $XDG_CONFIG_HOME/pharmactl/credentials.json or the OS equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pharmactl", "credentials.json")
}

func (s *TokenStore) Path() string { return s.path }

func (s *TokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	doc[authports.TokenKey] = token
	return s.writeLocked(doc)
}

func (s *TokenStore) Get(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	if err != nil {
		return "", false, err
	}
	token := doc[authports.TokenKey]
	return token, token != "", nil
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	if _, ok := doc[authports.TokenKey]; !ok {
		return nil
	}
	delete(doc, authports.TokenKey)
	if len(doc) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove token file: %w", err)
		}
		return nil
	}
	return s.writeLocked(doc)
}

func (s *TokenStore) readLocked() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	doc := map[string]string{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *TokenStore) writeLocked(doc map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

var _ authports.TokenStore = (*TokenStore)(nil)
