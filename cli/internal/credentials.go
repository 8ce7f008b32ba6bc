package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/client"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/session"
)

// Credentials stores the authentication credentials
type Credentials struct {
	AccessToken string    `json:"access_token"`
	TokenID     string    `json:"token_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired checks if the token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// FileCredentials keeps the signed-in token in a JSON file. It is the
// CLI's TokenManager and also its auth state source: a login or logout
// by another process is published to subscribers.
type FileCredentials struct {
	path string
	log  *slog.Logger
}

var (
	_ client.TokenManager     = (*FileCredentials)(nil)
	_ session.AuthStateSource = (*FileCredentials)(nil)
)

// NewFileCredentials creates a credential store at path
func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{
		path: path,
		log:  slog.Default().With(slog.String("component", "cli-creds")),
	}
}

// Path returns the credentials file location
func (f *FileCredentials) Path() string {
	return f.path
}

// GetToken returns the current access token, or "" when not logged in
func (f *FileCredentials) GetToken() (string, error) {
	creds, err := f.Load()
	if errors.Is(err, client.ErrNotLoggedIn) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// GetTokenID returns the token ID from file
func (f *FileCredentials) GetTokenID() (string, error) {
	creds, err := f.Load()
	if err != nil {
		return "", err
	}
	return creds.TokenID, nil
}

// SaveToken saves the token and the identity it carries
func (f *FileCredentials) SaveToken(token, tokenID string) error {
	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return fmt.Errorf("server returned an unusable token: %w", err)
	}
	creds := &Credentials{
		AccessToken: token,
		TokenID:     tokenID,
		UserID:      claims.UserID,
		Email:       claims.Email,
		ExpiresAt:   claims.Expiry(),
	}
	if err := f.Save(creds); err != nil {
		f.log.Error("failed to save credentials", slog.String("error", err.Error()))
		return err
	}
	f.log.Debug("credentials saved", slog.String("token_id", tokenID))
	return nil
}

// ClearToken removes the credentials file
func (f *FileCredentials) ClearToken() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Save writes credentials to disk, readable by the owner only
func (f *FileCredentials) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// write then rename so watchers never read a half-written file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads credentials from disk. A missing file is client.ErrNotLoggedIn.
func (f *FileCredentials) Load() (*Credentials, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, client.ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Identity returns the signed-in identity, or nil when logged out or the
// stored token has expired.
func (f *FileCredentials) Identity() (*entities.Identity, error) {
	creds, err := f.Load()
	if errors.Is(err, client.ErrNotLoggedIn) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	claims, err := auth.ParseUnverified(creds.AccessToken)
	switch {
	case errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrNoToken):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("stored token is unreadable: %w", err)
	}
	return claims.Identity(), nil
}

// Subscribe publishes the current identity and then every change to the
// credentials file until unsubscribe is called.
func (f *FileCredentials) Subscribe(listener session.AuthListener) (unsubscribe func()) {
	listener(f.Identity())

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(f.path), 0o700); mkErr != nil {
			err = mkErr
		} else {
			err = watcher.Add(filepath.Dir(f.path))
		}
	}
	if err != nil {
		if watcher != nil {
			watcher.Close()
		}
		f.log.Warn("cannot watch credentials, changes will not be seen",
			slog.String("path", f.path),
			slog.String("error", err.Error()))
		return func() {}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
					continue
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					listener(f.Identity())
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				listener(nil, werr)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			watcher.Close()
			wg.Wait()
		})
	}
}

// credentialsPath returns the credentials file for the named context
func credentialsPath(contextName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	filename := fmt.Sprintf("credentials-%s.json", contextName)
	return filepath.Join(homeDir, ".config", "jobfinder", filename), nil
}
