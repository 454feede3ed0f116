// Package auth manages the Gmail OAuth2 credential lifecycle: loading
// the client credentials, persisting a refreshable token, and
// reacquiring one through a loopback HTTP server when the saved token
// is absent or revoked (spec.md §6).
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

const (
	credentialsFileName = "credentials.json"
	tokenFileName       = "token.json"
)

// Manager resolves an OAuth2-authorized HTTP client for the Gmail API,
// persisting and refreshing the token under homeDir.
type Manager struct {
	homeDir      string
	redirectPort int
	authTimeout  time.Duration
}

// NewManager constructs a Manager. authTimeout bounds how long the
// loopback server waits for the OAuth callback during a fresh
// authorization (gmail.authTimeoutMs).
func NewManager(homeDir string, redirectPort int, authTimeout time.Duration) *Manager {
	return &Manager{homeDir: homeDir, redirectPort: redirectPort, authTimeout: authTimeout}
}

// Client returns an HTTP client authorized against the Gmail read-only
// scope, reusing a saved token if present and valid, or running the
// loopback authorization flow otherwise.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	config, err := m.loadOAuthConfig()
	if err != nil {
		return nil, err
	}

	token, err := m.loadToken()
	if err != nil {
		token, err = m.authorize(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		if err := m.saveToken(token); err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
	}

	return config.Client(ctx, token), nil
}

// DeleteToken removes the persisted token, forcing the next Client call
// to reacquire one interactively. This is the remediation for "provider
// auth revoked" from spec.md §7.
func (m *Manager) DeleteToken() error {
	err := os.Remove(filepath.Join(m.homeDir, tokenFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("auth: delete token: %w", err)
	}
	return nil
}

func (m *Manager) loadOAuthConfig() (*oauth2.Config, error) {
	path := filepath.Join(m.homeDir, credentialsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read %s: %w", path, err)
	}
	config, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("auth: parse %s: %w", path, err)
	}
	config.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d", m.redirectPort)
	return config, nil
}

func (m *Manager) loadToken() (*oauth2.Token, error) {
	path := filepath.Join(m.homeDir, tokenFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read %s: %w", path, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("auth: parse %s: %w", path, err)
	}
	return &token, nil
}

func (m *Manager) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	path := filepath.Join(m.homeDir, tokenFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// authorize runs the interactive loopback flow: print the consent URL,
// listen on the redirect port for the callback, and exchange the code.
func (m *Manager) authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL in a browser to authorize Gmail access:\n\n%s\n\n", authURL)

	code, err := m.awaitCallback(ctx)
	if err != nil {
		return nil, err
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// awaitCallback listens on the configured redirect port for the OAuth
// callback and returns the authorization code, or an error on timeout.
func (m *Manager) awaitCallback(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", m.redirectPort))
	if err != nil {
		return "", fmt.Errorf("listen on redirect port %d: %w", m.redirectPort, err)
	}
	defer listener.Close()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errCh <- fmt.Errorf("oauth callback: missing code parameter")
			fmt.Fprintln(w, "Authorization failed. You can close this tab.")
			return
		}
		codeCh <- code
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
	})}
	go func() { _ = server.Serve(listener) }()
	defer server.Close()

	timeout := m.authTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(timeout):
		return "", fmt.Errorf("oauth callback: timed out after %s", timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
