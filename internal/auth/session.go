// ABOUTME: Session manager owning login, logout, and token refresh
// ABOUTME: Persists credentials durably and runs the background refresh loop

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mappingdesk/skumap/internal/token"
)

// DefaultDepartment is assumed when the token carries no department claim
const DefaultDepartment = "SCM"

// RefreshWindow is how far ahead of the 15 minute token lifetime the
// background loop refreshes
const RefreshWindow = 14 * time.Minute

// Session holds the three credential fields owned by the manager
type Session struct {
	AccessToken  string
	RefreshToken string
	Department   string
}

// AuthError represents an authentication failure: bad credentials, an
// expired or invalid refresh token, or a token that cannot be decoded.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Manager owns the session state. It is constructed explicitly and passed
// to the components that need identity; there is no package-level session.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	store      *token.Store

	mu   sync.Mutex
	sess Session

	// Timer-driven and on-demand refreshes share one in-flight call
	refreshGroup singleflight.Group
}

// NewManager creates a session manager talking to the given API base URL
// and persisting credentials through store.
func NewManager(baseURL string, store *token.Store) *Manager {
	return &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store: store,
	}
}

// Restore loads a previously persisted session from durable storage
func (m *Manager) Restore() error {
	access, refresh, department, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sess = Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Department:   strings.ToUpper(strings.TrimSpace(department)),
	}
	m.mu.Unlock()
	return nil
}

// Session returns a copy of the current session state
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// LoggedIn reports whether an access token is present. Expiry is not
// checked here; the HTTP wrapper refreshes near-expiry tokens at call time.
func (m *Manager) LoggedIn() bool {
	return m.Session().AccessToken != ""
}

// Claims decodes the current access token
func (m *Manager) Claims() (*token.Claims, error) {
	sess := m.Session()
	if sess.AccessToken == "" {
		return nil, &AuthError{Op: "claims", Err: fmt.Errorf("not logged in")}
	}
	return token.Decode(sess.AccessToken)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair, derives the department
// from the access token, and persists the session. On any failure the
// prior session state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/token/", bytes.NewReader(body))
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Op: "login", Err: fmt.Errorf("invalid credentials (status %d)", resp.StatusCode)}
	}

	var pair tokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return &AuthError{Op: "login", Err: fmt.Errorf("invalid response from backend: %w", err)}
	}

	claims, err := token.Decode(pair.Access)
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}

	sess := Session{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Department:   deriveDepartment(claims),
	}

	m.mu.Lock()
	m.sess = sess
	m.mu.Unlock()

	if err := m.store.Save(sess.AccessToken, sess.RefreshToken, sess.Department); err != nil {
		slog.Warn("could not persist session", "error", err)
	}

	slog.Info("logged in", "email", claims.Email, "department", sess.Department)
	return nil
}

// Logout clears the session in memory and in durable storage. Idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.sess = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		slog.Warn("could not clear persisted session", "error", err)
	}
}

// Refresh exchanges the refresh token for a new access token. A session
// whose scheduled refresh fails is unusable, so any failure here forces
// a logout.
func (m *Manager) Refresh(ctx context.Context) error {
	err := m.TryRefresh(ctx)
	if err != nil {
		slog.Warn("token refresh failed, logging out", "error", err)
		m.Logout()
	}
	return err
}

// TryRefresh is the non-fatal variant used by the HTTP wrapper before
// outbound requests: a failure leaves the session intact and the caller
// proceeds with the stale token. Concurrent callers (the background
// loop and the wrapper) share a single in-flight exchange.
func (m *Manager) TryRefresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, m.doRefresh(ctx)
	})
	return err
}

func (m *Manager) doRefresh(ctx context.Context) error {
	sess := m.Session()
	if sess.RefreshToken == "" {
		return &AuthError{Op: "refresh", Err: fmt.Errorf("no refresh token available")}
	}

	if err := m.exchangeRefresh(ctx, sess.RefreshToken); err != nil {
		return &AuthError{Op: "refresh", Err: err}
	}
	return nil
}

func (m *Manager) exchangeRefresh(ctx context.Context, refreshToken string) error {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/token/refresh/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refresh token invalid or expired (status %d)", resp.StatusCode)
	}

	var pair tokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	if pair.Access == "" {
		return fmt.Errorf("no access token returned from refresh")
	}

	claims, err := token.Decode(pair.Access)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sess.AccessToken = pair.Access
	// Adopt the rotated refresh token when the backend sends one
	if pair.Refresh != "" {
		m.sess.RefreshToken = pair.Refresh
	}
	m.sess.Department = deriveDepartment(claims)
	sess := m.sess
	m.mu.Unlock()

	if err := m.store.Save(sess.AccessToken, sess.RefreshToken, sess.Department); err != nil {
		slog.Warn("could not persist refreshed session", "error", err)
	}

	slog.Debug("access token refreshed", "department", sess.Department)
	return nil
}

// StartAutoRefresh refreshes the access token on a fixed interval while a
// refresh token exists, staying ahead of the 15 minute token lifetime.
// The loop stops when ctx is cancelled.
func (m *Manager) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = RefreshWindow
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.Session().RefreshToken == "" {
					continue
				}
				if err := m.Refresh(ctx); err != nil {
					slog.Warn("scheduled token refresh failed", "error", err)
				}
			}
		}
	}()
}

// deriveDepartment normalizes the department claim, defaulting to SCM
func deriveDepartment(claims *token.Claims) string {
	dept := strings.ToUpper(strings.TrimSpace(claims.Department))
	if dept == "" {
		return DefaultDepartment
	}
	return dept
}
