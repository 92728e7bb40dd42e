package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrSessionExpired means the access token was rejected and could not be
// refreshed. The stored tokens have been cleared; the user must log in again.
var ErrSessionExpired = errors.New("session expired, log in again")

// CredentialSource is the token storage the transport reads and writes.
// internal/auth provides the file-backed implementation.
type CredentialSource interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetTokens(access, refresh string) error
	Clear() error
}

// refreshCall is one in-flight token refresh. Concurrent 401s share a single
// call: later arrivals wait on done instead of issuing their own refresh.
type refreshCall struct {
	done chan struct{}
	err  error
}

// AuthTransport is an http.RoundTripper that attaches the bearer token and
// transparently recovers from expired access tokens: a 401 triggers one
// refresh (single-flight across goroutines) and one replay of the original
// request. A 401 on the replayed request, or a failed refresh, clears the
// stored tokens and surfaces ErrSessionExpired.
type AuthTransport struct {
	Base       http.RoundTripper
	Creds      CredentialSource
	RefreshURL string

	mu       sync.Mutex
	inflight *refreshCall
}

// NewAuthTransport creates an AuthTransport refreshing against refreshURL
// (the full token-refresh endpoint URL).
func NewAuthTransport(base http.RoundTripper, creds CredentialSource, refreshURL string) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{Base: base, Creds: creds, RefreshURL: refreshURL}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	access, err := t.Creds.AccessToken()
	if err != nil {
		return nil, fmt.Errorf("reading access token: %w", err)
	}

	resp, err := t.send(req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || access == "" {
		return resp, nil
	}
	// Drain before closing so the connection can be reused for the replay.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	access, err = t.refresh()
	if err != nil {
		t.Creds.Clear()
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	resp, err = t.send(req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		t.Creds.Clear()
		return nil, ErrSessionExpired
	}
	return resp, nil
}

// send issues a clone of req with the given bearer token. The clone rewinds
// the body via GetBody so the request can be replayed after a refresh.
func (t *AuthTransport) send(req *http.Request, access string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewinding request body: %w", err)
		}
		clone.Body = body
	}
	if access != "" {
		clone.Header.Set("Authorization", "Bearer "+access)
	}
	return t.Base.RoundTrip(clone)
}

// refresh exchanges the stored refresh token for a new access token. Only one
// refresh runs at a time; concurrent callers queue up on the in-flight call
// and share its outcome.
func (t *AuthTransport) refresh() (string, error) {
	t.mu.Lock()
	if call := t.inflight; call != nil {
		t.mu.Unlock()
		<-call.done
		if call.err != nil {
			return "", call.err
		}
		return t.Creds.AccessToken()
	}
	call := &refreshCall{done: make(chan struct{})}
	t.inflight = call
	t.mu.Unlock()

	call.err = t.doRefresh()
	close(call.done)

	t.mu.Lock()
	t.inflight = nil
	t.mu.Unlock()

	if call.err != nil {
		return "", call.err
	}
	return t.Creds.AccessToken()
}

func (t *AuthTransport) doRefresh() error {
	refresh, err := t.Creds.RefreshToken()
	if err != nil {
		return fmt.Errorf("reading refresh token: %w", err)
	}
	if refresh == "" {
		return errors.New("no refresh token stored")
	}

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return fmt.Errorf("encoding refresh request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, t.RefreshURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with HTTP %d", resp.StatusCode)
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}
	if tokens.Access == "" {
		return errors.New("refresh response carried no access token")
	}
	// Token rotation is optional server-side; keep the old refresh token
	// unless a new one arrived.
	if tokens.Refresh == "" {
		tokens.Refresh = refresh
	}
	if err := t.Creds.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return fmt.Errorf("storing refreshed tokens: %w", err)
	}
	return nil
}
