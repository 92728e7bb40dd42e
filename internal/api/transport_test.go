package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"edulite-cli/internal/api"
)

// memoryCreds is an in-memory CredentialSource.
type memoryCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (c *memoryCreds) AccessToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access, nil
}

func (c *memoryCreds) RefreshToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh, nil
}

func (c *memoryCreds) SetTokens(access, refresh string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = access
	c.refresh = refresh
	return nil
}

func (c *memoryCreds) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = ""
	c.refresh = ""
	c.cleared = true
	return nil
}

func (c *memoryCreds) wasCleared() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}

func TestAuthTransport(t *testing.T) {
	t.Parallel()

	t.Run("valid token passes through untouched", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("Authorization = %q", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		creds := &memoryCreds{access: "tok-1", refresh: "ref-1"}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		resp, err := client.Get(srv.URL + "/thing")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("401 refreshes once and replays the request with its body", func(t *testing.T) {
		t.Parallel()
		var refreshCalls, dataCalls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
			refreshCalls.Add(1)
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["refresh"] != "ref-1" {
				t.Errorf("refresh token = %q", req["refresh"])
			}
			json.NewEncoder(w).Encode(map[string]string{"access": "tok-2"})
		})
		mux.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
			dataCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"x":1}` {
				t.Errorf("replayed body = %q", body)
			}
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		creds := &memoryCreds{access: "tok-stale", refresh: "ref-1"}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		resp, err := client.Post(srv.URL+"/thing", "application/json", strings.NewReader(`{"x":1}`))
		if err != nil {
			t.Fatalf("Post() error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200 after refresh", resp.StatusCode)
		}
		if got := refreshCalls.Load(); got != 1 {
			t.Errorf("refresh called %d times, want 1", got)
		}
		if got := dataCalls.Load(); got != 2 {
			t.Errorf("data endpoint hit %d times, want original + one replay", got)
		}
		if access, _ := creds.AccessToken(); access != "tok-2" {
			t.Errorf("stored access = %q, want tok-2", access)
		}
	})

	t.Run("concurrent 401s share a single refresh", func(t *testing.T) {
		t.Parallel()
		var refreshCalls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"access": "tok-2"})
		})
		mux.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		creds := &memoryCreds{access: "tok-stale", refresh: "ref-1"}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := client.Get(srv.URL + "/thing")
				if err != nil {
					t.Errorf("Get() error = %v", err)
					return
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					t.Errorf("status = %d", resp.StatusCode)
				}
			}()
		}
		wg.Wait()

		// A request that raced past the refresh may still have carried the
		// stale token and triggered a second refresh; what matters is that
		// the 8 concurrent 401s did not fan out into 8 refreshes.
		if got := refreshCalls.Load(); got > 2 {
			t.Errorf("refresh called %d times, want single-flight", got)
		}
	})

	t.Run("failed refresh clears tokens and expires the session", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		mux.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		creds := &memoryCreds{access: "tok-stale", refresh: "ref-dead"}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		_, err := client.Get(srv.URL + "/thing")
		if !errors.Is(err, api.ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
		if !creds.wasCleared() {
			t.Error("tokens should be cleared on forced logout")
		}
	})

	t.Run("replay that still gets 401 expires the session", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"access": "tok-2"})
		})
		var dataCalls atomic.Int32
		mux.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
			dataCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		creds := &memoryCreds{access: "tok-stale", refresh: "ref-1"}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		_, err := client.Get(srv.URL + "/thing")
		if !errors.Is(err, api.ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
		if got := dataCalls.Load(); got != 2 {
			t.Errorf("data endpoint hit %d times, want exactly one replay", got)
		}
		if !creds.wasCleared() {
			t.Error("tokens should be cleared")
		}
	})

	t.Run("no stored token skips the refresh path", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Errorf("unexpected Authorization header")
			}
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		creds := &memoryCreds{}
		client := &http.Client{Transport: api.NewAuthTransport(nil, creds, srv.URL+"/token/refresh/")}

		resp, err := client.Get(srv.URL + "/thing")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want the raw 401", resp.StatusCode)
		}
	})
}

// roundTripFunc lets a test stand in for the base transport.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// drainRecorder records whether a response body was read to EOF and closed.
type drainRecorder struct {
	r      io.Reader
	mu     sync.Mutex
	sawEOF bool
	closed bool
}

func (b *drainRecorder) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		b.mu.Lock()
		b.sawEOF = true
		b.mu.Unlock()
	}
	return n, err
}

func (b *drainRecorder) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func TestAuthTransport_DrainsUnauthorizedBody(t *testing.T) {
	t.Parallel()

	body := &drainRecorder{r: strings.NewReader(`{"detail":"token expired"}`)}
	var dataCalls int
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/token/refresh/") {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`{"access":"tok-2"}`)),
			}, nil
		}
		dataCalls++
		if dataCalls == 1 {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       body,
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
		}, nil
	})

	creds := &memoryCreds{access: "tok-1", refresh: "ref-1"}
	transport := api.NewAuthTransport(base, creds, "https://edulite.example.org/api/token/refresh/")

	req, err := http.NewRequest(http.MethodGet, "https://edulite.example.org/api/thing", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if dataCalls != 2 {
		t.Errorf("data requests = %d, want 2", dataCalls)
	}
	if !body.sawEOF {
		t.Error("401 body was closed without being drained")
	}
	if !body.closed {
		t.Error("401 body was never closed")
	}
}
