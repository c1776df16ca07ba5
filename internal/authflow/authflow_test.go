package authflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
	"github.com/wrale/oauth2-device-auth/internal/identity"
)

type instantClock struct {
	now time.Time
}

func (c *instantClock) Now() time.Time { return c.now }

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

// fakeAuthServer simulates the three authorization server endpoints for one
// scripted attempt.
type fakeAuthServer struct {
	mu           sync.Mutex
	tokenCalls   int
	pendingPolls int
	introspect   string
	denyToken    string
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/device/code", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"device_code":"dc-1","user_code":"WDJB-MJHT",`+
			`"verification_uri":"https://as.example.com/device","expires_in":1800,"interval":5}`)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		pending := f.tokenCalls <= f.pendingPolls
		deny := f.denyToken
		f.mu.Unlock()

		switch {
		case deny != "":
			writeJSON(w, http.StatusForbidden, `{"error":"`+deny+`"}`)
		case pending:
			writeJSON(w, http.StatusBadRequest, `{"error":"authorization_pending"}`)
		default:
			writeJSON(w, http.StatusOK, `{"access_token":"at-1","token_type":"bearer","expires_in":3600}`)
		}
	})
	mux.HandleFunc("/introspect", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.introspect)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		return
	}
}

func newTestAuthenticator(t *testing.T, fake *fakeAuthServer, opts ...identity.ValidatorOption) *Authenticator {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := devicegrant.New(devicegrant.Config{
		DeviceAuthURL: srv.URL + "/device/code",
		TokenURL:      srv.URL + "/token",
		IntrospectURL: srv.URL + "/introspect",
		ClientID:      "login-module",
	}, devicegrant.WithClock(&instantClock{now: time.Now()}), devicegrant.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return New(client, identity.NewValidator(opts...))
}

func TestLoginSuccess(t *testing.T) {
	fake := &fakeAuthServer{
		pendingPolls: 2,
		introspect:   `{"active":true,"username":"alice"}`,
	}
	auth := newTestAuthenticator(t, fake)

	var prompted *devicegrant.DeviceCodeResponse
	res, err := auth.Login(context.Background(), "alice", func(dc *devicegrant.DeviceCodeResponse) error {
		prompted = dc
		return nil
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.OK {
		t.Error("expected successful result")
	}
	if res.RemoteUsername != "alice" {
		t.Errorf("expected remote username alice, got %q", res.RemoteUsername)
	}
	if prompted == nil || prompted.UserCode != "WDJB-MJHT" {
		t.Errorf("prompt callback did not receive the device code response: %+v", prompted)
	}
}

func TestLoginUserMismatch(t *testing.T) {
	fake := &fakeAuthServer{introspect: `{"active":true,"username":"bob"}`}
	auth := newTestAuthenticator(t, fake)

	res, err := auth.Login(context.Background(), "alice", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if res.OK {
		t.Error("result must fail closed on identity mismatch")
	}

	var verr *identity.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestLoginRevokedToken(t *testing.T) {
	// Token issuance succeeds but introspection reports inactive: the
	// attempt must fail, never silently pass.
	fake := &fakeAuthServer{introspect: `{"active":false}`}
	auth := newTestAuthenticator(t, fake)

	res, err := auth.Login(context.Background(), "alice", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if res.OK {
		t.Error("result must fail closed on inactive token")
	}
}

func TestLoginAccessDenied(t *testing.T) {
	fake := &fakeAuthServer{denyToken: "access_denied", introspect: `{"active":true}`}
	auth := newTestAuthenticator(t, fake)

	_, err := auth.Login(context.Background(), "alice", nil)
	if !devicegrant.IsAccessDenied(err) {
		t.Fatalf("expected access_denied, got %v", err)
	}
}

func TestLoginPromptFailureAborts(t *testing.T) {
	fake := &fakeAuthServer{introspect: `{"active":true,"username":"alice"}`}
	auth := newTestAuthenticator(t, fake)

	boom := errors.New("terminal went away")
	_, err := auth.Login(context.Background(), "alice", func(*devicegrant.DeviceCodeResponse) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected prompt error, got %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.tokenCalls != 0 {
		t.Errorf("polling must not start after a failed prompt, got %d calls", fake.tokenCalls)
	}
}
