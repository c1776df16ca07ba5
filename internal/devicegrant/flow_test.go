package devicegrant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRequestDeviceCode(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *DeviceCodeResponse
		wantErr func(*testing.T, error)
	}{
		{
			name:   "complete response",
			status: http.StatusOK,
			body: `{"device_code":"dc-1","user_code":"WDJB-MJHT",` +
				`"verification_uri":"https://as.example.com/device",` +
				`"verification_uri_complete":"https://as.example.com/device?user_code=WDJB-MJHT",` +
				`"expires_in":1800,"interval":10}`,
			want: &DeviceCodeResponse{
				DeviceCode:              "dc-1",
				UserCode:                "WDJB-MJHT",
				VerificationURI:         "https://as.example.com/device",
				VerificationURIComplete: "https://as.example.com/device?user_code=WDJB-MJHT",
				ExpiresIn:               1800,
				Interval:                10,
			},
		},
		{
			name:   "interval omitted",
			status: http.StatusOK,
			body: `{"device_code":"dc-2","user_code":"BDWP-HQPK",` +
				`"verification_uri":"https://as.example.com/device","expires_in":900}`,
			want: &DeviceCodeResponse{
				DeviceCode:      "dc-2",
				UserCode:        "BDWP-HQPK",
				VerificationURI: "https://as.example.com/device",
				ExpiresIn:       900,
			},
		},
		{
			name:   "missing required fields",
			status: http.StatusOK,
			body:   `{"user_code":"BDWP-HQPK"}`,
			wantErr: func(t *testing.T, err error) {
				var te *TransportError
				if !errors.As(err, &te) {
					t.Errorf("expected TransportError, got %v", err)
				}
			},
		},
		{
			name:   "oauth error response",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid_client","error_description":"unknown client"}`,
			wantErr: func(t *testing.T, err error) {
				var pe *ProtocolError
				if !errors.As(err, &pe) || pe.Code != "invalid_client" {
					t.Errorf("expected ProtocolError{invalid_client}, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := &scriptedEndpoint{responses: []scriptedResponse{{tt.status, tt.body}}}
			client, _ := newTestClient(t, ep, time.Minute)

			got, err := client.RequestDeviceCode(context.Background())
			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				tt.wantErr(t, err)
				return
			}
			if err != nil {
				t.Fatalf("RequestDeviceCode: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("device code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestDeviceCodeSendsClientID(t *testing.T) {
	var gotClientID, gotScope string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotClientID = r.PostFormValue("client_id")
		gotScope = r.PostFormValue("scope")
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"device_code":"dc","user_code":"UC","verification_uri":"https://as.example.com/device","expires_in":600}`)); err != nil {
			return
		}
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{
		DeviceAuthURL: srv.URL,
		TokenURL:      srv.URL,
		IntrospectURL: srv.URL,
		ClientID:      "login-module",
		Scope:         "openid profile",
	}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	if _, err := client.RequestDeviceCode(context.Background()); err != nil {
		t.Fatalf("RequestDeviceCode: %v", err)
	}
	if gotClientID != "login-module" {
		t.Errorf("expected client_id login-module, got %q", gotClientID)
	}
	if gotScope != "openid profile" {
		t.Errorf("expected scope %q, got %q", "openid profile", gotScope)
	}
}

func TestIntrospect(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *IntrospectionResponse
	}{
		{
			name: "active token with username",
			body: `{"active":true,"username":"alice","sub":"1234","scope":"openid","aud":["login-module"]}`,
			want: &IntrospectionResponse{
				Active:   true,
				Username: "alice",
				Subject:  "1234",
				Scope:    "openid",
				Audience: Audience{"login-module"},
			},
		},
		{
			name: "single string audience",
			body: `{"active":true,"sub":"1234","aud":"login-module"}`,
			want: &IntrospectionResponse{
				Active:   true,
				Subject:  "1234",
				Audience: Audience{"login-module"},
			},
		},
		{
			// Revocation between issuance and introspection shows up as
			// active=false with no claims; decoding must still succeed so
			// the validator can fail the attempt deterministically.
			name: "inactive token",
			body: `{"active":false}`,
			want: &IntrospectionResponse{Active: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := &scriptedEndpoint{responses: []scriptedResponse{{http.StatusOK, tt.body}}}
			client, _ := newTestClient(t, ep, time.Minute)

			got, err := client.Introspect(context.Background(), "some-access-token")
			if err != nil {
				t.Fatalf("Introspect: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("introspection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntrospectTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection refused from here on

	client, err := New(Config{
		DeviceAuthURL: url,
		TokenURL:      url,
		IntrospectURL: url,
		ClientID:      "test-client",
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	_, err = client.Introspect(context.Background(), "some-access-token")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
