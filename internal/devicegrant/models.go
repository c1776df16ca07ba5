// Package devicegrant implements the client side of the OAuth 2.0 Device
// Authorization Grant per RFC 8628: requesting a device code, polling the
// token endpoint under the server-dictated interval and back-off rules, and
// introspecting the issued access token.
package devicegrant

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// DeviceCodeResponse is the device authorization response per RFC 8628
// section 3.2. It is immutable once decoded and is consumed exactly once by
// the polling loop: after the poll ends, the device code must not be reused.
type DeviceCodeResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval,omitempty"`
}

// PollInterval returns the server-advertised poll interval, falling back to
// DefaultInterval when the server omits the field per RFC 8628 section 3.2.
func (d *DeviceCodeResponse) PollInterval() time.Duration {
	if d.Interval <= 0 {
		return DefaultInterval
	}
	return time.Duration(d.Interval) * time.Second
}

// Expiry returns the remaining lifetime of the device code, or zero when the
// server did not report one.
func (d *DeviceCodeResponse) Expiry() time.Duration {
	if d.ExpiresIn <= 0 {
		return 0
	}
	return time.Duration(d.ExpiresIn) * time.Second
}

// String implements fmt.Stringer with the device code redacted. The device
// code is the server-held correlation secret; it must never reach a log sink
// regardless of caller discipline.
func (d *DeviceCodeResponse) String() string {
	return fmt.Sprintf("DeviceCodeResponse{device_code:REDACTED user_code:%s verification_uri:%s expires_in:%d interval:%d}",
		d.UserCode, d.VerificationURI, d.ExpiresIn, d.Interval)
}

// TokenResponse is the token endpoint success payload per RFC 8628 section
// 3.5 and RFC 6749 section 5.1. Both tokens are secrets: never persisted,
// never logged unredacted.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// String implements fmt.Stringer with both tokens redacted.
func (t *TokenResponse) String() string {
	return fmt.Sprintf("TokenResponse{access_token:REDACTED refresh_token:REDACTED token_type:%s expires_in:%d scope:%s}",
		t.TokenType, t.ExpiresIn, t.Scope)
}

// OAuth2Token converts the response into an oauth2.Token so callers can
// drive standard OAuth2 tooling with the issued token.
func (t *TokenResponse) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// TokenSource wraps the token in a static token source. No renewal is
// performed; the source is only valid for the lifetime of the access token.
func (t *TokenResponse) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(t.OAuth2Token())
}

// Audience holds the aud claim, which servers return either as a single
// string or as an array.
type Audience []string

// UnmarshalJSON accepts both encodings of aud.
func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = Audience(many)
	return nil
}

// Contains reports whether the audience list includes v.
func (a Audience) Contains(v string) bool {
	for _, aud := range a {
		if aud == v {
			return true
		}
	}
	return false
}

// IntrospectionResponse is the introspection payload per RFC 7662 section
// 2.2. It is the source of truth for whether the access token is currently
// valid server-side: a token can be well-formed yet already revoked.
type IntrospectionResponse struct {
	Active    bool     `json:"active"`
	Username  string   `json:"username,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Scope     string   `json:"scope,omitempty"`
	ClientID  string   `json:"client_id,omitempty"`
	Audience  Audience `json:"aud,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
}

// UsernameClaim returns the remote username used for identity binding: the
// username claim when present, otherwise the subject. The boolean reports
// whether any recognizable claim was present; callers must check it rather
// than assume a claim exists.
func (r *IntrospectionResponse) UsernameClaim() (string, bool) {
	if r.Username != "" {
		return r.Username, true
	}
	if r.Subject != "" {
		return r.Subject, true
	}
	return "", false
}
