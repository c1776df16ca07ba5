package devicegrant

import (
	"context"
	"errors"
	"net/url"
)

// RequestDeviceCode starts a device authorization attempt per RFC 8628
// section 3.1. Any transport or decode failure here is terminal for the
// attempt; the caller may start a fresh attempt if it chooses.
func (c *Client) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	form := url.Values{"client_id": {c.cfg.ClientID}}
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}
	if c.cfg.Scope != "" {
		form.Set("scope", c.cfg.Scope)
	}

	var dc DeviceCodeResponse
	if err := c.postForm(ctx, c.cfg.DeviceAuthURL, form, &dc); err != nil {
		return nil, err
	}
	if dc.DeviceCode == "" || dc.UserCode == "" || dc.VerificationURI == "" {
		return nil, &TransportError{Op: "decoding device code response", Err: errors.New("missing required fields")}
	}

	c.log.Debugf("device code response: %v", &dc)
	return &dc, nil
}

// PollToken polls the token endpoint per RFC 8628 section 3.4 until the user
// completes authorization, the server reports a terminal error, or the
// attempt deadline passes.
//
// The deadline is the configured poll timeout, capped by the device code's
// own expiry when that is shorter, and is checked before each sleep and each
// request. The effective interval starts at the server-advertised value and
// only grows: authorization_pending leaves it unchanged, slow_down adds the
// configured increment before the next sleep. Every other failure ends the
// attempt on first occurrence.
func (c *Client) PollToken(ctx context.Context, dc *DeviceCodeResponse) (*TokenResponse, error) {
	timeout := c.cfg.PollTimeout
	if exp := dc.Expiry(); exp > 0 && exp < timeout {
		timeout = exp
	}
	deadline := c.clock.Now().Add(timeout)
	interval := dc.PollInterval()

	form := url.Values{
		"grant_type":  {grantType},
		"device_code": {dc.DeviceCode},
		"client_id":   {c.cfg.ClientID},
	}
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}

	for {
		if !c.clock.Now().Before(deadline) {
			return nil, ErrPollTimeout
		}
		if err := c.clock.Sleep(ctx, interval); err != nil {
			return nil, err
		}
		if !c.clock.Now().Before(deadline) {
			return nil, ErrPollTimeout
		}

		var token TokenResponse
		err := c.postForm(ctx, c.cfg.TokenURL, form, &token)
		if err == nil {
			if token.AccessToken == "" {
				return nil, &TransportError{Op: "decoding token response", Err: errors.New("missing access_token")}
			}
			c.log.Debugf("token response: %v", &token)
			return &token, nil
		}

		switch {
		case IsAuthorizationPending(err):
			c.log.Debugf("authorization pending, next poll in %s", interval)
		case IsSlowDown(err):
			interval += c.slowDownIncrement
			c.log.Debugf("server requested slow down, interval now %s", interval)
		default:
			return nil, err
		}
	}
}

// Introspect queries the introspection endpoint per RFC 7662 for the current
// server-side state of the access token. Issuance alone proves nothing:
// revocation can occur between the token call and this one, so any failure
// here must be treated as an authentication failure by the caller.
func (c *Client) Introspect(ctx context.Context, accessToken string) (*IntrospectionResponse, error) {
	form := url.Values{
		"token":     {accessToken},
		"client_id": {c.cfg.ClientID},
	}
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}

	var info IntrospectionResponse
	if err := c.postForm(ctx, c.cfg.IntrospectURL, form, &info); err != nil {
		return nil, err
	}

	c.log.Debugf("introspection response: active=%t", info.Active)
	return &info, nil
}
