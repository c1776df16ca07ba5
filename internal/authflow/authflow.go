// Package authflow orchestrates one device grant authentication attempt end
// to end: device code request, user prompt, token polling, introspection and
// identity validation.
package authflow

import (
	"context"
	"fmt"

	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
	"github.com/wrale/oauth2-device-auth/internal/identity"
)

// NotifyFunc receives the device code response so the caller can render the
// verification prompt and, if it wishes, block until the user acknowledges
// it. Polling starts after it returns.
type NotifyFunc func(*devicegrant.DeviceCodeResponse) error

// Authenticator ties the grant engine and the identity validator into a
// single authentication decision for the calling adapter.
type Authenticator struct {
	client    *devicegrant.Client
	validator *identity.Validator
	log       devicegrant.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger injects the audit logger. Default is silent.
func WithLogger(l devicegrant.Logger) Option {
	return func(a *Authenticator) { a.log = l }
}

// New builds an authenticator around a configured client and validator.
func New(client *devicegrant.Client, validator *identity.Validator, opts ...Option) *Authenticator {
	a := &Authenticator{
		client:    client,
		validator: validator,
		log:       nopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Login runs the full attempt for the given local account. On success the
// result carries the resolved remote username for the audit trail. Every
// failure surfaces as a typed error; none are retried here.
func (a *Authenticator) Login(ctx context.Context, localUser string, notify NotifyFunc) (identity.Result, error) {
	a.log.Infof("trying to authenticate user: %s", localUser)

	dc, err := a.client.RequestDeviceCode(ctx)
	if err != nil {
		return identity.Result{}, fmt.Errorf("requesting device code: %w", err)
	}

	if notify != nil {
		if err := notify(dc); err != nil {
			return identity.Result{}, fmt.Errorf("rendering user prompt: %w", err)
		}
	}

	token, err := a.client.PollToken(ctx, dc)
	if err != nil {
		a.log.Warnf("login failed for user %s: %v", localUser, err)
		return identity.Result{}, fmt.Errorf("waiting for token: %w", err)
	}

	info, err := a.client.Introspect(ctx, token.AccessToken)
	if err != nil {
		a.log.Warnf("login failed for user %s: %v", localUser, err)
		return identity.Result{}, fmt.Errorf("introspecting token: %w", err)
	}

	res, err := a.validator.Validate(info, localUser)
	if err != nil {
		a.log.Warnf("login failed for user %s: %v", localUser, err)
		return res, err
	}

	a.log.Infof("authentication successful for remote user: %s -> local user: %s", res.RemoteUsername, localUser)
	return res, nil
}
