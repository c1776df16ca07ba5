// Package identity decides whether an introspected remote identity is
// authorized to log in as a given local account.
package identity

import (
	"fmt"
	"strings"

	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
)

// Matcher is the binding rule between a remote username claim and the local
// account under authentication. Replacing it never requires touching the
// polling engine.
type Matcher interface {
	Match(remote, local string) bool
}

// ExactMatcher is the baseline rule: the remote username must equal the
// local account name.
type ExactMatcher struct{}

func (ExactMatcher) Match(remote, local string) bool { return remote == local }

// SuffixMatcher strips a domain suffix from the remote username before
// comparing, so "alice@example.com" binds to local account "alice" when the
// suffix is "@example.com".
type SuffixMatcher struct {
	Suffix string
}

func (m SuffixMatcher) Match(remote, local string) bool {
	return strings.TrimSuffix(remote, m.Suffix) == local
}

// AliasMatcher maps remote usernames to the local accounts each may use.
// Remote users absent from the map match nothing.
type AliasMatcher map[string][]string

func (m AliasMatcher) Match(remote, local string) bool {
	for _, allowed := range m[remote] {
		if allowed == local {
			return true
		}
	}
	return false
}

// Result carries the authentication decision plus the resolved remote
// username for the caller's audit log line. RemoteUsername may be set even
// on failure, when a claim was present but did not bind.
type Result struct {
	OK             bool
	RemoteUsername string
}

// ValidationError reports why an introspected token failed validation. It is
// operator-facing detail; end users only ever see a generic failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "token validation failed: " + e.Reason
}

// Validator applies the active check, claim presence check, optional
// audience check and the configured binding rule, in that order. Every
// failure is a deterministic Result, never a panic.
type Validator struct {
	matcher  Matcher
	audience string
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithMatcher replaces the baseline equality binding rule.
func WithMatcher(m Matcher) ValidatorOption {
	return func(v *Validator) { v.matcher = m }
}

// WithRequiredAudience requires the introspected aud claim to contain the
// given audience.
func WithRequiredAudience(aud string) ValidatorOption {
	return func(v *Validator) { v.audience = aud }
}

// NewValidator builds a validator with ExactMatcher as the default rule.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{matcher: ExactMatcher{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate decides whether the introspected token authorizes local. An
// inactive token, a missing username/subject claim, a failed audience check
// or a non-binding claim each yield a failed Result and a ValidationError.
func (v *Validator) Validate(info *devicegrant.IntrospectionResponse, local string) (Result, error) {
	if info == nil || !info.Active {
		return Result{}, &ValidationError{Reason: "token is not active"}
	}

	remote, ok := info.UsernameClaim()
	if !ok {
		return Result{}, &ValidationError{Reason: "no username or subject claim"}
	}

	if v.audience != "" && !info.Audience.Contains(v.audience) {
		return Result{RemoteUsername: remote}, &ValidationError{
			Reason: fmt.Sprintf("token audience does not include %q", v.audience),
		}
	}

	if !v.matcher.Match(remote, local) {
		return Result{RemoteUsername: remote}, &ValidationError{
			Reason: fmt.Sprintf("remote user %q is not authorized for local user %q", remote, local),
		}
	}

	return Result{OK: true, RemoteUsername: remote}, nil
}
