package devicegrant

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultInterval is the poll spacing used when the server omits the
	// interval field, per RFC 8628 section 3.2.
	DefaultInterval = 5 * time.Second

	// SlowDownIncrement is added to the effective interval on every
	// slow_down response. RFC 8628 section 3.5 requires an increase of at
	// least 5 seconds.
	SlowDownIncrement = 5 * time.Second

	// DefaultPollTimeout bounds an authorization attempt when the caller
	// does not configure one.
	DefaultPollTimeout = 5 * time.Minute

	// defaultHTTPTimeout bounds each individual request to the server.
	defaultHTTPTimeout = 10 * time.Second

	// grantType is the device grant type identifier per RFC 8628 section 3.4.
	grantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// Config holds the statically configured endpoints, client credentials and
// grant parameters for authentication attempts. Validated by New and
// immutable thereafter; there is no endpoint discovery.
type Config struct {
	// DeviceAuthURL is the device authorization endpoint (RFC 8628 section 3.1).
	DeviceAuthURL string

	// TokenURL is the token endpoint polled for issuance (RFC 8628 section 3.4).
	TokenURL string

	// IntrospectURL is the token introspection endpoint (RFC 7662 section 2).
	IntrospectURL string

	// ClientID identifies this client to the authorization server.
	ClientID string

	// ClientSecret is sent alongside the client ID when non-empty.
	ClientSecret string

	// Scope is the space-delimited scope string requested with the device code.
	Scope string

	// PollTimeout caps the total wall-clock time spent waiting for the user
	// to authorize. Zero means DefaultPollTimeout.
	PollTimeout time.Duration
}

func (c *Config) validate() error {
	endpoints := []struct {
		name string
		raw  string
	}{
		{"device authorization URL", c.DeviceAuthURL},
		{"token URL", c.TokenURL},
		{"introspection URL", c.IntrospectURL},
	}
	for _, ep := range endpoints {
		u, err := url.Parse(ep.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", ep.name, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid %s: %q is not an absolute URL", ep.name, ep.raw)
		}
	}
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	return nil
}

// Client performs the device authorization grant against a single statically
// configured authorization server. A Client carries no per-attempt state, so
// concurrent authentication attempts may share one instance; each attempt
// owns its own device code, interval and deadline.
type Client struct {
	cfg               Config
	http              *http.Client
	clock             Clock
	log               Logger
	slowDownIncrement time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. to configure TLS or
// a different per-request timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock injects the time source used by the polling loop.
func WithClock(clk Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithLogger injects the logging capability for structured engine events.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithSlowDownIncrement overrides the interval increase applied on every
// slow_down response. Values below SlowDownIncrement violate RFC 8628.
func WithSlowDownIncrement(d time.Duration) Option {
	return func(c *Client) { c.slowDownIncrement = d }
}

// New builds a client from a validated configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}

	c := &Client{
		cfg:               cfg,
		http:              &http.Client{Timeout: defaultHTTPTimeout},
		clock:             systemClock{},
		log:               nopLogger{},
		slowDownIncrement: SlowDownIncrement,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}
