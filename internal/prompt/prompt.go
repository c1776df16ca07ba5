// Package prompt renders the user-facing verification instructions for a
// device authorization attempt. Output never contains the device code; only
// the user code and verification URI are meant for human eyes.
package prompt

import (
	"fmt"
	"strings"

	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
)

// DefaultMessage is the acknowledgement line shown after the instructions.
const DefaultMessage = `Press "ENTER" after successful authentication: `

// UserPrompt renders the verification instructions for one device code.
type UserPrompt struct {
	dc      *devicegrant.DeviceCodeResponse
	message string
	qr      bool
}

// Option configures a UserPrompt.
type Option func(*UserPrompt)

// WithQR enables a terminal QR code of the verification URI per RFC 8628
// section 3.3.1.
func WithQR() Option {
	return func(p *UserPrompt) { p.qr = true }
}

// WithMessage replaces the acknowledgement line.
func WithMessage(msg string) Option {
	return func(p *UserPrompt) { p.message = msg }
}

// New builds a prompt for the given device code response.
func New(dc *devicegrant.DeviceCodeResponse, opts ...Option) *UserPrompt {
	p := &UserPrompt{dc: dc, message: DefaultMessage}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// target is the URI transmitted non-textually: the complete URI when the
// server provides one, otherwise the base verification URI.
func (p *UserPrompt) target() string {
	if p.dc.VerificationURIComplete != "" {
		return p.dc.VerificationURIComplete
	}
	return p.dc.VerificationURI
}

// Render returns the complete prompt text. When QR generation fails (e.g.
// the URI exceeds the symbol capacity) the textual instructions still render
// on their own.
func (p *UserPrompt) Render() string {
	var b strings.Builder

	if p.qr {
		if qr, err := renderQRCode(p.target()); err == nil {
			b.WriteString(qr)
			b.WriteByte('\n')
		}
	}

	if p.dc.VerificationURIComplete != "" {
		fmt.Fprintf(&b, "Open: %s\n", p.dc.VerificationURIComplete)
	} else {
		fmt.Fprintf(&b, "Open: %s\n", p.dc.VerificationURI)
		fmt.Fprintf(&b, "Enter code: %s\n", p.dc.UserCode)
	}
	b.WriteString(p.message)

	return b.String()
}
