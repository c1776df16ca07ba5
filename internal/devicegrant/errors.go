package devicegrant

import (
	"errors"
	"fmt"
)

// Token endpoint error codes per RFC 8628 section 3.5.
const (
	codeAuthorizationPending = "authorization_pending"
	codeSlowDown             = "slow_down"
	codeExpiredToken         = "expired_token"
	codeAccessDenied         = "access_denied"
)

// ErrPollTimeout indicates the caller-supplied timeout elapsed before the
// user completed authorization. It is distinct from expired_token, which is
// the server reporting that the device code itself has lapsed.
var ErrPollTimeout = errors.New("timed out waiting for user authorization")

// TransportError is a connectivity or HTTP-layer failure: the request never
// completed, or a success response could not be decoded. It indicates
// infrastructure trouble rather than a user or protocol decision.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a well-formed OAuth error response. The message ends with
// the server-supplied detail so operator logs show exactly what the server
// reported.
type ProtocolError struct {
	Code        string
	Description string
}

func (e *ProtocolError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("server returned error response: %s", e.Code)
	}
	return fmt.Sprintf("server returned error response: %s: %s", e.Code, e.Description)
}

// OtherError is a non-2xx response whose body was absent or not a parseable
// OAuth error. Kept separate from TransportError because the request itself
// completed; the server just answered outside the protocol.
type OtherError struct {
	Status int
	Detail string
}

func (e *OtherError) Error() string {
	return fmt.Sprintf("other error: %s (status %d)", e.Detail, e.Status)
}

// IsAuthorizationPending reports whether err is the authorization_pending
// protocol error, the expected response while the user has not yet finished
// authenticating in the browser.
func IsAuthorizationPending(err error) bool {
	return isProtocolCode(err, codeAuthorizationPending)
}

// IsSlowDown reports whether err is the slow_down protocol error, the
// server-mandated instruction to increase the polling interval.
func IsSlowDown(err error) bool {
	return isProtocolCode(err, codeSlowDown)
}

// IsExpiredToken reports whether err is the expired_token protocol error.
func IsExpiredToken(err error) bool {
	return isProtocolCode(err, codeExpiredToken)
}

// IsAccessDenied reports whether err is the access_denied protocol error,
// meaning the remote user explicitly rejected the request.
func IsAccessDenied(err error) bool {
	return isProtocolCode(err, codeAccessDenied)
}

func isProtocolCode(err error, code string) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Code == code
}
