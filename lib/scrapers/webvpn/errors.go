package webvpn

import (
	"errors"
	"fmt"
)

var ErrSessionInvalid = errors.New("webvpn: session is invalid")

type AuthErrorKind int

const (
	// TokenUnavailable means the gateway did not hand out a csrf token.
	TokenUnavailable AuthErrorKind = iota + 1
	// CredentialsRejected means the login api did not accept the identity
	// and secret.
	CredentialsRejected
	// Transport means a request could not be completed at all.
	Transport
	// ResourceUnavailable means login succeeded but the academic system
	// could not be entered.
	ResourceUnavailable
)

func (k AuthErrorKind) String() string {
	switch k {
	case TokenUnavailable:
		return "token unavailable"
	case CredentialsRejected:
		return "credentials rejected"
	case Transport:
		return "transport"
	case ResourceUnavailable:
		return "resource unavailable"
	}
	return fmt.Sprintf("AuthErrorKind(%d)", int(k))
}

type AuthError struct {
	Kind AuthErrorKind
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("webvpn: %s (%s)", e.Kind, e.Step)
	}
	return fmt.Sprintf("webvpn: %s (%s): %v", e.Kind, e.Step, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an *AuthError of the given kind.
func IsAuthError(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}
