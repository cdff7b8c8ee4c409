package auth

import "errors"

// Classified failures for the authentication core. Handlers map these to
// HTTP statuses; the messages deliberately leak nothing beyond the class.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so responses cannot be used for username enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled is returned when the account exists but is inactive.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrInvalidToken covers malformed, expired and badly signed tokens
	// without distinguishing between them.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSession means the refresh token has no active stored record:
	// never issued, already rotated, or revoked by logout.
	ErrInvalidSession = errors.New("invalid session")

	// ErrNoActiveSession is returned by logout when the user has no active
	// refresh tokens to revoke.
	ErrNoActiveSession = errors.New("no active session")

	// ErrKeyUnavailable signals unreadable signing key material. This is an
	// infrastructure fault, not a client error.
	ErrKeyUnavailable = errors.New("signing key unavailable")

	// Registration conflicts.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already registered")
)

// IsAuthError reports whether err belongs to the authentication failure
// taxonomy (as opposed to infrastructure faults like ErrKeyUnavailable).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountDisabled) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidSession) ||
		errors.Is(err, ErrNoActiveSession)
}
