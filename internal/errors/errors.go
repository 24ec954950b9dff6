package errors

import "github.com/pkg/errors"

var (
	// configuration errors
	ErrUnknownSite         = errors.New("unknown site")
	ErrUnknownGenerator    = errors.New("unknown password generator")
	ErrUnknownMailBackend  = errors.New("unknown mail backend")
	ErrInvalidRetryPolicy  = errors.New("retry policy needs at least one try")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidPasswordSize = errors.New("password length must be positive")

	// credential errors
	ErrNoToken       = errors.New("no stored oauth token, run `fresh auth` first")
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrAuthDenied    = errors.New("oauth authorization denied")
)
