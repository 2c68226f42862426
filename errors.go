package argon2

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-argon2/internal/securemem"
)

// Sentinels wrapped by ConfigError, one per rejected field.
var (
	ErrInvalidType     = errors.New("argon2: unknown type")
	ErrInvalidVersion  = errors.New("argon2: unsupported version")
	ErrLanes           = errors.New("argon2: lane count out of range")
	ErrThreads         = errors.New("argon2: thread count out of range")
	ErrTime            = errors.New("argon2: time cost too small")
	ErrMemory          = errors.New("argon2: memory cost too small")
	ErrSaltTooShort    = errors.New("argon2: salt too short")
	ErrTagTooShort     = errors.New("argon2: tag too short")
	ErrPasswordTooLong = errors.New("argon2: password too long")
	ErrSaltTooLong     = errors.New("argon2: salt too long")
	ErrSecretTooLong   = errors.New("argon2: secret too long")
	ErrDataTooLong     = errors.New("argon2: associated data too long")
)

// ErrMismatchedHashAndPassword is returned by Hasher.Compare when the
// password does not match the encoded hash.
var ErrMismatchedHashAndPassword = errors.New("argon2: hash is not the hash of the given password")

// ConfigError reports a parameter rejected before any memory was allocated.
type ConfigError struct {
	Field string
	Err   error
	Value uint64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v (%s=%d)", e.Err, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DecodeError reports a malformed encoded hash.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "argon2: invalid encoded hash: " + e.Reason + ": " + e.Err.Error()
	}
	return "argon2: invalid encoded hash: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InternalError reports a state that validation should have made
// unreachable. It always indicates a bug.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "argon2: internal error: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

type (
	// AllocationError reports that the memory matrix could not be allocated.
	AllocationError = securemem.AllocationError

	// LockError reports that the memory matrix could not be locked under
	// PolicyEnforce.
	LockError = securemem.LockError
)
