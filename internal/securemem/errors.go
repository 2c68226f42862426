package securemem

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ErrLockUnsupported is returned by lockers on platforms without a memory
// locking primitive.
var ErrLockUnsupported = errors.New("securemem: memory locking not supported on this platform")

// ErrUnknownPolicy is returned for a Policy outside the defined values.
var ErrUnknownPolicy = errors.New("securemem: unknown policy")

// AllocationError reports that a buffer of the requested size cannot be
// provided. Callers may retry with a smaller request.
type AllocationError struct {
	Requested uint64
	Limit     uint64
	Reason    string
}

func (e *AllocationError) Error() string {
	if e.Requested == 0 {
		return "securemem: cannot allocate: " + e.Reason
	}
	return fmt.Sprintf("securemem: cannot allocate %s (limit %s): %s",
		humanize.IBytes(e.Requested), humanize.IBytes(e.Limit), e.Reason)
}

// LockError reports that the operating system refused to pin or unpin a
// region under PolicyEnforce.
type LockError struct {
	Size int

	// Unlock is set when releasing the region failed rather than pinning it.
	Unlock bool

	Err error
}

func (e *LockError) Error() string {
	op := "lock"
	if e.Unlock {
		op = "unlock"
	}
	return fmt.Sprintf("securemem: cannot %s %s: %v", op, humanize.IBytes(uint64(e.Size)), e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}
