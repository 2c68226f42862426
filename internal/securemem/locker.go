package securemem

import (
	"runtime"
)

// Locker is the per-platform capability used by Buffer.
type Locker interface {
	// Lock pins b into physical memory.
	Lock(b []byte) error

	// Unlock reverses Lock.
	Unlock(b []byte) error

	// Zero overwrites b with zeros.
	Zero(b []byte)
}

// SystemLocker returns the locker for the running platform.
func SystemLocker() Locker {
	return systemLocker{}
}

// NopLocker never touches the OS. Lock and Unlock always succeed; Zero
// still clears memory. It is intended for deterministic tests.
type NopLocker struct{}

func (NopLocker) Lock([]byte) error   { return nil }
func (NopLocker) Unlock([]byte) error { return nil }
func (NopLocker) Zero(b []byte)       { Wipe(b) }

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
