//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package securemem

// systemLocker on hosts without a locking primitive (js/wasm, wasip1, plan9)
// degrades to zero-only.
type systemLocker struct{}

func (systemLocker) Lock([]byte) error   { return ErrLockUnsupported }
func (systemLocker) Unlock([]byte) error { return ErrLockUnsupported }
func (systemLocker) Zero(b []byte)       { Wipe(b) }
