//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package securemem

import (
	"golang.org/x/sys/unix"
)

type systemLocker struct{}

func (systemLocker) Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Mlock(b); err != nil {
		return err
	}
	// Core dump exclusion is advisory.
	_ = excludeFromDump(b)
	return nil
}

func (systemLocker) Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	// Pages go back to the Go heap, so restore them to core dumps.
	_ = includeInDump(b)
	return unix.Munlock(b)
}

func (systemLocker) Zero(b []byte) {
	Wipe(b)
}
