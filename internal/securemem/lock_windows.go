package securemem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

type systemLocker struct{}

func (systemLocker) Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return windows.VirtualLock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}

func (systemLocker) Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return windows.VirtualUnlock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}

func (systemLocker) Zero(b []byte) {
	Wipe(b)
}
