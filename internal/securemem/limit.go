package securemem

import (
	"sync"

	"github.com/shirou/gopsutil/v4/mem"
)

var (
	hostOnce  sync.Once
	hostLimit uint64
)

// DefaultMaxBytes returns the default single-allocation limit: the host's
// physical memory, or the address space when that cannot be determined.
func DefaultMaxBytes() uint64 {
	hostOnce.Do(func() {
		hostLimit = uint64(maxInt)
		vm, err := mem.VirtualMemory()
		if err == nil && vm.Total > 0 && vm.Total < hostLimit {
			hostLimit = vm.Total
		}
	})
	return hostLimit
}
