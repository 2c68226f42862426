// Package securemem allocates page-aligned working buffers that are locked
// into RAM where the platform allows it and are always zeroed on release.
//
// Typical use pairs Acquire with a deferred Release, or uses With, which
// releases on every exit path including panics:
//
//	err := securemem.With[Block](n, securemem.Options{}, func(blocks []Block) error {
//	    // fill blocks
//	    return nil
//	})
package securemem

import (
	"fmt"
	"math/bits"
	"os"
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/go-argon2/internal/trace"
)

// Policy controls how Acquire treats memory locking.
type Policy int

const (
	// PolicyBestEffort attempts to lock and silently continues unlocked on
	// failure. It is the zero value.
	PolicyBestEffort Policy = iota

	// PolicyNone never attempts to lock.
	PolicyNone

	// PolicyEnforce fails the allocation when the memory cannot be locked.
	PolicyEnforce
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyBestEffort:
		return "best-effort"
	case PolicyNone:
		return "none"
	case PolicyEnforce:
		return "enforce"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Valid reports whether p is one of the defined policies.
func (p Policy) Valid() bool {
	return p >= PolicyBestEffort && p <= PolicyEnforce
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "best-effort", "":
		*p = PolicyBestEffort
	case "none":
		*p = PolicyNone
	case "enforce":
		*p = PolicyEnforce
	default:
		return fmt.Errorf("%w %q", ErrUnknownPolicy, text)
	}
	return nil
}

// Options configures Acquire. The zero value is usable: best-effort locking
// with the platform locker and a limit of the host's physical memory.
type Options struct {
	Policy Policy

	// MaxBytes bounds a single allocation. Zero selects DefaultMaxBytes.
	MaxBytes uint64

	// Locker overrides the platform locker.
	Locker Locker

	// Logger receives lock degradation warnings.
	Logger logrus.FieldLogger
}

func (o *Options) limit() uint64 {
	if o.MaxBytes != 0 {
		return o.MaxBytes
	}
	return DefaultMaxBytes()
}

func (o *Options) locker() Locker {
	if o.Locker != nil {
		return o.Locker
	}
	return SystemLocker()
}

// Buffer owns a page-aligned region viewed as a slice of T. T must not
// contain pointers: the region is raw bytes as far as the garbage collector
// is concerned.
type Buffer[T any] struct {
	raw    []byte
	mem    []byte
	items  []T
	locker Locker
	locked bool
	policy Policy
	log    logrus.FieldLogger

	once sync.Once
	err  error
}

// Acquire returns a zeroed buffer of count elements of T.
func Acquire[T any](count int, opts Options) (*Buffer[T], error) {
	if !opts.Policy.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownPolicy, int(opts.Policy))
	}

	var zero T
	elem := uint64(unsafe.Sizeof(zero))
	if count <= 0 || elem == 0 {
		return nil, &AllocationError{Reason: "empty buffer"}
	}

	limit := opts.limit()
	hi, size := bits.Mul64(uint64(count), elem)
	if hi != 0 {
		return nil, &AllocationError{Requested: ^uint64(0), Limit: limit, Reason: "size overflows"}
	}
	if size > limit {
		return nil, &AllocationError{Requested: size, Limit: limit, Reason: "exceeds limit"}
	}

	page := uint64(os.Getpagesize())
	rounded := (size + page - 1) / page * page
	if rounded+page > uint64(maxInt) {
		return nil, &AllocationError{Requested: size, Limit: limit, Reason: "exceeds address space"}
	}

	raw := make([]byte, rounded+page)
	off := alignOffset(raw, int(page))
	mem := raw[off : off+int(rounded) : off+int(rounded)]

	b := &Buffer[T]{
		raw:    raw,
		mem:    mem,
		items:  unsafe.Slice((*T)(unsafe.Pointer(&mem[0])), count),
		locker: opts.locker(),
		policy: opts.Policy,
		log:    trace.Or(opts.Logger),
	}

	if opts.Policy == PolicyNone {
		return b, nil
	}
	if err := b.locker.Lock(mem); err != nil {
		if opts.Policy == PolicyEnforce {
			b.locker.Zero(mem)
			return nil, &LockError{Size: len(mem), Err: err}
		}
		b.log.WithError(err).WithField("bytes", len(mem)).Warn("securemem: lock failed, continuing unlocked")
		return b, nil
	}
	b.locked = true
	return b, nil
}

// With acquires a buffer, passes its elements to fn and releases the buffer
// when fn returns or panics. A release error is reported only if fn succeeded.
func With[T any](count int, opts Options, fn func(items []T) error) (err error) {
	buf, err := Acquire[T](count, opts)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := buf.Release(); err == nil {
			err = rerr
		}
	}()
	return fn(buf.Slice())
}

// Slice returns the elements. It is nil after Release.
func (b *Buffer[T]) Slice() []T {
	return b.items
}

// At returns a pointer to element i.
func (b *Buffer[T]) At(i int) *T {
	return &b.items[i]
}

// Len returns the element count.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Bytes returns the whole page-rounded region backing the elements.
func (b *Buffer[T]) Bytes() []byte {
	return b.mem
}

// Locked reports whether the region is pinned in RAM.
func (b *Buffer[T]) Locked() bool {
	return b.locked
}

// Release zeroes the region and unlocks it. Only the first call has any
// effect; later calls return the first call's result. An unlock failure is
// an error only under PolicyEnforce; otherwise it is logged.
func (b *Buffer[T]) Release() error {
	b.once.Do(func() {
		b.locker.Zero(b.mem)
		if b.locked {
			if err := b.locker.Unlock(b.mem); err != nil {
				log := b.log.WithError(err).WithField("bytes", len(b.mem))
				if b.policy == PolicyEnforce {
					log.Error("securemem: unlock failed")
					b.err = &LockError{Size: len(b.mem), Unlock: true, Err: err}
				} else {
					log.Warn("securemem: unlock failed, continuing")
				}
			}
			b.locked = false
		}
		b.items = nil
		b.mem = nil
		b.raw = nil
	})
	return b.err
}

const maxInt = int(^uint(0) >> 1)

// alignOffset returns the offset of the first align-aligned byte in buf.
func alignOffset(buf []byte, align int) int {
	rem := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(align))
	if rem == 0 {
		return 0
	}
	return align - rem
}
