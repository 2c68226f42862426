package argon2

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/opd-ai/go-argon2/internal/engine"
	"github.com/opd-ai/go-argon2/internal/securemem"
	"github.com/opd-ai/go-argon2/internal/trace"
)

// DefaultSaltLength is the salt size used by Hasher unless overridden.
const DefaultSaltLength = 16

// Hasher produces and checks encoded password hashes with a fixed cost
// profile and fresh random salts. It is safe for concurrent use; the number
// of derivations in flight is bounded so that concurrent callers cannot
// exhaust memory.
type Hasher struct {
	params  Params
	saltLen int
	slots   int64
	sem     *semaphore.Weighted
	rand    io.Reader
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithSaltLength sets the length of generated salts.
func WithSaltLength(n int) HasherOption {
	return func(h *Hasher) { h.saltLen = n }
}

// WithConcurrency bounds the number of derivations running at once.
func WithConcurrency(n int64) HasherOption {
	return func(h *Hasher) { h.slots = n }
}

// WithRandom replaces crypto/rand as the salt source.
func WithRandom(r io.Reader) HasherOption {
	return func(h *Hasher) { h.rand = r }
}

// NewHasher returns a Hasher for the cost profile in p. Password and Salt
// in p are ignored; Secret, when set, is used as a pepper for every hash.
//
// Without WithConcurrency the bound is the number of matrices that fit in
// half of the allocation limit, capped at GOMAXPROCS.
func NewHasher(p *Params, opts ...HasherOption) (*Hasher, error) {
	h := &Hasher{
		params:  *p,
		saltLen: DefaultSaltLength,
		rand:    rand.Reader,
	}
	h.params.Password = nil
	h.params.Salt = nil
	for _, opt := range opts {
		opt(h)
	}

	withSalt := h.params
	withSalt.Salt = make([]byte, max(h.saltLen, 0))
	if err := withSalt.Validate(); err != nil {
		return nil, err
	}

	if h.slots <= 0 {
		h.slots = defaultSlots(&h.params)
	}
	h.sem = semaphore.NewWeighted(h.slots)

	trace.Or(p.Logger).WithField("slots", h.slots).Debug("argon2: hasher ready")
	return h, nil
}

func defaultSlots(p *Params) int64 {
	limit := p.MaxMemory
	if limit == 0 {
		limit = securemem.DefaultMaxBytes()
	}
	need := uint64(p.MemoryBlocks()) * engine.BlockSize
	slots := int64(limit / 2 / need)
	return min(max(slots, 1), int64(runtime.GOMAXPROCS(0)))
}

// Params returns a copy of the cost profile.
func (h *Hasher) Params() Params {
	return h.params
}

// GenerateFromPassword hashes password with a new random salt and returns
// the encoded form. ctx bounds only the wait for a free slot.
func (h *Hasher) GenerateFromPassword(ctx context.Context, password []byte) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("argon2: reading salt: %w", err)
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	p := h.params
	p.Password = password
	p.Salt = salt
	tag, err := Hash(&p)
	if err != nil {
		return "", err
	}
	defer clear(tag)
	return Encode(tag, &p), nil
}

// Compare checks password against encoded. It returns nil on a match and
// ErrMismatchedHashAndPassword on a mismatch. The costs embedded in encoded
// are used, not the Hasher's.
func (h *Hasher) Compare(ctx context.Context, encoded string, password []byte) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	ok, err := verifyEncoded(encoded, password, h.params.Secret, &h.params)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// NeedsRehash reports whether encoded was produced with a type, version or
// costs other than the Hasher's.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	p, tag, err := Decode(encoded)
	if err != nil {
		return false, err
	}
	return p.Type != h.params.Type ||
		p.Version != h.params.Version ||
		p.Time != h.params.Time ||
		p.Memory != h.params.Memory ||
		p.Lanes != h.params.Lanes ||
		uint32(len(tag)) != h.params.TagLength ||
		len(p.Salt) != h.saltLen, nil
}
