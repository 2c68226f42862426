package argon2

import "crypto/subtle"

// Verify reports whether password and secret produce the tag embedded in
// encoded. Any failure, including a malformed string, yields false together
// with the error.
func Verify(encoded string, password, secret []byte) (bool, error) {
	return verifyEncoded(encoded, password, secret, nil)
}

// VerifyRaw reports whether p produces tag. p.TagLength is taken from
// len(tag).
func VerifyRaw(tag []byte, p *Params) (bool, error) {
	q := *p
	q.TagLength = uint32(len(tag))

	got, err := Hash(&q)
	if err != nil {
		return false, err
	}
	defer clear(got)
	return subtle.ConstantTimeCompare(got, tag) == 1, nil
}

// verifyEncoded decodes encoded and recomputes it. Memory settings and the
// logger are copied from base when it is non-nil.
func verifyEncoded(encoded string, password, secret []byte, base *Params) (bool, error) {
	p, tag, err := Decode(encoded)
	if err != nil {
		return false, err
	}
	p.Password = password
	p.Secret = secret
	if base != nil {
		p.MemoryPolicy = base.MemoryPolicy
		p.Locker = base.Locker
		p.MaxMemory = base.MaxMemory
		p.Logger = base.Logger
	}
	return VerifyRaw(tag, p)
}
