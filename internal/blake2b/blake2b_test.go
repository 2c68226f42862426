package blake2b

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xblake2b "golang.org/x/crypto/blake2b"
)

func TestSum512_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "786a02f742015903c6c6fd852552d272912f4740e15847618a86e217f71f5419d25e1031afee585313896444934eb04b903a685b1448b755d56f701afe9be2ce",
		},
		{
			name:  "abc",
			input: "abc",
			want:  "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum512([]byte(tt.input))
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

// TestAgainstReference compares plain and keyed digests of every size with
// golang.org/x/crypto/blake2b over inputs straddling block boundaries.
func TestAgainstReference(t *testing.T) {
	msg := make([]byte, 3*BlockSize+1)
	for i := range msg {
		msg[i] = byte(i * 7)
	}
	key := make([]byte, 64)
	for i := range key {
		key[i] = byte(i)
	}
	lengths := []int{0, 1, 63, 64, 127, 128, 129, 255, 256, 257, len(msg)}
	keyLengths := []int{0, 1, 32, 64}

	for size := 1; size <= Size; size++ {
		for _, kl := range keyLengths {
			for _, ml := range lengths {
				ref, err := xblake2b.New(size, key[:kl])
				require.NoError(t, err)
				ref.Write(msg[:ml])
				want := ref.Sum(nil)

				d, err := New(&Config{Size: uint8(size), Key: key[:kl]})
				require.NoError(t, err)
				_, err = d.Write(msg[:ml])
				require.NoError(t, err)
				got, err := d.Finalize(false, nil)
				require.NoError(t, err)

				if !assert.Equal(t, want, got, "size=%d key=%d msg=%d", size, kl, ml) {
					return
				}
			}
		}
	}
}

func TestWrite_Incremental(t *testing.T) {
	msg := make([]byte, 1000)
	for i := range msg {
		msg[i] = byte(i)
	}
	want := Sum512(msg)

	for _, chunk := range []int{1, 3, 64, 127, 128, 129, 500} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			d, err := New(&Config{Size: Size})
			require.NoError(t, err)
			for off := 0; off < len(msg); off += chunk {
				end := min(off+chunk, len(msg))
				d.Write(msg[off:end])
			}
			got, err := d.Finalize(false, nil)
			require.NoError(t, err)
			assert.Equal(t, want[:], got)
		})
	}
}

func TestStateMachine(t *testing.T) {
	var d Digest

	_, err := d.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrInvalidState, "write before initialize")
	_, err = d.Finalize(false, nil)
	assert.ErrorIs(t, err, ErrInvalidState, "finalize before initialize")

	params, err := (&Config{Size: 32}).Params()
	require.NoError(t, err)
	d.Initialize(params)
	assert.Equal(t, 32, d.Size())

	_, err = d.Write([]byte("abc"))
	require.NoError(t, err)
	out, err := d.Finalize(false, nil)
	require.NoError(t, err)
	assert.Len(t, out, 32)

	_, err = d.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrInvalidState, "write after finalize")
	_, err = d.Finalize(false, nil)
	assert.ErrorIs(t, err, ErrInvalidState, "finalize after finalize")

	// Finalize wipes the chaining value.
	assert.Equal(t, [8]uint64{}, d.h)
}

func TestFinalize_AppendsToOut(t *testing.T) {
	d, err := New(&Config{Size: 16})
	require.NoError(t, err)
	out, err := d.Finalize(false, []byte{0xaa})
	require.NoError(t, err)
	require.Len(t, out, 17)
	assert.Equal(t, byte(0xaa), out[0])
}

func TestFinalize_LastNodeFlag(t *testing.T) {
	a, _ := New(&Config{Size: Size})
	b, _ := New(&Config{Size: Size})
	a.Write([]byte("leaf"))
	b.Write([]byte("leaf"))

	plain, err := a.Finalize(false, nil)
	require.NoError(t, err)
	last, err := b.Finalize(true, nil)
	require.NoError(t, err)
	assert.NotEqual(t, plain, last)
}

func TestParams_Layout(t *testing.T) {
	cfg := &Config{
		Size:     48,
		Key:      []byte("k3y"),
		Salt:     []byte("0123456789abcdef"),
		Personal: []byte("personalization!"),
		Tree: &Tree{
			Fanout:     2,
			MaxDepth:   3,
			LeafSize:   4096,
			NodeOffset: 0x0102030405,
			NodeDepth:  1,
			InnerSize:  64,
		},
	}
	words, err := cfg.Params()
	require.NoError(t, err)

	var p [64]byte
	for i, w := range words {
		binary.LittleEndian.PutUint64(p[i*8:], w)
	}
	assert.Equal(t, byte(48), p[0])
	assert.Equal(t, byte(3), p[1])
	assert.Equal(t, byte(2), p[2])
	assert.Equal(t, byte(3), p[3])
	assert.Equal(t, uint32(4096), binary.LittleEndian.Uint32(p[4:]))
	assert.Equal(t, uint64(0x0102030405), binary.LittleEndian.Uint64(p[8:]))
	assert.Equal(t, byte(1), p[16])
	assert.Equal(t, byte(64), p[17])
	assert.Equal(t, make([]byte, 14), p[18:32])
	assert.Equal(t, cfg.Salt, p[32:48])
	assert.Equal(t, cfg.Personal, p[48:64])

	seq, err := (&Config{Size: 64}).Params()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x01010040), seq[0])
}

func TestParams_SaltAndPersonalChangeDigest(t *testing.T) {
	base, _ := New(&Config{Size: 32})
	salted, _ := New(&Config{Size: 32, Salt: []byte("salt")})
	personal, _ := New(&Config{Size: 32, Personal: []byte("argon2")})

	outs := make([]string, 0, 3)
	for _, d := range []*Digest{base, salted, personal} {
		d.Write([]byte("message"))
		out, err := d.Finalize(false, nil)
		require.NoError(t, err)
		outs = append(outs, hex.EncodeToString(out))
	}
	assert.NotEqual(t, outs[0], outs[1])
	assert.NotEqual(t, outs[0], outs[2])
	assert.NotEqual(t, outs[1], outs[2])
}

func TestParams_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{name: "zero_size", cfg: Config{Size: 0}, err: ErrInvalidSize},
		{name: "oversize", cfg: Config{Size: 65}, err: ErrInvalidSize},
		{name: "long_key", cfg: Config{Size: 64, Key: make([]byte, MaxKeySize+1)}, err: ErrKeyTooLong},
		{name: "long_salt", cfg: Config{Size: 64, Salt: make([]byte, SaltSize+1)}, err: ErrSaltTooLong},
		{name: "long_personal", cfg: Config{Size: 64, Personal: make([]byte, PersonalSize+1)}, err: ErrPersonalTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNew_MaxKey(t *testing.T) {
	d, err := New(&Config{Size: 64, Key: make([]byte, MaxKeySize)})
	require.NoError(t, err)
	out, err := d.Finalize(false, nil)
	require.NoError(t, err)
	assert.Len(t, out, 64)
}

func TestSum(t *testing.T) {
	got, err := Sum(64, []byte("a"), []byte("bc"))
	require.NoError(t, err)
	want := Sum512([]byte("abc"))
	assert.Equal(t, want[:], got)

	_, err = Sum(0, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = Sum(300, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func BenchmarkSum512_1K(b *testing.B) {
	msg := make([]byte, 1024)
	b.SetBytes(int64(len(msg)))
	for i := 0; i < b.N; i++ {
		Sum512(msg)
	}
}
