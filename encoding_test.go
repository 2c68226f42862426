package argon2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Format(t *testing.T) {
	p := &Params{
		Type:    Argon2i,
		Version: Version13,
		Time:    2,
		Memory:  65536,
		Lanes:   1,
		Salt:    []byte("somesalt"),
	}
	tag := []byte{0xc1, 0x62, 0x88, 0x32}
	assert.Equal(t, "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMg", Encode(tag, p))

	p.KeyID = []byte{0x01, 0x02}
	p.AssociatedData = []byte("ad")
	assert.Equal(t, "$argon2i$v=19$m=65536,t=2,p=1,keyid=AQI,data=YWQ$c29tZXNhbHQ$wWKIMg", Encode(tag, p))
}

func TestDecode_RoundTrip(t *testing.T) {
	p := testParams(Argon2d)
	p.KeyID = []byte("k1")
	tag := []byte("0123456789abcdef0123456789abcdef")

	got, gotTag, err := Decode(Encode(tag, p))
	require.NoError(t, err)
	assert.Equal(t, tag, gotTag)
	assert.Equal(t, p.Type, got.Type)
	assert.Equal(t, p.Version, got.Version)
	assert.Equal(t, p.Time, got.Time)
	assert.Equal(t, p.Memory, got.Memory)
	assert.Equal(t, p.Lanes, got.Lanes)
	assert.Equal(t, p.Lanes, got.Threads)
	assert.Equal(t, uint32(len(tag)), got.TagLength)
	assert.Equal(t, p.Salt, got.Salt)
	assert.Equal(t, p.KeyID, got.KeyID)
	assert.Equal(t, p.AssociatedData, got.AssociatedData)
	assert.Nil(t, got.Password)
	assert.Nil(t, got.Secret)
}

func TestDecode_NoVersion(t *testing.T) {
	p, tag, err := Decode("$argon2i$m=65536,t=2,p=1$c29tZXNhbHQ$9sTbSlTio3Biev89thdrlKKiCaYsjjYVJxGAL3swxpQ")
	require.NoError(t, err)
	assert.Equal(t, Version10, p.Version)
	assert.Len(t, tag, 32)
}

func TestDecode_DataWithoutKeyID(t *testing.T) {
	p, _, err := Decode("$argon2id$v=19$m=64,t=1,p=2,data=YWQ$c29tZXNhbHQ$AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, []byte("ad"), p.AssociatedData)
	assert.Nil(t, p.KeyID)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"no_leading_dollar", "argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"unknown_type", "$argon2x$v=19$m=64,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"short_type", "$id$v=19$m=64,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"bad_version", "$argon2id$v=x$m=64,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"missing_tag", "$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ"},
		{"extra_field", "$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ$AAAA$AAAA"},
		{"order", "$argon2id$v=19$t=1,m=64,p=1$c29tZXNhbHQ$AAAA"},
		{"missing_p", "$argon2id$v=19$m=64,t=1$c29tZXNhbHQ$AAAA"},
		{"overflow", "$argon2id$v=19$m=4294967296,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"negative", "$argon2id$v=19$m=-1,t=1,p=1$c29tZXNhbHQ$AAAA"},
		{"unknown_param", "$argon2id$v=19$m=64,t=1,p=1,x=1$c29tZXNhbHQ$AAAA"},
		{"data_before_keyid", "$argon2id$v=19$m=64,t=1,p=1,data=YQ,keyid=YQ$c29tZXNhbHQ$AAAA"},
		{"bad_keyid", "$argon2id$v=19$m=64,t=1,p=1,keyid=!!$c29tZXNhbHQ$AAAA"},
		{"padded_salt", "$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ=$AAAA"},
		{"bad_tag", "$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ$A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, tag, err := Decode(tt.encoded)
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Nil(t, p)
			assert.Nil(t, tag)
		})
	}
}
