package argon2

import (
	"encoding/base64"
	"strconv"
	"strings"
)

var b64 = base64.RawStdEncoding

// Encode returns the canonical string form of tag and the cost parameters
// of p:
//
//	$argon2id$v=19$m=65536,t=3,p=4[,keyid=...][,data=...]$<salt>$<tag>
//
// Binary fields use standard base64 without padding.
func Encode(tag []byte, p *Params) string {
	var sb strings.Builder
	sb.Grow(64 + b64.EncodedLen(len(p.Salt)) + b64.EncodedLen(len(tag)))

	sb.WriteString("$")
	sb.WriteString(p.Type.String())
	sb.WriteString("$v=")
	sb.WriteString(strconv.FormatUint(uint64(p.Version), 10))
	sb.WriteString("$m=")
	sb.WriteString(strconv.FormatUint(uint64(p.Memory), 10))
	sb.WriteString(",t=")
	sb.WriteString(strconv.FormatUint(uint64(p.Time), 10))
	sb.WriteString(",p=")
	sb.WriteString(strconv.FormatUint(uint64(p.Lanes), 10))
	if len(p.KeyID) > 0 {
		sb.WriteString(",keyid=")
		sb.WriteString(b64.EncodeToString(p.KeyID))
	}
	if len(p.AssociatedData) > 0 {
		sb.WriteString(",data=")
		sb.WriteString(b64.EncodeToString(p.AssociatedData))
	}
	sb.WriteString("$")
	sb.WriteString(b64.EncodeToString(p.Salt))
	sb.WriteString("$")
	sb.WriteString(b64.EncodeToString(tag))
	return sb.String()
}

// Decode parses an encoded hash. The returned Params carry the type,
// version, costs, salt, key id and associated data; Threads equals Lanes
// and TagLength equals the length of the returned tag. A string without a
// v= field is version 0x10.
//
// Decode checks syntax only; Validate reports out-of-range values.
func Decode(s string) (*Params, []byte, error) {
	fields := strings.Split(s, "$")
	if len(fields) < 5 || fields[0] != "" {
		return nil, nil, &DecodeError{Reason: "wrong number of fields"}
	}
	fields = fields[1:]

	p := &Params{Version: Version10}
	if err := p.Type.UnmarshalText([]byte(fields[0])); err != nil || !strings.HasPrefix(fields[0], "argon2") {
		return nil, nil, &DecodeError{Reason: "unknown algorithm " + strconv.Quote(fields[0])}
	}
	fields = fields[1:]

	if v, ok := strings.CutPrefix(fields[0], "v="); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, nil, &DecodeError{Reason: "version", Err: err}
		}
		p.Version = uint32(n)
		fields = fields[1:]
	}
	if len(fields) != 3 {
		return nil, nil, &DecodeError{Reason: "wrong number of fields"}
	}

	if err := decodeParams(p, fields[0]); err != nil {
		return nil, nil, err
	}

	var err error
	if p.Salt, err = b64.DecodeString(fields[1]); err != nil {
		return nil, nil, &DecodeError{Reason: "salt", Err: err}
	}
	tag, err := b64.DecodeString(fields[2])
	if err != nil {
		return nil, nil, &DecodeError{Reason: "tag", Err: err}
	}
	p.Threads = p.Lanes
	p.TagLength = uint32(len(tag))
	return p, tag, nil
}

// decodeParams parses "m=..,t=..,p=..[,keyid=..][,data=..]". Keys must
// appear in that order.
func decodeParams(p *Params, s string) error {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return &DecodeError{Reason: "missing cost parameters"}
	}

	for i, dst := range []*uint32{&p.Memory, &p.Time, &p.Lanes} {
		key := [...]string{"m", "t", "p"}[i]
		v, ok := strings.CutPrefix(parts[i], key+"=")
		if !ok {
			return &DecodeError{Reason: "expected " + key + "="}
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return &DecodeError{Reason: key, Err: err}
		}
		*dst = uint32(n)
	}

	rest := parts[3:]
	if len(rest) > 0 {
		if v, ok := strings.CutPrefix(rest[0], "keyid="); ok {
			id, err := b64.DecodeString(v)
			if err != nil {
				return &DecodeError{Reason: "keyid", Err: err}
			}
			p.KeyID = id
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if v, ok := strings.CutPrefix(rest[0], "data="); ok {
			data, err := b64.DecodeString(v)
			if err != nil {
				return &DecodeError{Reason: "data", Err: err}
			}
			p.AssociatedData = data
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		return &DecodeError{Reason: "unexpected parameter " + strconv.Quote(rest[0])}
	}
	return nil
}
