package argon2

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// TestVector is one known-answer case. Binary inputs are given either as
// text or, with the _hex suffix, hex-encoded.
type TestVector struct {
	Name    string `json:"name"`
	Type    Type   `json:"type"`
	Version uint32 `json:"version"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Lanes   uint32 `json:"lanes"`

	Password    string `json:"password,omitempty"`
	PasswordHex string `json:"password_hex,omitempty"`
	Salt        string `json:"salt,omitempty"`
	SaltHex     string `json:"salt_hex,omitempty"`
	SecretHex   string `json:"secret_hex,omitempty"`
	DataHex     string `json:"data_hex,omitempty"`

	Expected string `json:"expected"`          // hex tag
	Encoded  string `json:"encoded,omitempty"` // canonical string, if published

	// Slow marks vectors with large memory costs.
	Slow bool `json:"slow,omitempty"`
}

// TestVectorSuite is a file of vectors with provenance.
type TestVectorSuite struct {
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Source      string       `json:"source,omitempty"`
	Vectors     []TestVector `json:"vectors"`
}

// LoadTestVectors reads a JSON vector suite.
func LoadTestVectors(path string) (*TestVectorSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test vectors: %w", err)
	}

	var suite TestVectorSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test vectors: %w", err)
	}
	return &suite, nil
}

// Params returns the parameters of the vector with one thread per lane.
func (tv *TestVector) Params() (*Params, error) {
	expected, err := tv.ExpectedTag()
	if err != nil {
		return nil, err
	}

	p := &Params{
		Type:      tv.Type,
		Version:   tv.Version,
		Time:      tv.Time,
		Memory:    tv.Memory,
		Lanes:     tv.Lanes,
		Threads:   tv.Lanes,
		TagLength: uint32(len(expected)),
	}
	if p.Password, err = textOrHex(tv.Password, tv.PasswordHex); err != nil {
		return nil, fmt.Errorf("invalid password hex: %w", err)
	}
	if p.Salt, err = textOrHex(tv.Salt, tv.SaltHex); err != nil {
		return nil, fmt.Errorf("invalid salt hex: %w", err)
	}
	if p.Secret, err = hex.DecodeString(tv.SecretHex); err != nil {
		return nil, fmt.Errorf("invalid secret hex: %w", err)
	}
	if p.AssociatedData, err = hex.DecodeString(tv.DataHex); err != nil {
		return nil, fmt.Errorf("invalid data hex: %w", err)
	}
	return p, nil
}

// ExpectedTag returns the decoded expected tag.
func (tv *TestVector) ExpectedTag() ([]byte, error) {
	expected, err := hex.DecodeString(tv.Expected)
	if err != nil {
		return nil, fmt.Errorf("invalid expected tag: %w", err)
	}
	if len(expected) < MinTagLength {
		return nil, fmt.Errorf("expected tag must be at least %d bytes, got %d", MinTagLength, len(expected))
	}
	return expected, nil
}

func textOrHex(text, hexText string) ([]byte, error) {
	if hexText != "" {
		return hex.DecodeString(hexText)
	}
	return []byte(text), nil
}
