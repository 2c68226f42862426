// Package config loads the cost profile used by the argon2 command.
//
// A profile starts from the RFC 9106 recommended Argon2id settings, is
// overlaid by an optional TOML file and then by ARGON2_* environment
// variables (caarlos0/env/v11).
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"

	"github.com/opd-ai/go-argon2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARGON2_"

// Profile is a complete set of cost and memory settings.
type Profile struct {
	Type      argon2.Type `toml:"type"       env:"TYPE"`
	Version   uint32      `toml:"version"    env:"VERSION"`
	Time      uint32      `toml:"time"       env:"TIME"`
	Memory    uint32      `toml:"memory"     env:"MEMORY"` // KiB
	Lanes     uint32      `toml:"lanes"      env:"LANES"`
	Threads   uint32      `toml:"threads"    env:"THREADS"`
	TagLength uint32      `toml:"tag_length" env:"TAG_LENGTH"`

	SaltLength int `toml:"salt_length" env:"SALT_LENGTH"`

	// ── Memory ───────────────────────────────────────────────────────────────
	Policy argon2.Policy `toml:"policy" env:"POLICY"`
	// MaxMemory caps the matrix allocation, e.g. "2 GiB". Empty means the
	// host's physical memory.
	MaxMemory string `toml:"max_memory" env:"MAX_MEMORY"`
	// Concurrency bounds simultaneous derivations; zero picks a default.
	Concurrency int64 `toml:"concurrency" env:"CONCURRENCY"`
}

// Default returns the built-in profile.
func Default() *Profile {
	p := argon2.DefaultParams(argon2.Argon2id)
	return &Profile{
		Type:       p.Type,
		Version:    p.Version,
		Time:       p.Time,
		Memory:     p.Memory,
		Lanes:      p.Lanes,
		Threads:    p.Threads,
		TagLength:  p.TagLength,
		SaltLength: argon2.DefaultSaltLength,
	}
}

// Load builds a profile from the defaults, the TOML file at path (skipped
// when path is empty) and the environment. Unknown keys in the file are an
// error. Threads follow lanes unless one of the sources sets them.
func Load(path string) (*Profile, error) {
	p := Default()
	_, threadsSet := os.LookupEnv(EnvPrefix + "THREADS")

	if path != "" {
		md, err := toml.DecodeFile(path, p)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		threadsSet = threadsSet || md.IsDefined("threads")
	}

	if err := env.ParseWithOptions(p, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if !threadsSet {
		p.Threads = p.Lanes
	}
	return p, nil
}

// MaxMemoryBytes parses MaxMemory.
func (p *Profile) MaxMemoryBytes() (uint64, error) {
	if p.MaxMemory == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(p.MaxMemory)
	if err != nil {
		return 0, fmt.Errorf("config: max_memory: %w", err)
	}
	return n, nil
}

// Params returns argon2 parameters for the profile without password or
// salt. The result is validated against a salt of SaltLength bytes.
func (p *Profile) Params() (*argon2.Params, error) {
	maxMem, err := p.MaxMemoryBytes()
	if err != nil {
		return nil, err
	}
	params := &argon2.Params{
		Type:         p.Type,
		Version:      p.Version,
		Time:         p.Time,
		Memory:       p.Memory,
		Lanes:        p.Lanes,
		Threads:      p.Threads,
		TagLength:    p.TagLength,
		MemoryPolicy: p.Policy,
		MaxMemory:    maxMem,
	}

	withSalt := *params
	withSalt.Salt = make([]byte, max(p.SaltLength, 0))
	if err := withSalt.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// HasherOptions returns the Hasher options implied by the profile.
func (p *Profile) HasherOptions() []argon2.HasherOption {
	opts := []argon2.HasherOption{argon2.WithSaltLength(p.SaltLength)}
	if p.Concurrency > 0 {
		opts = append(opts, argon2.WithConcurrency(p.Concurrency))
	}
	return opts
}

// MemoryString renders the memory cost for humans, e.g. "64 MiB".
func (p *Profile) MemoryString() string {
	return humanize.IBytes(uint64(p.Memory) * 1024)
}
