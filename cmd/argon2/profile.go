package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opd-ai/go-argon2/internal/config"
)

// costFlags registers the per-invocation cost overrides on cmd.
func costFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("type", "", "variant: d, i or id")
	f.Uint32("time", 0, "passes over memory")
	f.Uint32("memory", 0, "memory cost in KiB")
	f.Uint32("lanes", 0, "parallelism")
	f.Uint32("threads", 0, "worker threads (at most lanes)")
	f.Uint32("tag", 0, "tag length in bytes")
	f.Int("salt-len", 0, "generated salt length in bytes")
}

// loadProfile layers changed flags over the file and environment profile.
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	path, _ := cmd.Flags().GetString("profile")
	prof, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading profile")
	}

	f := cmd.Flags()
	if v, _ := f.GetString("policy"); f.Changed("policy") {
		if err := prof.Policy.UnmarshalText([]byte(v)); err != nil {
			return nil, errors.Wrap(err, "--policy")
		}
	}
	if f.Lookup("type") == nil {
		return prof, nil
	}
	if v, _ := f.GetString("type"); f.Changed("type") {
		if err := prof.Type.UnmarshalText([]byte(v)); err != nil {
			return nil, errors.Wrap(err, "--type")
		}
	}
	for name, dst := range map[string]*uint32{
		"time":    &prof.Time,
		"memory":  &prof.Memory,
		"lanes":   &prof.Lanes,
		"threads": &prof.Threads,
		"tag":     &prof.TagLength,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetUint32(name)
		}
	}
	// Raising lanes alone should not trip the threads bound.
	if f.Changed("lanes") && !f.Changed("threads") {
		prof.Threads = prof.Lanes
	}
	if f.Changed("salt-len") {
		prof.SaltLength, _ = f.GetInt("salt-len")
	}
	return prof, nil
}

// readPassword prompts on the terminal without echo, or reads the first
// line of non-terminal input.
func readPassword(cmd *cobra.Command) ([]byte, error) {
	in := cmd.InOrStdin()
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, errors.Wrap(err, "reading password")
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, errors.Wrap(err, "reading password from input")
	}
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line, nil
}
