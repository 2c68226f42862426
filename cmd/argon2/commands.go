package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/opd-ai/go-argon2"
	"github.com/opd-ai/go-argon2/internal/securemem"
)

// ── hash ─────────────────────────────────────────────────────────────────────

func hashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE:  runHash,
	}
	costFlags(cmd)
	cmd.Flags().String("salt", "", "use this salt instead of a random one")
	cmd.Flags().Bool("raw", false, "print the hex tag instead of the encoded hash")
	return cmd
}

func runHash(cmd *cobra.Command, _ []string) error {
	prof, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	params, err := prof.Params()
	if err != nil {
		return errors.Wrap(err, "invalid profile")
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	defer clear(password)

	salt, _ := cmd.Flags().GetString("salt")
	raw, _ := cmd.Flags().GetBool("raw")

	if salt == "" && !raw {
		h, err := argon2.NewHasher(params, prof.HasherOptions()...)
		if err != nil {
			return errors.Wrap(err, "invalid profile")
		}
		encoded, err := h.GenerateFromPassword(cmd.Context(), password)
		if err != nil {
			return errors.Wrap(err, "hashing")
		}
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	}

	params.Salt = []byte(salt)
	if salt == "" {
		params.Salt = make([]byte, prof.SaltLength)
		if _, err := rand.Read(params.Salt); err != nil {
			return errors.Wrap(err, "generating salt")
		}
	}
	params.Password = password
	tag, err := argon2.Hash(params)
	if err != nil {
		return errors.Wrap(err, "hashing")
	}
	defer clear(tag)

	if raw {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(tag))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), argon2.Encode(tag, params))
	}
	return nil
}

// ── verify ───────────────────────────────────────────────────────────────────

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <encoded>",
		Short: "Check a password against an encoded hash",
		Long:  "Check a password against an encoded hash. Exits 0 on a match and 1 on a mismatch.",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	prof, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	params, err := prof.Params()
	if err != nil {
		return errors.Wrap(err, "invalid profile")
	}
	h, err := argon2.NewHasher(params, prof.HasherOptions()...)
	if err != nil {
		return errors.Wrap(err, "invalid profile")
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := h.Compare(cmd.Context(), args[0], password); err != nil {
		if errors.Is(err, argon2.ErrMismatchedHashAndPassword) {
			fmt.Fprintln(cmd.OutOrStdout(), "mismatch")
			return err
		}
		return errors.Wrap(err, "verifying")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// ── params ───────────────────────────────────────────────────────────────────

func paramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the effective cost profile",
		Args:  cobra.NoArgs,
		RunE:  runParams,
	}
	costFlags(cmd)
	return cmd
}

func runParams(cmd *cobra.Command, _ []string) error {
	prof, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	params, err := prof.Params()
	if err != nil {
		return errors.Wrap(err, "invalid profile")
	}

	limit := params.MaxMemory
	if limit == 0 {
		limit = securemem.DefaultMaxBytes()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "type:        %s\n", params.Type)
	fmt.Fprintf(out, "version:     %#x\n", params.Version)
	fmt.Fprintf(out, "time:        %d\n", params.Time)
	fmt.Fprintf(out, "memory:      %s (%s blocks)\n", prof.MemoryString(), humanize.Comma(int64(params.MemoryBlocks())))
	fmt.Fprintf(out, "lanes:       %d\n", params.Lanes)
	fmt.Fprintf(out, "threads:     %d\n", params.Threads)
	fmt.Fprintf(out, "tag:         %d bytes\n", params.TagLength)
	fmt.Fprintf(out, "salt:        %d bytes\n", prof.SaltLength)
	fmt.Fprintf(out, "policy:      %s\n", params.MemoryPolicy)
	fmt.Fprintf(out, "max memory:  %s\n", humanize.IBytes(limit))
	return nil
}
