// Command argon2 hashes and verifies passwords with Argon2.
//
// Subcommands:
//
//	hash    read a password and print its encoded hash (or raw tag)
//	verify  check a password against an encoded hash; exit 1 on mismatch
//	params  print the effective cost profile
//
// Costs come from the built-in RFC 9106 profile, an optional TOML file
// (--profile), ARGON2_* environment variables and flags, in that order.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/go-argon2"
	"github.com/opd-ai/go-argon2/internal/trace"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, argon2.ErrMismatchedHashAndPassword):
		return exitMismatch
	default:
		log := logrus.New()
		log.SetOutput(stderr)
		log.SetLevel(trace.Logger().GetLevel())
		log.WithError(err).Error("command failed")
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "argon2",
		Short: "Argon2 password hashing",
		// Errors are reported by run with the exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().String("profile", "", "TOML cost profile")
	root.PersistentFlags().String("policy", "", "memory locking policy: none, best-effort or enforce")

	root.AddCommand(
		hashCmd(),
		verifyCmd(),
		paramsCmd(),
	)
	return root
}
