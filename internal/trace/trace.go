// Package trace provides the logger shared by the argon2 packages.
// Tracing is enabled with ARGON2_DEBUG=1; otherwise only warnings are
// emitted, and only to stderr.
package trace

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// EnvVar is the environment variable that turns on debug tracing.
const EnvVar = "ARGON2_DEBUG"

var (
	once   sync.Once
	logger *logrus.Logger
)

// Enabled reports whether debug tracing was requested via the environment.
func Enabled() bool {
	return os.Getenv(EnvVar) == "1"
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		if Enabled() {
			logger.SetLevel(logrus.DebugLevel)
		}
	})
	return logger
}

// Or returns l when non-nil and the process-wide logger otherwise.
func Or(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	return Logger()
}
