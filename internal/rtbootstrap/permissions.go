package rtbootstrap

import (
	"os"

	"github.com/localstack/go-lambda-runtime/internal/rtlog"
	"golang.org/x/sys/unix"
)

// EnsureExecutable checks that path (the linked handler artifact, or this
// bootstrap binary itself when invoked standalone) has the execute bit
// set and fixes it to 0755 if not.
//
// Adapted from the teacher's internal/bootstrap.GetBootstrap, which does
// the same check-then-chmod dance for a child process's bootstrap file
// before exec'ing it. This runtime never execs a separate process — the
// handler is linked in at build time — but the artifact still needs its
// execute bit set correctly for diagnostics tooling and for the rare case
// where a handler is invoked as a subprocess by rtadapter-style shims.
func EnsureExecutable(path string) error {
	if err := unix.Access(path, unix.X_OK); err == nil {
		return nil
	}

	rtlog.Log(rtlog.Debug, "fixing executable permissions on "+path)
	if err := os.Chmod(path, 0o755); err != nil {
		return err
	}
	return nil
}
