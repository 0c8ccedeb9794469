package observability

import (
	"fmt"
	"os"
	"syscall"
)

// lockExclusive takes an exclusive advisory lock (LOCK_EX) on f so that
// appends from concurrent dqe processes, such as the MCP server and a CLI
// run, never interleave within a line. The returned function releases it.
func lockExclusive(f *os.File) (unlock func() error, err error) {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return nil, fmt.Errorf("acquiring event log lock: %w", err)
	}
	return func() error {
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
