package pandoc

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures the server-mode subprocess client's health-check
// polling and stdio pumps leave no goroutines running after Close.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("os/exec.(*Cmd).watchCtx"),
	)
}
