package batch

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures the per-item goroutines Run starts have all exited
// once Run returns, including when tasks fail.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
