package modelcache

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures loading model handles and embedding through them
// leaves no goroutines running once the tests finish.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
