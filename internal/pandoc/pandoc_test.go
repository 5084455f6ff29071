package pandoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

func TestSubprocessClientReportsMissingDependencyWhenBinaryAbsent(t *testing.T) {
	c := &SubprocessClient{BinaryPath: "pandoc-binary-that-does-not-exist"}
	_, err := c.ToJSON(context.Background(), []byte("# hi"), "markdown")
	require.Error(t, err)
}

func TestSubprocessClientCloseIsNoop(t *testing.T) {
	c := NewSubprocessClient()
	require.NoError(t, c.Close())
}

func TestFirstLineTrimsAtNewline(t *testing.T) {
	require.Equal(t, "boom", firstLine([]byte("boom\nstack trace\nmore")))
	require.Equal(t, "boom", firstLine([]byte("boom")))
}

func TestNewClientFallsBackWhenServerUnavailable(t *testing.T) {
	// In a CI sandbox without pandoc-server installed, NewClient must
	// still return a usable (subprocess) client rather than nil.
	c := NewClient(context.Background())
	require.NotNil(t, c)
	require.NoError(t, c.Close())
}

func TestAvailableDoesNotPanicWithoutPandocInstalled(t *testing.T) {
	require.NotPanics(t, func() { Available() })
}

func TestKerrMissingDependencyKindForAbsentSubprocessBinary(t *testing.T) {
	c := &SubprocessClient{BinaryPath: "definitely-not-a-real-binary"}
	_, err := c.ToJSON(context.Background(), nil, "markdown")
	require.Equal(t, kerr.KindMissingDependency, kerr.KindOf(err))
}
