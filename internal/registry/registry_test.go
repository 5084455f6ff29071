package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	name         string
	priority     int
	shutdownHits *int
}

func (f *fakePlugin) Name() string     { return f.name }
func (f *fakePlugin) Initialize() error { return nil }
func (f *fakePlugin) Shutdown() error {
	if f.shutdownHits != nil {
		*f.shutdownHits++
	}
	return nil
}

func TestRegisterRemoveCallsShutdownExactlyOnce(t *testing.T) {
	r := New[*fakePlugin]()
	hits := 0
	p := &fakePlugin{name: "quality", shutdownHits: &hits}

	require.NoError(t, r.Register(p))
	require.Contains(t, r.List(), "quality")

	require.NoError(t, r.Remove("quality"))
	require.NotContains(t, r.List(), "quality")
	require.Equal(t, 1, hits)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	r := New[*fakePlugin]()
	require.NoError(t, r.Remove("nope"))
}

func TestRegisterRejectsEmptyOrWhitespaceName(t *testing.T) {
	r := New[*fakePlugin]()
	require.Error(t, r.Register(&fakePlugin{name: ""}))
	require.Error(t, r.Register(&fakePlugin{name: "has space"}))
}

func TestSelectByPriorityTiesBreakByRegistrationOrder(t *testing.T) {
	r := New[*fakePlugin]()
	require.NoError(t, r.Register(&fakePlugin{name: "first", priority: 5}))
	require.NoError(t, r.Register(&fakePlugin{name: "second", priority: 5}))

	winner, ok := SelectByPriority(r, func(p *fakePlugin) int { return p.priority },
		func(p *fakePlugin) bool { return true })
	require.True(t, ok)
	require.Equal(t, "first", winner.name)
}

func TestSelectByPriorityHighestWins(t *testing.T) {
	r := New[*fakePlugin]()
	require.NoError(t, r.Register(&fakePlugin{name: "low", priority: 1}))
	require.NoError(t, r.Register(&fakePlugin{name: "high", priority: 10}))

	winner, ok := SelectByPriority(r, func(p *fakePlugin) int { return p.priority },
		func(p *fakePlugin) bool { return true })
	require.True(t, ok)
	require.Equal(t, "high", winner.name)
}

func TestShutdownAllAttemptsEveryEntry(t *testing.T) {
	r := New[*fakePlugin]()
	h1, h2 := 0, 0
	require.NoError(t, r.Register(&fakePlugin{name: "a", shutdownHits: &h1}))
	require.NoError(t, r.Register(&fakePlugin{name: "b", shutdownHits: &h2}))

	require.NoError(t, r.ShutdownAll())
	require.Equal(t, 1, h1)
	require.Equal(t, 1, h2)
	require.Empty(t, r.List())
}
