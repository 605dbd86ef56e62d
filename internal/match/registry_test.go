package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

func testMatch(id string, expiresAt time.Time) types.Match {
	return types.Match{
		ID:              id,
		Players:         []string{"a", "b", "c", "d"},
		Region:          "eu",
		CreatedAt:       expiresAt.Add(-120 * time.Second),
		ExpiresAt:       expiresAt,
		AcceptedPlayers: make(map[string]bool),
		Status:          types.MatchPending,
	}
}

func TestAcceptUntilConfirmed(t *testing.T) {
	r := NewRegistry()
	r.Add(testMatch("m1", time.Now().Add(time.Minute)))

	for _, id := range []string{"a", "b", "c"} {
		m, confirmed, ok := r.Accept(id)
		require.True(t, ok)
		assert.False(t, confirmed)
		assert.Equal(t, types.MatchPending, m.Status)
	}

	m, confirmed, ok := r.Accept("d")
	require.True(t, ok)
	assert.True(t, confirmed)
	assert.Equal(t, types.MatchConfirmed, m.Status)
}

func TestAcceptIdempotentWhilePending(t *testing.T) {
	r := NewRegistry()
	r.Add(testMatch("m1", time.Now().Add(time.Minute)))

	_, _, ok := r.Accept("a")
	require.True(t, ok)
	m, confirmed, ok := r.Accept("a")
	require.True(t, ok)
	assert.False(t, confirmed)
	assert.Len(t, m.AcceptedPlayers, 1)
}

func TestAcceptFailsOutsidePending(t *testing.T) {
	r := NewRegistry()
	_, _, ok := r.Accept("ghost")
	assert.False(t, ok)

	r.Add(testMatch("m1", time.Now().Add(time.Minute)))
	for _, id := range []string{"a", "b", "c", "d"} {
		r.Accept(id)
	}
	// confirmed, further accepts are rejected
	_, _, ok = r.Accept("a")
	assert.False(t, ok)
}

func TestExpireCancelsOnlyOverduePending(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	r.Add(testMatch("overdue", now.Add(-time.Second)))
	fresh := testMatch("fresh", now.Add(time.Minute))
	fresh.Players = []string{"e", "f", "g", "h"}
	r.Add(fresh)

	cancelled := r.Expire(now)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "overdue", cancelled[0].ID)
	assert.Equal(t, types.MatchCancelled, cancelled[0].Status)

	// mappings for the cancelled match are gone, the match itself remains
	assert.False(t, r.HasPlayer("a"))
	assert.True(t, r.HasPlayer("e"))
	m, ok := r.Get("overdue")
	require.True(t, ok)
	assert.Equal(t, types.MatchCancelled, m.Status)
}

func TestExpireLeavesConfirmedAlone(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	r.Add(testMatch("m1", now.Add(-time.Second)))
	for _, id := range []string{"a", "b", "c", "d"} {
		r.Accept(id)
	}

	assert.Empty(t, r.Expire(now))
	m, _ := r.Get("m1")
	assert.Equal(t, types.MatchConfirmed, m.Status)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	r := NewRegistry()
	r.Add(testMatch("m1", time.Now().Add(time.Minute)))

	_, ok := r.Complete("m1")
	assert.False(t, ok, "pending match must not complete")
	_, ok = r.Complete("unknown")
	assert.False(t, ok)

	for _, id := range []string{"a", "b", "c", "d"} {
		r.Accept(id)
	}
	m, ok := r.Complete("m1")
	require.True(t, ok)
	assert.Equal(t, types.MatchCompleted, m.Status)
	assert.False(t, r.HasPlayer("a"))

	_, ok = r.Complete("m1")
	assert.False(t, ok, "completion is one-way")
}

func TestCompleteRejectsMalformedMatch(t *testing.T) {
	r := NewRegistry()
	m := testMatch("m1", time.Now().Add(time.Minute))
	m.Players = m.Players[:3]
	m.Status = types.MatchConfirmed
	r.Add(m)

	_, ok := r.Complete("m1")
	assert.False(t, ok)
}

func TestPruneTerminal(t *testing.T) {
	now := time.Now()
	r := NewRegistry()

	old := testMatch("old", now.Add(-time.Hour))
	r.Add(old)
	r.Expire(now)

	fresh := testMatch("fresh", now.Add(2*time.Minute))
	fresh.Players = []string{"e", "f", "g", "h"}
	r.Add(fresh)

	assert.Equal(t, 1, r.PruneTerminal(now.Add(-time.Minute)))
	_, ok := r.Get("old")
	assert.False(t, ok)
	_, ok = r.Get("fresh")
	assert.True(t, ok)
}

func TestMatchForPlayerReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add(testMatch("m1", time.Now().Add(time.Minute)))

	m, ok := r.MatchForPlayer("b")
	require.True(t, ok)
	m.AcceptedPlayers["b"] = true
	m.Players[0] = "tampered"

	again, _ := r.MatchForPlayer("b")
	assert.Empty(t, again.AcceptedPlayers)
	assert.Equal(t, "a", again.Players[0])
}
