package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

type recordingSaver struct {
	saved []types.PlayerRating
}

func (s *recordingSaver) SavePlayer(_ context.Context, p types.PlayerRating) error {
	s.saved = append(s.saved, p)
	return nil
}

func TestGetOrCreateDefaults(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	p := s.GetOrCreate(ctx, "alice", 0)
	assert.Equal(t, DefaultRating, p.Rating)
	assert.Equal(t, 0, p.MatchesPlayed)

	p = s.GetOrCreate(ctx, "bob", 1800)
	assert.Equal(t, 1800, p.Rating)
}

func TestClientRatingOnlyAdvisory(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	first := s.GetOrCreate(ctx, "alice", 1700)
	require.Equal(t, 1700, first.Rating)

	// a later join with a different claimed rating changes nothing
	again := s.GetOrCreate(ctx, "alice", 900)
	assert.Equal(t, 1700, again.Rating)
}

func TestApplyDelta(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.GetOrCreate(ctx, "alice", 1500)

	require.True(t, s.ApplyDelta(ctx, "alice", 8))
	require.True(t, s.ApplyDelta(ctx, "alice", -24))

	p, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 1484, p.Rating)
	assert.Equal(t, 2, p.MatchesPlayed)

	assert.False(t, s.ApplyDelta(ctx, "nobody", 8))
}

func TestMutationsHitSaver(t *testing.T) {
	saver := &recordingSaver{}
	s := NewStore(saver)
	ctx := context.Background()

	s.GetOrCreate(ctx, "alice", 1500)
	s.ApplyDelta(ctx, "alice", 16)

	require.Len(t, saver.saved, 2)
	assert.Equal(t, 1500, saver.saved[0].Rating)
	assert.Equal(t, 1516, saver.saved[1].Rating)
	assert.Equal(t, 1, saver.saved[1].MatchesPlayed)
}

func TestSeedSkipsExisting(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.GetOrCreate(ctx, "alice", 1600)

	s.Seed([]types.PlayerRating{
		{PlayerID: "alice", Rating: 1000, MatchesPlayed: 5},
		{PlayerID: "bob", Rating: 1400, MatchesPlayed: 2},
	})

	alice, _ := s.Get("alice")
	assert.Equal(t, 1600, alice.Rating)

	bob, ok := s.Get("bob")
	require.True(t, ok)
	assert.Equal(t, 1400, bob.Rating)
	assert.Equal(t, 2, bob.MatchesPlayed)
}
