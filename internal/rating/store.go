package rating

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// Saver durably persists a player rating after each mutation. The engine
// itself stays in-memory; persistence failures are logged, never surfaced.
type Saver interface {
	SavePlayer(ctx context.Context, p types.PlayerRating) error
}

// Store holds the authoritative skill state for every known player.
// Players are created on first sight and never deleted.
type Store struct {
	mu      sync.RWMutex
	players map[string]*types.PlayerRating
	saver   Saver
}

// NewStore returns an empty store. saver may be nil.
func NewStore(saver Saver) *Store {
	return &Store{players: make(map[string]*types.PlayerRating), saver: saver}
}

// Seed loads previously persisted ratings, overwriting nothing that is
// already present. Intended for startup restore.
func (s *Store) Seed(players []types.PlayerRating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		if _, ok := s.players[p.PlayerID]; ok {
			continue
		}
		cp := p
		s.players[p.PlayerID] = &cp
	}
}

// GetOrCreate returns the player's rating, creating it when absent.
// initial is advisory: it only seeds a brand-new player, and values
// outside a sane range fall back to the default.
func (s *Store) GetOrCreate(ctx context.Context, playerID string, initial int) types.PlayerRating {
	s.mu.Lock()
	p, ok := s.players[playerID]
	if !ok {
		if initial <= 0 {
			initial = DefaultRating
		}
		p = &types.PlayerRating{PlayerID: playerID, Rating: initial}
		s.players[playerID] = p
	}
	cp := *p
	s.mu.Unlock()

	if !ok {
		s.persist(ctx, cp)
	}
	return cp
}

// Get returns the player's rating without creating it.
func (s *Store) Get(playerID string) (types.PlayerRating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return types.PlayerRating{}, false
	}
	return *p, true
}

// ApplyDelta adjusts the player's rating by delta and bumps the
// completed-match counter. Unknown players are a defect at this point
// in the match lifecycle and are rejected.
func (s *Store) ApplyDelta(ctx context.Context, playerID string, delta int) bool {
	s.mu.Lock()
	p, ok := s.players[playerID]
	if !ok {
		s.mu.Unlock()
		log.Error().Str("player_id", playerID).Msg("rating delta for unknown player")
		return false
	}
	p.Rating += delta
	p.MatchesPlayed++
	cp := *p
	s.mu.Unlock()

	s.persist(ctx, cp)
	return true
}

func (s *Store) persist(ctx context.Context, p types.PlayerRating) {
	if s.saver == nil {
		return
	}
	if err := s.saver.SavePlayer(ctx, p); err != nil {
		log.Warn().Err(err).Str("player_id", p.PlayerID).Msg("persist rating failed")
	}
}
