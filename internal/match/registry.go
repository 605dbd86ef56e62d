package match

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// Registry tracks every match the engine has created, plus the mapping
// from player id to their current (non-terminal) match. Terminal
// matches stay around until pruned.
type Registry struct {
	mu          sync.RWMutex
	matches     map[string]*types.Match
	playerMatch map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		matches:     make(map[string]*types.Match),
		playerMatch: make(map[string]string),
	}
}

// Add registers a freshly created match and maps all its players to it.
func (r *Registry) Add(m types.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := m.Clone()
	r.matches[cp.ID] = &cp
	for _, id := range cp.Players {
		r.playerMatch[id] = cp.ID
	}
}

// Get returns a copy of the match with the given id.
func (r *Registry) Get(matchID string) (types.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[matchID]
	if !ok {
		return types.Match{}, false
	}
	return m.Clone(), true
}

// MatchForPlayer returns a copy of the match the player is currently
// mapped to, if any.
func (r *Registry) MatchForPlayer(playerID string) (types.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.playerMatch[playerID]
	if !ok {
		return types.Match{}, false
	}
	m, ok := r.matches[id]
	if !ok {
		return types.Match{}, false
	}
	return m.Clone(), true
}

// HasPlayer reports whether the player is in an active match.
func (r *Registry) HasPlayer(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.playerMatch[playerID]
	return ok
}

// Accept records the player's acceptance of their pending match.
// Accepting twice is a harmless no-op. When the last player accepts,
// the match transitions to Confirmed; confirmed reports whether this
// call caused that transition.
func (r *Registry) Accept(playerID string) (m types.Match, confirmed, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, tracked := r.playerMatch[playerID]
	if !tracked {
		return types.Match{}, false, false
	}
	mm, found := r.matches[id]
	if !found || mm.Status != types.MatchPending {
		return types.Match{}, false, false
	}

	mm.AcceptedPlayers[playerID] = true
	if len(mm.AcceptedPlayers) == len(mm.Players) {
		mm.Status = types.MatchConfirmed
		confirmed = true
	}
	return mm.Clone(), confirmed, true
}

// Expire cancels every pending match whose acceptance window has
// closed, clears its player mappings, and returns copies of the
// cancelled matches so their original parties can be requeued.
func (r *Registry) Expire(now time.Time) []types.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cancelled []types.Match
	for _, m := range r.matches {
		if m.Status != types.MatchPending || !m.ExpiresAt.Before(now) {
			continue
		}
		m.Status = types.MatchCancelled
		for _, id := range m.Players {
			delete(r.playerMatch, id)
		}
		cancelled = append(cancelled, m.Clone())
	}
	return cancelled
}

// Complete transitions a confirmed match to Completed and clears its
// player mappings. It fails on unknown matches, matches outside the
// Confirmed state, and — as a logged defect — matches whose player
// list is malformed.
func (r *Registry) Complete(matchID string) (types.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok || m.Status != types.MatchConfirmed {
		return types.Match{}, false
	}
	if len(m.Players) != matchSize {
		log.Error().Str("match_id", matchID).Int("players", len(m.Players)).
			Msg("match has invalid player count at result report")
		return types.Match{}, false
	}

	m.Status = types.MatchCompleted
	for _, id := range m.Players {
		delete(r.playerMatch, id)
	}
	return m.Clone(), true
}

// PruneTerminal drops cancelled and completed matches created before
// the cutoff, returning how many were removed.
func (r *Registry) PruneTerminal(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, m := range r.matches {
		if m.Status.Terminal() && m.CreatedAt.Before(cutoff) {
			delete(r.matches, id)
			n++
		}
	}
	return n
}

// Len is the number of tracked matches, terminal ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
