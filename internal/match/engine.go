package match

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/metrics"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/queue"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/rating"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// 2v2: four players, first two ids form team 1.
const (
	matchSize = 4
	teamSize  = 2
)

// Broadcaster pushes lifecycle events to connected clients.
type Broadcaster interface {
	Broadcast(ev types.Event)
}

// Config tunes the engine's timing behavior.
type Config struct {
	// TickInterval is the scheduler period.
	TickInterval time.Duration
	// AcceptTimeout is how long a pending match waits for all accepts.
	AcceptTimeout time.Duration
	// MatchRetention bounds how long terminal matches are kept.
	// Zero keeps them forever.
	MatchRetention time.Duration
}

func (c *Config) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = 120 * time.Second
	}
}

// Engine is the matchmaking core: it owns the region queues and the
// match registry, consults the rating store, and exposes the operations
// the HTTP layer calls.
//
// The engine mutex serializes membership transitions (join, leave,
// match formation, expiry requeue) so a player can never be both queued
// and matched. Accept, result reporting and lookups only need the
// registry's own lock.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	queues   *queue.Set
	registry *Registry
	ratings  *rating.Store
	hub      Broadcaster
	now      func() time.Time
}

// NewEngine wires an engine around the given rating store. hub may be nil.
func NewEngine(cfg Config, ratings *rating.Store, hub Broadcaster) *Engine {
	cfg.applyDefaults()
	return &Engine{
		cfg:      cfg,
		queues:   queue.NewSet(),
		registry: NewRegistry(),
		ratings:  ratings,
		hub:      hub,
		now:      time.Now,
	}
}

// JoinParty queues a party of 1-2 players in the given region. The
// client-supplied ratings only seed players the rating store has never
// seen; the server's rating always wins otherwise. It fails on invalid
// input and when any member is already queued or in an active match.
func (e *Engine) JoinParty(ctx context.Context, playerIDs []string, region string, initialRatings map[string]int) bool {
	if len(playerIDs) == 0 || len(playerIDs) > teamSize {
		return false
	}
	region = strings.TrimSpace(region)
	if region == "" {
		return false
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return false
		}
		seen[id] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range playerIDs {
		if e.queues.Contains(id) || e.registry.HasPlayer(id) {
			return false
		}
	}

	snapshot := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		p := e.ratings.GetOrCreate(ctx, id, initialRatings[id])
		snapshot[id] = p.Rating
	}

	e.queues.Enqueue(types.Party{
		PlayerIDs: playerIDs,
		Region:    region,
		Ratings:   snapshot,
		JoinedAt:  e.now(),
	})
	metrics.QueueSize.Set(float64(e.queues.Size()))
	log.Info().Strs("players", playerIDs).Str("region", region).Msg("party queued")
	return true
}

// LeaveQueue removes the player's whole party from whichever region
// queue holds it.
func (e *Engine) LeaveQueue(playerID string) bool {
	if strings.TrimSpace(playerID) == "" {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.queues.RemoveByPlayer(playerID)
	if removed {
		metrics.QueueSize.Set(float64(e.queues.Size()))
		log.Info().Str("player_id", playerID).Msg("party left queue")
	}
	return removed
}

// GetMatchForPlayer returns the player's current match, if any.
func (e *Engine) GetMatchForPlayer(playerID string) (types.Match, bool) {
	return e.registry.MatchForPlayer(playerID)
}

// GetMatch returns the match with the given id, terminal ones included.
func (e *Engine) GetMatch(matchID string) (types.Match, bool) {
	return e.registry.Get(matchID)
}

// AcceptMatch records the player's acceptance of their pending match.
func (e *Engine) AcceptMatch(playerID string) bool {
	m, confirmed, ok := e.registry.Accept(playerID)
	if !ok {
		return false
	}
	if confirmed {
		metrics.MatchesConfirmed.Inc()
		e.broadcast("match_confirmed", m)
		log.Info().Str("match_id", m.ID).Msg("match confirmed")
	}
	return true
}

// QueueSize is the total number of players waiting across all regions.
func (e *Engine) QueueSize() int {
	return e.queues.Size()
}

// TryFormMatch attempts to build one match. It walks the regions in
// order, drains up to four players' worth of parties from each, and
// commits the first draft whose rating spread fits inside the strictest
// party tolerance. Failed attempts put every drained party back in its
// original position.
func (e *Engine) TryFormMatch() (types.Match, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for _, region := range e.queues.Regions() {
		kept, popped := e.queues.DrainUpTo(region, matchSize)
		if len(popped) == 0 {
			continue
		}

		total := 0
		for _, p := range kept {
			total += p.Size()
		}
		if total != matchSize {
			e.queues.Restore(region, popped)
			continue
		}

		spread := ratingSpread(kept)
		tolerance := minTolerance(kept, now)
		if spread > tolerance {
			e.queues.Restore(region, popped)
			continue
		}

		// Overflow parties were drained past but not drafted; the draft
		// is consumed, so they go back to the front.
		e.queues.Restore(region, overflow(kept, popped))

		players := make([]string, 0, matchSize)
		for _, p := range kept {
			players = append(players, p.PlayerIDs...)
		}
		m := types.Match{
			ID:              strings.ReplaceAll(uuid.NewString(), "-", ""),
			Players:         players,
			Region:          region,
			CreatedAt:       now,
			ExpiresAt:       now.Add(e.cfg.AcceptTimeout),
			AcceptedPlayers: make(map[string]bool),
			Status:          types.MatchPending,
			OriginalParties: kept,
		}
		e.registry.Add(m)

		metrics.MatchesFormed.Inc()
		metrics.QueueSize.Set(float64(e.queues.Size()))
		e.broadcast("match_found", m.Clone())
		log.Info().Str("match_id", m.ID).Str("region", region).
			Int("spread", spread).Int("tolerance", tolerance).
			Msg("match formed")
		return m.Clone(), true
	}
	return types.Match{}, false
}

// ReportMatchResult applies the result of a confirmed match: both teams
// get the Elo adjustment computed from their team mean ratings, every
// teammate receiving the same delta, and the match becomes Completed.
func (e *Engine) ReportMatchResult(ctx context.Context, matchID string, winningTeam int) bool {
	if winningTeam != 1 && winningTeam != 2 {
		return false
	}
	m, ok := e.registry.Get(matchID)
	if !ok || m.Status != types.MatchConfirmed {
		return false
	}

	current := make(map[string]int, len(m.Players))
	for _, id := range m.Players {
		p, found := e.ratings.Get(id)
		if !found {
			log.Error().Str("match_id", matchID).Str("player_id", id).
				Msg("matched player missing from rating store")
			return false
		}
		current[id] = p.Rating
	}

	// Transition first so a concurrent duplicate report loses the race
	// and never double-applies ratings.
	m, ok = e.registry.Complete(matchID)
	if !ok {
		return false
	}

	teamA, teamB := m.Players[:teamSize], m.Players[teamSize:]
	meanA, meanB := teamMean(teamA, current), teamMean(teamB, current)

	scoreA, scoreB := 0.0, 1.0
	if winningTeam == 1 {
		scoreA, scoreB = 1.0, 0.0
	}
	deltaA := rating.Delta(scoreA, rating.Expected(meanA, meanB))
	deltaB := rating.Delta(scoreB, rating.Expected(meanB, meanA))

	for _, id := range teamA {
		e.ratings.ApplyDelta(ctx, id, deltaA)
	}
	for _, id := range teamB {
		e.ratings.ApplyDelta(ctx, id, deltaB)
	}

	metrics.MatchesCompleted.Inc()
	e.broadcast("match_completed", m)
	log.Info().Str("match_id", matchID).Int("winning_team", winningTeam).
		Int("delta_team1", deltaA).Int("delta_team2", deltaB).
		Msg("match result applied")
	return true
}

// sweepExpired cancels pending matches past their acceptance window and
// puts their original parties back in the queue with the enqueue
// timestamps they joined with, so accrued tolerance survives.
func (e *Engine) sweepExpired() {
	e.mu.Lock()
	defer e.mu.Unlock()

	cancelled := e.registry.Expire(e.now())
	for _, m := range cancelled {
		for _, p := range m.OriginalParties {
			e.queues.Enqueue(p)
		}
		metrics.MatchesCancelled.Inc()
		e.broadcast("match_cancelled", m)
		log.Info().Str("match_id", m.ID).Msg("match expired, parties requeued")
	}
	if len(cancelled) > 0 {
		metrics.QueueSize.Set(float64(e.queues.Size()))
	}
}

// Run drives matching and expiry on a fixed tick until ctx is
// cancelled. The tick body is sequential, so ticks never overlap.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	log.Info().Dur("interval", e.cfg.TickInterval).Msg("matchmaking loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("matchmaking loop stopped")
			return
		case <-ticker.C:
			e.TryFormMatch()
			e.sweepExpired()
			if e.cfg.MatchRetention > 0 {
				if n := e.registry.PruneTerminal(e.now().Add(-e.cfg.MatchRetention)); n > 0 {
					log.Debug().Int("pruned", n).Msg("old matches dropped")
				}
			}
			metrics.QueueSize.Set(float64(e.queues.Size()))
		}
	}
}

func (e *Engine) broadcast(eventType string, m types.Match) {
	if e.hub == nil {
		return
	}
	e.hub.Broadcast(types.Event{Type: eventType, Payload: m})
}

func ratingSpread(parties []types.Party) int {
	first := true
	var lo, hi int
	for _, p := range parties {
		for _, r := range p.Ratings {
			if first || r < lo {
				lo = r
			}
			if first || r > hi {
				hi = r
			}
			first = false
		}
	}
	return hi - lo
}

func minTolerance(parties []types.Party, now time.Time) int {
	min := 0
	for i, p := range parties {
		t := p.Tolerance(now)
		if i == 0 || t < min {
			min = t
		}
	}
	return min
}

// overflow returns the popped parties that were not drafted, in order.
// kept is a subsequence of popped, so a single walk suffices; parties
// are identified by their first player id, which is unique queue-wide.
func overflow(kept, popped []types.Party) []types.Party {
	var out []types.Party
	k := 0
	for _, p := range popped {
		if k < len(kept) && kept[k].PlayerIDs[0] == p.PlayerIDs[0] {
			k++
			continue
		}
		out = append(out, p)
	}
	return out
}

func teamMean(ids []string, ratings map[string]int) float64 {
	sum := 0
	for _, id := range ids {
		sum += ratings[id]
	}
	return float64(sum) / float64(len(ids))
}
