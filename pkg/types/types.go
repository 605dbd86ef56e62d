package types

import "time"

// Party is a group of 1-2 players queued together. It is matched or
// removed as a unit and carries the rating snapshot taken at enqueue time.
type Party struct {
	PlayerIDs []string       `json:"player_ids"`
	Region    string         `json:"region"`
	Ratings   map[string]int `json:"ratings"`
	JoinedAt  time.Time      `json:"joined_at"`
}

func (p Party) Size() int { return len(p.PlayerIDs) }

const (
	baseTolerance   = 100
	toleranceGrowth = 10 // per second waited
)

// Tolerance is the rating spread this party will accept, widening the
// longer the party has been waiting.
func (p Party) Tolerance(now time.Time) int {
	waited := int(now.Sub(p.JoinedAt).Seconds())
	if waited < 0 {
		waited = 0
	}
	return baseTolerance + waited*toleranceGrowth
}

// Clone returns a deep copy so callers cannot mutate queued state.
func (p Party) Clone() Party {
	cp := p
	cp.PlayerIDs = append([]string(nil), p.PlayerIDs...)
	cp.Ratings = make(map[string]int, len(p.Ratings))
	for id, r := range p.Ratings {
		cp.Ratings[id] = r
	}
	return cp
}

type MatchStatus string

const (
	MatchPending   MatchStatus = "Pending"
	MatchConfirmed MatchStatus = "Confirmed"
	MatchCancelled MatchStatus = "Cancelled"
	MatchCompleted MatchStatus = "Completed"
)

// Terminal reports whether no further transitions are allowed.
func (s MatchStatus) Terminal() bool {
	return s == MatchCancelled || s == MatchCompleted
}

// Match is a proposed (and possibly confirmed/finished) 2v2 game.
// Players holds exactly 4 ids in party concatenation order; the first
// two form team 1, the last two team 2. OriginalParties is kept so a
// cancelled match can restore its parties to the queue.
type Match struct {
	ID              string          `json:"match_id"`
	Players         []string        `json:"players"`
	Region          string          `json:"region"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
	AcceptedPlayers map[string]bool `json:"accepted_players"`
	Status          MatchStatus     `json:"status"`
	OriginalParties []Party         `json:"-"`
}

func (m Match) Clone() Match {
	cp := m
	cp.Players = append([]string(nil), m.Players...)
	cp.AcceptedPlayers = make(map[string]bool, len(m.AcceptedPlayers))
	for id := range m.AcceptedPlayers {
		cp.AcceptedPlayers[id] = true
	}
	cp.OriginalParties = make([]Party, 0, len(m.OriginalParties))
	for _, p := range m.OriginalParties {
		cp.OriginalParties = append(cp.OriginalParties, p.Clone())
	}
	return cp
}

// PlayerRating is the persistent per-player skill state.
type PlayerRating struct {
	PlayerID      string `json:"player_id"`
	Rating        int    `json:"rating"`
	MatchesPlayed int    `json:"matches_played"`
}

type JoinRequest struct {
	PlayerIDs []string       `json:"player_ids"`
	Region    string         `json:"region"`
	Ratings   map[string]int `json:"ratings,omitempty"`
}

type LeaveRequest struct {
	PlayerID string `json:"player_id"`
}

type AcceptRequest struct {
	PlayerID string `json:"player_id"`
}

type ResultRequest struct {
	MatchID     string `json:"match_id"`
	WinningTeam int    `json:"winning_team"`
}

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
