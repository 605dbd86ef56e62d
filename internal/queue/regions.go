package queue

import (
	"sort"
	"strings"
	"sync"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// Set holds one FIFO queue of parties per region. Region names match
// case-insensitively; the casing of first use is kept for display.
//
// The set-level lock guards the region map and the player index and is
// taken before any region lock, so membership changes (join, leave,
// drain, restore) are serialized while per-region queues stay
// independently lockable for reads.
type Set struct {
	mu           sync.RWMutex
	regions      map[string]*regionQueue // key: normalized region name
	playerRegion map[string]string       // player id -> normalized region key
}

type regionQueue struct {
	mu      sync.Mutex
	display string
	entries []types.Party
}

func NewSet() *Set {
	return &Set{
		regions:      make(map[string]*regionQueue),
		playerRegion: make(map[string]string),
	}
}

func normalize(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// getOrCreate must be called with s.mu held for writing.
func (s *Set) getOrCreate(region string) *regionQueue {
	key := normalize(region)
	rq, ok := s.regions[key]
	if !ok {
		rq = &regionQueue{display: strings.TrimSpace(region)}
		s.regions[key] = rq
	}
	return rq
}

// Enqueue appends the party to the tail of its region's queue, creating
// the queue on first use. The caller is responsible for membership
// validation; expiry requeues reuse this path with their original
// timestamps intact.
func (s *Set) Enqueue(p types.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.getOrCreate(p.Region)
	key := normalize(p.Region)

	rq.mu.Lock()
	rq.entries = append(rq.entries, p.Clone())
	rq.mu.Unlock()

	for _, id := range p.PlayerIDs {
		s.playerRegion[id] = key
	}
}

// Restore puts parties back at the head of the region's queue in the
// given order, undoing a drain exactly.
func (s *Set) Restore(region string, parties []types.Party) {
	if len(parties) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rq := s.getOrCreate(region)
	key := normalize(region)

	rq.mu.Lock()
	rq.entries = append(append([]types.Party(nil), parties...), rq.entries...)
	rq.mu.Unlock()

	for _, p := range parties {
		for _, id := range p.PlayerIDs {
			s.playerRegion[id] = key
		}
	}
}

// RemoveByPlayer removes the party containing the player, wherever it is
// queued. The whole party leaves with them.
func (s *Set) RemoveByPlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.playerRegion[playerID]
	if !ok {
		return false
	}
	rq := s.regions[key]

	rq.mu.Lock()
	kept := rq.entries[:0]
	var removed *types.Party
	for i := range rq.entries {
		if removed == nil && containsID(rq.entries[i].PlayerIDs, playerID) {
			p := rq.entries[i]
			removed = &p
			continue
		}
		kept = append(kept, rq.entries[i])
	}
	rq.entries = kept
	rq.mu.Unlock()

	if removed == nil {
		// index said queued but the entry is gone; self-heal
		delete(s.playerRegion, playerID)
		return false
	}
	for _, id := range removed.PlayerIDs {
		delete(s.playerRegion, id)
	}
	return true
}

// DrainUpTo pops parties from the head of the region's queue until
// exactly maxPlayers players have been drafted or the queue runs dry.
// A party that would overshoot the target is popped but not kept, and
// the scan continues with later entries. It returns the kept draft and
// the full popped sequence; callers restore popped (or just the
// popped-but-not-kept overflow) to undo. All popped players leave the
// index until restored.
func (s *Set) DrainUpTo(region string, maxPlayers int) (kept, popped []types.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rq, ok := s.regions[normalize(region)]
	if !ok {
		return nil, nil
	}

	rq.mu.Lock()
	total := 0
	for len(rq.entries) > 0 && total < maxPlayers {
		p := rq.entries[0]
		rq.entries = rq.entries[1:]
		popped = append(popped, p)
		if total+p.Size() <= maxPlayers {
			kept = append(kept, p)
			total += p.Size()
		}
	}
	rq.mu.Unlock()

	for _, p := range popped {
		for _, id := range p.PlayerIDs {
			delete(s.playerRegion, id)
		}
	}
	return kept, popped
}

// Contains reports whether the player is currently queued in any region.
func (s *Set) Contains(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.playerRegion[playerID]
	return ok
}

// Size is the total number of queued players across every region.
func (s *Set) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rq := range s.regions {
		rq.mu.Lock()
		for _, p := range rq.entries {
			n += p.Size()
		}
		rq.mu.Unlock()
	}
	return n
}

// Regions lists the display names of every known region, sorted for
// deterministic iteration.
func (s *Set) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.regions))
	for _, rq := range s.regions {
		names = append(names, rq.display)
	}
	sort.Strings(names)
	return names
}

// Entries returns a snapshot of the region's queue in FIFO order.
func (s *Set) Entries(region string) []types.Party {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rq, ok := s.regions[normalize(region)]
	if !ok {
		return nil
	}
	rq.mu.Lock()
	defer rq.mu.Unlock()
	out := make([]types.Party, 0, len(rq.entries))
	for _, p := range rq.entries {
		out = append(out, p.Clone())
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
