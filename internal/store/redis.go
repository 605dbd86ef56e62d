package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// RedisStore persists player ratings. Queues and pending matches are
// deliberately volatile; ratings are the only state the surrounding
// system expects to survive a restart.
type RedisStore struct{ rdb *redis.Client }

const playerKeyPrefix = "mm:player:" // HASH per player: rating, matches_played

func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password})}
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

// SavePlayer implements rating.Saver.
func (s *RedisStore) SavePlayer(ctx context.Context, p types.PlayerRating) error {
	err := s.rdb.HSet(ctx, playerKeyPrefix+p.PlayerID, map[string]any{
		"rating":         p.Rating,
		"matches_played": p.MatchesPlayed,
	}).Err()
	if err != nil {
		return fmt.Errorf("save player %s: %w", p.PlayerID, err)
	}
	return nil
}

func (s *RedisStore) LoadPlayer(ctx context.Context, playerID string) (types.PlayerRating, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, playerKeyPrefix+playerID).Result()
	if err != nil {
		return types.PlayerRating{}, false, fmt.Errorf("load player %s: %w", playerID, err)
	}
	if len(vals) == 0 {
		return types.PlayerRating{}, false, nil
	}
	p := types.PlayerRating{PlayerID: playerID}
	if _, err := fmt.Sscanf(vals["rating"], "%d", &p.Rating); err != nil {
		return types.PlayerRating{}, false, fmt.Errorf("load player %s: bad rating: %w", playerID, err)
	}
	fmt.Sscanf(vals["matches_played"], "%d", &p.MatchesPlayed)
	return p, true, nil
}

// LoadAllPlayers scans every persisted rating, used once at startup to
// reseed the in-memory store.
func (s *RedisStore) LoadAllPlayers(ctx context.Context) ([]types.PlayerRating, error) {
	var out []types.PlayerRating
	iter := s.rdb.Scan(ctx, 0, playerKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), playerKeyPrefix)
		p, ok, err := s.LoadPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan players: %w", err)
	}
	return out, nil
}
