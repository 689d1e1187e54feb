package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
	"gamehub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

const serverKeyPrefix = "server:"

// ServerListService is the game-server browser backend. Servers announce
// themselves with periodic heartbeats; each entry carries a TTL so servers
// that stop announcing fall out of the listing without a cleanup pass.
type ServerListService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewServerListService(rdb *redis.Client, cfg *config.Config) *ServerListService {
	return &ServerListService{
		rdb: rdb,
		ttl: time.Duration(cfg.ServerHeartbeatTTLSeconds) * time.Second,
	}
}

type HeartbeatRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Map        string `json:"map"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
}

func (s *ServerListService) Heartbeat(ctx context.Context, req HeartbeatRequest) (*model.ServerInfo, error) {
	if req.Name == "" || req.Address == "" {
		return nil, common.ErrValidation
	}
	if req.Players < 0 || req.MaxPlayers < 0 || req.Players > req.MaxPlayers {
		return nil, fmt.Errorf("invalid player counts: %w", common.ErrValidation)
	}

	info := &model.ServerInfo{
		Name:       req.Name,
		Address:    req.Address,
		Map:        req.Map,
		Players:    req.Players,
		MaxPlayers: req.MaxPlayers,
		LastSeen:   time.Now().UTC(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode server entry: %w", err)
	}

	if err := s.rdb.Set(ctx, serverKeyPrefix+req.Address, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store server heartbeat: %w", err)
	}
	return info, nil
}

func (s *ServerListService) List(ctx context.Context) ([]*model.ServerInfo, error) {
	servers := []*model.ServerInfo{}

	iter := s.rdb.Scan(ctx, 0, serverKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Result()
		if err != nil {
			if err == redis.Nil {
				continue // expired between SCAN and GET
			}
			return nil, fmt.Errorf("failed to read server entry: %w", err)
		}
		info := &model.ServerInfo{}
		if err := json.Unmarshal([]byte(raw), info); err != nil {
			continue // skip malformed entries rather than failing the listing
		}
		servers = append(servers, info)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan server directory: %w", err)
	}

	sort.Slice(servers, func(i, j int) bool {
		if servers[i].Players != servers[j].Players {
			return servers[i].Players > servers[j].Players
		}
		return servers[i].Name < servers[j].Name
	})
	return servers, nil
}
