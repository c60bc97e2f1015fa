package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AppSessionStore keeps login sessions in Redis. The session ID is the
// opaque token handed back by /api/auth/login.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	PersonnelID string `json:"pid"`
	Role        string `json:"role"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}

func key(id string) string         { return fmt.Sprintf("tooltrack:sess:%s", id) }
func userSetKey(pid string) string { return fmt.Sprintf("tooltrack:user_sessions:%s", pid) }

func (s *AppSessionStore) Create(ctx context.Context, id, personnelID, role string) error {
	now := time.Now()
	b, _ := json.Marshal(AppSession{
		PersonnelID: personnelID,
		Role:        role,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(personnelID), id)
	pipe.Expire(ctx, userSetKey(personnelID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id) // best effort
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.PersonnelID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForPersonnel drops every session for one person. Used when a
// badge is deactivated.
func (s *AppSessionStore) RevokeAllForPersonnel(ctx context.Context, personnelID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(personnelID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(personnelID))
	_, err = pipe.Exec(ctx)
	return err
}
