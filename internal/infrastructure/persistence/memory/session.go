package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

type session struct {
	data      map[string]string
	expiresAt time.Time
}

// SessionStore 会话与Token黑名单
// 与redis.SessionStore行为一致，进程重启后全部失效
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]session
	blacklist map[string]time.Time
	now       func() time.Time
}

// NewSessionStore 创建进程内会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[uint]session),
		blacklist: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID uint, data map[string]any, ttl time.Duration) error {
	values := make(map[string]string, len(data))
	for k, v := range data {
		values[k] = fmt.Sprint(v)
	}
	s.mu.Lock()
	s.sessions[userID] = session{data: values, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || !s.now().Before(sess.expiresAt) {
		delete(s.sessions, userID)
		return nil, apperrors.ErrUnauthorized
	}
	return maps.Clone(sess.data), nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// 顺便清理已过期的条目
	for t, exp := range s.blacklist {
		if !now.Before(exp) {
			delete(s.blacklist, t)
		}
	}
	s.blacklist[token] = now.Add(ttl)
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.blacklist[token]
	return ok && s.now().Before(exp), nil
}
