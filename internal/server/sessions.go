package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/internal/history"
	"github.com/iwvelando/cone-expert/pkg/units"
	"go.uber.org/zap"
)

// session owns one calculator and its ledger. mu serializes the session's
// requests so the ledger only ever sees one writer.
type session struct {
	mu       sync.Mutex
	calc     *calculator.Calculator
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	unit     units.Unit
}

func newSessionStore(logger *zap.Logger, ttl time.Duration, unit units.Unit) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		unit:     unit,
	}
}

// acquire returns the session for id, creating one when id is empty, unknown
// or expired. created reports whether the returned id is new.
func (s *sessionStore) acquire(id string) (sessionID string, sess *session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if id != "" {
		if existing, ok := s.sessions[id]; ok {
			existing.lastSeen = now
			return id, existing, false
		}
	}

	sessionID = uuid.New().String()
	sess = &session{
		calc:     calculator.New(s.logger.With(zap.String("session", sessionID)), history.New(), s.unit),
		lastSeen: now,
	}
	s.sessions[sessionID] = sess
	s.logger.Debug("session created",
		zap.String("op", "server.sessionStore.acquire"),
		zap.String("session", sessionID),
		zap.Int("active", len(s.sessions)),
	)
	return sessionID, sess, true
}

func (s *sessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			s.logger.Debug("session expired",
				zap.String("op", "server.sessionStore.sweep"),
				zap.String("session", id),
			)
		}
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
