package session

import (
	"context"
	"sync"
	"time"

	"github.com/BerylCAtieno/destiny-match/internal/analysis"
	"github.com/BerylCAtieno/destiny-match/internal/payment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session binds one visitor to a Sequencer and the checkout attempt of the
// current Payment screen, if any.
type Session struct {
	ID  string
	Seq *Sequencer

	mu       sync.Mutex
	gate     *payment.Gate
	lastSeen time.Time
}

func (s *Session) SetGate(g *payment.Gate) {
	s.mu.Lock()
	s.gate = g
	s.mu.Unlock()
}

// Gate returns the current checkout gate or nil.
func (s *Session) Gate() *payment.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

func (s *Session) ClearGate() {
	s.SetGate(nil)
}

// ReleaseGate clears g if it is still the session's current gate.
func (s *Session) ReleaseGate(g *payment.Gate) {
	s.mu.Lock()
	if s.gate == g {
		s.gate = nil
	}
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	analyzer analysis.Analyzer
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(analyzer analysis.Analyzer, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		analyzer: analyzer,
		ttl:      ttl,
		logger:   logger.Named("session"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Create() *Session {
	id := uuid.NewString()
	s := &Session{
		ID:       id,
		Seq:      NewSequencer(st.analyzer, st.logger.With(zap.String("session_id", id))),
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	st.logger.Debug("session created", zap.String("session_id", id))
	return s
}

// Get returns the session and marks it as active.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if ok {
		s.touch(st.now())
	}
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the TTL. Sessions waiting on an
// analysis are kept so the result has somewhere to land.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().After(cutoff) || s.Seq.Screen() == Analyzing {
			continue
		}
		delete(st.sessions, id)
		removed++
	}
	if removed > 0 {
		st.logger.Info("expired idle sessions", zap.Int("removed", removed), zap.Int("remaining", len(st.sessions)))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st.Sweep()
		}
	}
}
