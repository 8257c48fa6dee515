// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/poiesic/parley/core"
)

const (
	// DefaultTTL is the idle lifetime of a session. A session untouched
	// for this long is evicted.
	DefaultTTL = 7200 * time.Second

	defaultSweepInterval = 5 * time.Minute
)

// Store holds chat histories keyed by session id, backed by an expiring
// in-memory cache. All mutations for one session id are serialized.
type Store struct {
	cache    *gocache.Cache
	ttl      time.Duration
	maxTurns int
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Store) error

// WithTTL sets the idle lifetime for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		if ttl <= 0 {
			return fmt.Errorf("session TTL must be positive, got %v", ttl)
		}
		s.ttl = ttl
		return nil
	}
}

// WithSweepInterval sets how often expired sessions are purged.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Store) error {
		if interval <= 0 {
			return fmt.Errorf("sweep interval must be positive, got %v", interval)
		}
		s.cache = gocache.New(s.ttl, interval)
		return nil
	}
}

// WithMaxTurns caps history length in conversation turns, where one turn is
// a human message and its assistant reply. Zero means unlimited.
func WithMaxTurns(turns int) Option {
	return func(s *Store) error {
		if turns < 0 {
			return fmt.Errorf("max turns must not be negative, got %d", turns)
		}
		s.maxTurns = turns
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		ttl:    DefaultTTL,
		locks:  make(map[string]*sync.Mutex),
		logger: slog.Default().With("component", "session-store"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.cache == nil {
		s.cache = gocache.New(s.ttl, defaultSweepInterval)
	}

	return s, nil
}

// lock returns the mutex guarding one session id, shared across calls for
// the same id. The mutex is not reentrant: exported methods acquire it
// themselves and delegate to the locked variants.
func (s *Store) lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// Ensure creates an empty session for the id if none exists. Calling it on a
// live session is a no-op and does not touch its idle clock.
func (s *Store) Ensure(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return core.ErrEmptySessionID
	}

	lock := s.lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.ensureLocked(sessionID)
	return nil
}

func (s *Store) ensureLocked(sessionID string) {
	if _, ok := s.cache.Get(sessionID); ok {
		return
	}

	s.cache.Set(sessionID, &core.Session{
		Id:        sessionID,
		UpdatedAt: time.Now(),
		TTL:       s.ttl,
	}, s.ttl)

	s.logger.Debug("session created", "session_id", sessionID)
}

// Append adds messages to the session's history in order and refreshes the
// idle clock. When a turn cap is set, only the most recent turns are kept.
func (s *Store) Append(sessionID string, msgs ...core.Message) error {
	for i := range msgs {
		if err := core.ValidateMessage(&msgs[i]); err != nil {
			return err
		}
	}

	lock := s.lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.appendLocked(sessionID, msgs...)
}

func (s *Store) appendLocked(sessionID string, msgs ...core.Message) error {
	current, ok := s.cache.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	prev := current.(*core.Session)

	history := make([]core.Message, 0, len(prev.Messages)+len(msgs))
	history = append(history, prev.Messages...)
	history = append(history, msgs...)
	if s.maxTurns > 0 {
		if keep := 2 * s.maxTurns; len(history) > keep {
			history = history[len(history)-keep:]
		}
	}

	s.cache.Set(sessionID, &core.Session{
		Id:        sessionID,
		Messages:  history,
		UpdatedAt: time.Now(),
		TTL:       s.ttl,
	}, s.ttl)

	return nil
}

// Update runs fn with a copy of the session's history and appends the
// messages fn returns, all as one atomic step: no other mutation of the
// session can interleave between the read and the append. The session is
// created when absent. When fn fails nothing is appended and its error is
// returned.
func (s *Store) Update(sessionID string, fn func(history []core.Message) ([]core.Message, error)) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return core.ErrEmptySessionID
	}

	lock := s.lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.ensureLocked(sessionID)
	history, _ := s.Load(sessionID)

	msgs, err := fn(history)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	for i := range msgs {
		if err := core.ValidateMessage(&msgs[i]); err != nil {
			return err
		}
	}
	return s.appendLocked(sessionID, msgs...)
}

// Load returns a copy of the session's history. The second return reports
// whether the session exists; an expired session reads as absent.
func (s *Store) Load(sessionID string) ([]core.Message, bool) {
	current, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, false
	}

	sess := current.(*core.Session)
	history := make([]core.Message, len(sess.Messages))
	copy(history, sess.Messages)
	return history, true
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(sessionID string) bool {
	lock := s.lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	_, ok := s.cache.Get(sessionID)
	if ok {
		s.cache.Delete(sessionID)
		s.logger.Debug("session deleted", "session_id", sessionID)
	}
	return ok
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
