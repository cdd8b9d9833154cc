// Package session collects the three per-user uploads that trigger a
// pipeline run, and owns the lifetime of their temporary files.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/mgetnet/faydagen/internal/errors"
	"github.com/mgetnet/faydagen/internal/metrics"
)

// RequiredImages is the trigger threshold: front page, back page, photo+QR.
const RequiredImages = 3

type State int

const (
	StateCollecting State = iota
	StateReady
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateReady:
		return "ready"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Session accumulates uploaded image paths for one user. It is mutated only
// by the Store under its lock.
type Session struct {
	UserID    int64
	Images    []string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the keyed session table. It is the sole owner of session
// lifetime: sessions are created on first interaction and removed, with
// their temp files, on completion, failure, cancellation or expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	tempDir  string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewStore(tempDir string, logger *zap.Logger, m *metrics.Metrics) (*Store, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &Store{
		sessions: make(map[int64]*Session),
		tempDir:  tempDir,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Start creates a fresh session for the user, discarding any half-collected
// one along with its files.
func (s *Store) Start(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(userID)
	s.createLocked(userID)
}

func (s *Store) createLocked(userID int64) *Session {
	now := s.now()
	sess := &Session{UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.sessions[userID] = sess
	s.metrics.SessionsStarted.Inc()
	s.logger.Info("Session started", zap.Int64("user_id", userID))
	return sess
}

// ImagePath returns a fresh temp path owned by the user's session.
func (s *Store) ImagePath(userID int64) string {
	return filepath.Join(s.tempDir, fmt.Sprintf("user_%d_%s.png", userID, uuid.NewString()))
}

// AddImage records an accepted upload. It returns the image count and
// whether this upload moved the session to Ready; Ready is reported exactly
// once, so the caller triggers the pipeline exactly once.
func (s *Store) AddImage(userID int64, path string) (count int, ready bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = s.createLocked(userID)
	}
	if sess.State != StateCollecting {
		return len(sess.Images), false, apperrors.ErrSessionImageCap
	}

	sess.Images = append(sess.Images, path)
	sess.UpdatedAt = s.now()
	s.metrics.ImagesReceived.Inc()

	if len(sess.Images) == RequiredImages {
		sess.State = StateReady
		return RequiredImages, true, nil
	}
	return len(sess.Images), false, nil
}

// Images returns the collected paths for a Ready session.
func (s *Store) Images(userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	paths := make([]string, len(sess.Images))
	copy(paths, sess.Images)
	return paths, nil
}

// Get returns a copy of the user's session.
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	copied := *sess
	copied.Images = append([]string(nil), sess.Images...)
	return copied, true
}

// Finish transitions the session to Complete or Failed and performs the
// mandatory cleanup: every session-owned temp file is deleted and the record
// removed, regardless of pipeline outcome.
func (s *Store) Finish(userID int64, final State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.State = final
	}
	s.removeLocked(userID)
}

// Cancel discards a session on user request.
func (s *Store) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	s.removeLocked(userID)
	return ok
}

// SweepStale removes sessions idle past ttl and returns how many were
// removed. Abandoned uploads must not leak temp files.
func (s *Store) SweepStale(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for userID, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			s.removeLocked(userID)
			removed++
		}
	}
	if removed > 0 {
		s.metrics.SessionsExpired.Add(float64(removed))
		s.logger.Info("Swept stale sessions", zap.Int("removed", removed))
	}
	return removed
}

func (s *Store) removeLocked(userID int64) {
	if _, ok := s.sessions[userID]; !ok {
		return
	}
	delete(s.sessions, userID)

	pattern := filepath.Join(s.tempDir, fmt.Sprintf("user_%d_*", userID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		s.logger.Warn("Session cleanup glob failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove session file", zap.String("path", path), zap.Error(err))
		}
	}
	s.logger.Debug("Session cleaned up", zap.Int64("user_id", userID), zap.Int("files", len(matches)))
}
