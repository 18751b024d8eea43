package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
)

// ExpiryFunc receives the id of an infraction whose duration has elapsed.
type ExpiryFunc func(infractionID int64)

// Scheduler keeps one pending timer per active finite-duration infraction
// and fires the deactivation callback exactly once per tracked id. Its
// registry is a derived cache: the store stays the single source of truth
// for "is this infraction active", and Reconcile rebuilds the registry from
// it after a restart.
type Scheduler struct {
	store repositories.InfractionRepository

	mu     sync.Mutex
	timers map[int64]*time.Timer
	fire   ExpiryFunc

	now func() time.Time
}

func NewScheduler(store repositories.InfractionRepository) *Scheduler {
	return &Scheduler{
		store:  store,
		timers: make(map[int64]*time.Timer),
		now:    time.Now,
	}
}

// OnExpire registers the deactivation entry point. Must be called before
// Track or Reconcile.
func (s *Scheduler) OnExpire(fn ExpiryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire = fn
}

// Track registers a timer firing at the infraction's expiry. Instant and
// permanent infractions are never tracked. An expiry already in the past
// still fires, on the timer goroutine rather than synchronously, so that
// stale records found at startup go through the ordinary deactivation path.
func (s *Scheduler) Track(infraction *models.Infraction) {
	if infraction.IsInstant() || infraction.IsPermanent() {
		return
	}

	delay := infraction.ExpiresAt().Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, tracked := s.timers[infraction.ID]; tracked {
		return
	}

	id := infraction.ID
	s.timers[id] = time.AfterFunc(delay, func() {
		s.fireExpiry(id)
	})

	slog.Debug("Tracking infraction expiry",
		slog.String("type", "mod"),
		slog.Int64("infraction_id", id),
		slog.Duration("in", delay))
}

func (s *Scheduler) fireExpiry(id int64) {
	s.mu.Lock()
	// A concurrent Cancel that won the race already removed the entry;
	// in that case the timer fired for nothing and must not call out.
	if _, tracked := s.timers[id]; !tracked {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	fire := s.fire
	s.mu.Unlock()

	if fire != nil {
		fire(id)
	}
}

// Cancel removes the pending timer for an infraction. Safe to call on an
// untracked id.
func (s *Scheduler) Cancel(infractionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, tracked := s.timers[infractionID]; tracked {
		timer.Stop()
		delete(s.timers, infractionID)
	}
}

// Reconcile rebuilds the registry from the store's active infractions. It
// must complete before any command-initiated apply runs, otherwise the same
// infraction could end up scheduled twice.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	infractions, err := s.store.GetAllActive(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load active infractions: %w", err)
	}

	tracked := 0
	for _, infraction := range infractions {
		if infraction.IsInstant() || infraction.IsPermanent() {
			continue
		}
		s.Track(infraction)
		tracked++
	}

	slog.Info("Rescheduled infraction expirations",
		slog.String("type", "mod"),
		slog.Int("active", len(infractions)),
		slog.Int("tracked", tracked))
	return nil
}

// Pending returns the number of tracked expirations.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown stops all pending timers.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	slog.Info("Infraction scheduler shut down", slog.String("type", "mod"))
}
