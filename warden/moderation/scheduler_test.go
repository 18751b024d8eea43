package moderation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/moderation/mock"

	"go.uber.org/mock/gomock"
)

func finiteInfraction(id int64, expiresIn time.Duration) *models.Infraction {
	// Duration is whole seconds; shift CreatedAt so ExpiresAt lands at the
	// requested offset without needing multi-second test runtimes.
	return &models.Infraction{
		ID:        id,
		UserID:    "42",
		ActorID:   "7",
		Type:      models.InfractionTypeBan,
		CreatedAt: time.Now().Add(expiresIn - time.Second),
		Duration:  1,
		Active:    true,
	}
}

func TestScheduler_TrackIgnoresInstantAndPermanent(t *testing.T) {
	s := NewScheduler(nil)
	s.OnExpire(func(int64) { t.Error("nothing should fire") })

	s.Track(&models.Infraction{ID: 1, Duration: 0, CreatedAt: time.Now(), Active: true})
	s.Track(&models.Infraction{ID: 2, Duration: models.PermanentDuration, CreatedAt: time.Now(), Active: true})

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
}

func TestScheduler_FiresExactlyOnce(t *testing.T) {
	s := NewScheduler(nil)

	var fires atomic.Int32
	fired := make(chan int64, 4)
	s.OnExpire(func(id int64) {
		fires.Add(1)
		fired <- id
	})

	inf := finiteInfraction(10, 50*time.Millisecond)
	s.Track(inf)
	s.Track(inf) // double-track must not double-schedule

	select {
	case id := <-fired:
		if id != 10 {
			t.Errorf("fired id = %d, want 10", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	time.Sleep(100 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after fire, want 0", got)
	}
}

func TestScheduler_PastExpiryStillFires(t *testing.T) {
	s := NewScheduler(nil)

	fired := make(chan int64, 1)
	s.OnExpire(func(id int64) { fired <- id })

	s.Track(finiteInfraction(11, -time.Hour))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("past-expiry infraction never fired")
	}
}

func TestScheduler_CancelPreventsFire(t *testing.T) {
	s := NewScheduler(nil)

	s.OnExpire(func(id int64) { t.Errorf("cancelled timer fired for %d", id) })

	s.Track(finiteInfraction(12, 100*time.Millisecond))
	s.Cancel(12)

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after cancel, want 0", got)
	}

	time.Sleep(250 * time.Millisecond)
}

func TestScheduler_CancelUntrackedIsNoop(t *testing.T) {
	s := NewScheduler(nil)
	s.Cancel(999)
}

func TestScheduler_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockInfractionRepository(ctrl)

	expired := finiteInfraction(20, -time.Minute)
	pending := finiteInfraction(21, time.Hour)
	instant := &models.Infraction{ID: 22, Duration: 0, CreatedAt: time.Now()}
	permanent := &models.Infraction{ID: 23, Duration: models.PermanentDuration, CreatedAt: time.Now(), Active: true}

	store.EXPECT().
		GetAllActive(gomock.Any(), gomock.Nil()).
		Return([]*models.Infraction{expired, pending, instant, permanent}, nil)

	s := NewScheduler(store)

	var fires atomic.Int32
	fired := make(chan int64, 4)
	s.OnExpire(func(id int64) {
		fires.Add(1)
		fired <- id
	})

	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	// Only the already-expired record fires; the hour-away one stays pending.
	select {
	case id := <-fired:
		if id != 20 {
			t.Errorf("fired id = %d, want 20", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expired infraction was not deactivated after reconcile")
	}

	time.Sleep(100 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("fired %d times, want exactly 1", got)
	}
	if got := s.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}

	s.Shutdown()
	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after shutdown, want 0", got)
	}
}

func TestScheduler_CancelFireRaceIsHarmless(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := NewScheduler(nil)

		var fires atomic.Int32
		s.OnExpire(func(int64) { fires.Add(1) })

		s.Track(finiteInfraction(30, time.Millisecond))
		time.Sleep(time.Millisecond)
		s.Cancel(30)

		time.Sleep(10 * time.Millisecond)
		if got := fires.Load(); got > 1 {
			t.Fatalf("fired %d times, want at most 1", got)
		}
	}
}
