package moderation

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/moderation/mock"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/mock/gomock"
)

type fakeEnforcer struct {
	enforceErr   error
	reverseErr   error
	enforceCalls int
	reverseCalls int
}

func (f *fakeEnforcer) Enforce(context.Context, *models.Infraction) error {
	f.enforceCalls++
	return f.enforceErr
}

func (f *fakeEnforcer) Reverse(context.Context, *models.Infraction) error {
	f.reverseCalls++
	return f.reverseErr
}

type fakeAuthority struct{ allow bool }

func (f *fakeAuthority) CanAct(UserRef, UserRef) bool { return f.allow }

type fakeNotifier struct {
	applied  int
	pardoned int
	delivers bool
}

func (f *fakeNotifier) NotifyApplied(context.Context, *models.Infraction) bool {
	f.applied++
	return f.delivers
}

func (f *fakeNotifier) NotifyPardoned(context.Context, *models.Infraction) bool {
	f.pardoned++
	return f.delivers
}

type coordinatorFixture struct {
	coordinator *Coordinator
	store       *mock.MockInfractionRepository
	enforcer    *fakeEnforcer
	authority   *fakeAuthority
	notifier    *fakeNotifier
	scheduler   *Scheduler
	now         time.Time
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &coordinatorFixture{
		store:     mock.NewMockInfractionRepository(ctrl),
		enforcer:  &fakeEnforcer{},
		authority: &fakeAuthority{allow: true},
		notifier:  &fakeNotifier{delivers: true},
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.scheduler = NewScheduler(f.store)
	f.coordinator = NewCoordinator(f.store, f.enforcer, f.authority, f.notifier, f.scheduler)

	// Pin both clocks so tracked expiries stay in the future for the
	// duration of the test.
	f.coordinator.now = func() time.Time { return f.now }
	f.scheduler.now = func() time.Time { return f.now }
	t.Cleanup(f.scheduler.Shutdown)
	return f
}

func (f *coordinatorFixture) applyRequest(typ models.InfractionType, duration int64) ApplyRequest {
	return ApplyRequest{
		Actor:    UnresolvedUser(snowflake.ID(7)),
		Target:   UnresolvedUser(snowflake.ID(42)),
		Type:     typ,
		Reason:   "spamming",
		Duration: duration,
	}
}

func TestCoordinator_ApplyWarn(t *testing.T) {
	f := newCoordinatorFixture(t)

	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return(nil, nil)
	f.store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inf *models.Infraction) error {
			inf.ID = 1
			return nil
		})

	result, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeWarn, 0))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Infraction.Active {
		t.Error("warn should be recorded inactive")
	}
	if !result.Notified {
		t.Error("target should have been notified")
	}
	if f.enforcer.enforceCalls != 1 {
		t.Errorf("Enforce called %d times, want 1", f.enforcer.enforceCalls)
	}
	if f.scheduler.Pending() != 0 {
		t.Error("instant infraction must not be scheduled")
	}
}

func TestCoordinator_ApplyTempbanSchedulesExpiry(t *testing.T) {
	f := newCoordinatorFixture(t)

	f.store.EXPECT().GetByUser(gomock.Any(), "42", gomock.Any()).Return(nil, nil)
	f.store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inf *models.Infraction) error {
			inf.ID = 2
			return nil
		})

	result, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 3600))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !result.Infraction.Active {
		t.Error("tempban should be recorded active")
	}
	if f.scheduler.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", f.scheduler.Pending())
	}
}

func TestCoordinator_ApplyRejectedByExistingLonger(t *testing.T) {
	f := newCoordinatorFixture(t)

	existing := &models.Infraction{
		ID:        3,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  models.PermanentDuration,
		Active:    true,
	}
	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{existing}, nil)

	_, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 3600))

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Apply() error = %v, want ConflictError", err)
	}
	if conflict.Existing.ID != 3 {
		t.Errorf("conflicting id = %d, want 3", conflict.Existing.ID)
	}
	if f.enforcer.enforceCalls != 0 {
		t.Error("rejected apply must not enforce")
	}
}

func TestCoordinator_ApplyLongerSupersedesShorter(t *testing.T) {
	f := newCoordinatorFixture(t)

	shorter := &models.Infraction{
		ID:        4,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  120,
		Active:    true,
	}
	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{shorter}, nil)
	f.store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inf *models.Infraction) error {
			inf.ID = 5
			return nil
		})

	if _, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 3600)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func TestCoordinator_ApplyStaleActiveRowDoesNotConflict(t *testing.T) {
	f := newCoordinatorFixture(t)

	// Flagged active but expired by wall clock: the window, not the flag,
	// decides conflicts.
	stale := &models.Infraction{
		ID:        6,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-2 * time.Hour),
		Duration:  60,
		Active:    true,
	}
	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{stale}, nil)
	f.store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inf *models.Infraction) error {
			inf.ID = 7
			return nil
		})

	if _, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 30)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func TestCoordinator_ApplyRejectsZeroDurationBan(t *testing.T) {
	f := newCoordinatorFixture(t)

	// No store expectations: a ban with no duration must be rejected before
	// anything is persisted or enforced. Letting it through would put a ban
	// on the platform with an inactive record behind it, which no timer and
	// no pardon would ever lift.
	_, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 0))
	if !errors.Is(err, models.ErrDurationRequired) {
		t.Fatalf("Apply() error = %v, want ErrDurationRequired", err)
	}
	if f.enforcer.enforceCalls != 0 {
		t.Errorf("Enforce called %d times, want 0", f.enforcer.enforceCalls)
	}
	if f.scheduler.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.scheduler.Pending())
	}
	if f.notifier.applied != 0 {
		t.Error("rejected apply must not notify")
	}
}

func TestCoordinator_PardonStampsDeactivationTime(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        17,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  3600,
		Active:    true,
	}

	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(17)).Return(nil)

	if _, err := f.coordinator.Pardon(context.Background(), inf); err != nil {
		t.Fatalf("Pardon() error = %v", err)
	}
	if !inf.DeactivatedAt.Equal(f.now) {
		t.Errorf("DeactivatedAt = %v, want %v", inf.DeactivatedAt, f.now)
	}
}

func TestCoordinator_ApplyPolicyRejected(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.authority.allow = false

	_, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeKick, 0))
	if !errors.Is(err, ErrPolicyRejected) {
		t.Fatalf("Apply() error = %v, want ErrPolicyRejected", err)
	}
}

func TestCoordinator_ApplyWhileActionInProgress(t *testing.T) {
	f := newCoordinatorFixture(t)

	if !f.coordinator.beginAction("42") {
		t.Fatal("beginAction should succeed on idle target")
	}
	defer f.coordinator.endAction("42")

	_, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeKick, 0))
	if !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("Apply() error = %v, want ErrActionInProgress", err)
	}
}

func TestCoordinator_ApplyKeepsRecordWhenEnforcementForbidden(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.enforcer.enforceErr = rest.Error{Response: &http.Response{StatusCode: http.StatusForbidden}}

	created := false
	f.store.EXPECT().GetByUser(gomock.Any(), "42", gomock.Any()).Return(nil, nil)
	f.store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inf *models.Infraction) error {
			created = true
			inf.ID = 8
			return nil
		})

	_, err := f.coordinator.Apply(context.Background(), f.applyRequest(models.InfractionTypeBan, 3600))

	var enfErr *EnforcementError
	if !errors.As(err, &enfErr) {
		t.Fatalf("Apply() error = %v, want EnforcementError", err)
	}
	if !enfErr.Forbidden {
		t.Error("403 must be classified as forbidden")
	}
	if !created {
		t.Error("record must persist even when enforcement fails")
	}
	if enfErr.Infraction.ID != 8 {
		t.Errorf("error carries infraction %d, want 8", enfErr.Infraction.ID)
	}
	if f.scheduler.Pending() != 0 {
		t.Error("unenforced infraction must not be scheduled")
	}
}

func TestCoordinator_PardonReversesEffect(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        9,
		UserID:    "42",
		Type:      models.InfractionTypeMute,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  3600,
		Active:    true,
	}
	f.scheduler.Track(inf)

	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(9)).Return(nil)

	outcome, err := f.coordinator.Pardon(context.Background(), inf)
	if err != nil {
		t.Fatalf("Pardon() error = %v", err)
	}
	if !outcome.Reversed {
		t.Error("pardon without a governing sibling must reverse the effect")
	}
	if f.enforcer.reverseCalls != 1 {
		t.Errorf("Reverse called %d times, want 1", f.enforcer.reverseCalls)
	}
	if inf.Active {
		t.Error("pardoned infraction must be inactive")
	}
	if f.scheduler.Pending() != 0 {
		t.Error("pardon must cancel the pending timer")
	}
	if f.notifier.pardoned != 1 {
		t.Errorf("NotifyPardoned called %d times, want 1", f.notifier.pardoned)
	}
}

func TestCoordinator_PardonKeepsEffectUnderLongerSibling(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        10,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  3600,
		Active:    true,
	}
	longer := &models.Infraction{
		ID:        11,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  models.PermanentDuration,
		Active:    true,
	}

	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf, longer}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(10)).Return(nil)

	outcome, err := f.coordinator.Pardon(context.Background(), inf)
	if err != nil {
		t.Fatalf("Pardon() error = %v", err)
	}
	if !outcome.RecordOnly {
		t.Error("pardon under a longer sibling must be record-only")
	}
	if outcome.Reversed {
		t.Error("effect must stay while the longer sibling is active")
	}
	if f.enforcer.reverseCalls != 0 {
		t.Errorf("Reverse called %d times, want 0", f.enforcer.reverseCalls)
	}
	if inf.Active {
		t.Error("record must still close")
	}
}

func TestCoordinator_PardonInactiveFails(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        12,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now,
		Duration:  3600,
		Active:    false,
	}

	if _, err := f.coordinator.Pardon(context.Background(), inf); !errors.Is(err, ErrNotActive) {
		t.Fatalf("Pardon() error = %v, want ErrNotActive", err)
	}
	if f.enforcer.reverseCalls != 0 {
		t.Error("inactive pardon must not touch the platform")
	}
}

func TestCoordinator_PardonRecordsFailedReversal(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.enforcer.reverseErr = rest.Error{Response: &http.Response{StatusCode: http.StatusForbidden}}

	inf := &models.Infraction{
		ID:        13,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  3600,
		Active:    true,
	}

	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(13)).Return(nil)

	outcome, err := f.coordinator.Pardon(context.Background(), inf)
	if err != nil {
		t.Fatalf("Pardon() error = %v", err)
	}
	if outcome.Reversed {
		t.Error("failed reversal must not report as reversed")
	}
	if outcome.ReverseErr == nil {
		t.Error("failed reversal must surface in the outcome")
	}
	if inf.Active {
		t.Error("record must close even when the platform call fails")
	}
}

func TestCoordinator_RemoveActivePardonsFirst(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        14,
		UserID:    "42",
		Type:      models.InfractionTypeMute,
		CreatedAt: f.now.Add(-time.Minute),
		Duration:  3600,
		Active:    true,
	}

	f.store.EXPECT().GetByID(gomock.Any(), int64(14)).Return(inf, nil)
	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(14)).Return(nil)
	f.store.EXPECT().Delete(gomock.Any(), int64(14)).Return(nil)

	if _, err := f.coordinator.Remove(context.Background(), 14); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if f.enforcer.reverseCalls != 1 {
		t.Errorf("Reverse called %d times, want 1", f.enforcer.reverseCalls)
	}
}

func TestCoordinator_RemoveMissingInfraction(t *testing.T) {
	f := newCoordinatorFixture(t)

	f.store.EXPECT().
		GetByID(gomock.Any(), int64(99)).
		Return(nil, repositories.ErrInfractionNotFound)

	if _, err := f.coordinator.Remove(context.Background(), 99); !errors.Is(err, repositories.ErrInfractionNotFound) {
		t.Fatalf("Remove() error = %v, want ErrInfractionNotFound", err)
	}
}

func TestCoordinator_HandleExpiryDeactivates(t *testing.T) {
	f := newCoordinatorFixture(t)

	inf := &models.Infraction{
		ID:        15,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-2 * time.Hour),
		Duration:  3600,
		Active:    true,
	}

	f.store.EXPECT().GetByID(gomock.Any(), int64(15)).Return(inf, nil)
	f.store.EXPECT().
		GetByUser(gomock.Any(), "42", gomock.Any()).
		Return([]*models.Infraction{inf}, nil)
	f.store.EXPECT().SetInactive(gomock.Any(), int64(15)).Return(nil)

	f.coordinator.handleExpiry(15)

	if inf.Active {
		t.Error("expired infraction must be deactivated")
	}
	if f.enforcer.reverseCalls != 1 {
		t.Errorf("Reverse called %d times, want 1", f.enforcer.reverseCalls)
	}
}

func TestCoordinator_HandleExpiryAlreadyResolved(t *testing.T) {
	f := newCoordinatorFixture(t)

	// Pardoned while the timer was in flight: nothing left to do.
	inf := &models.Infraction{
		ID:        16,
		UserID:    "42",
		Type:      models.InfractionTypeBan,
		CreatedAt: f.now.Add(-2 * time.Hour),
		Duration:  3600,
		Active:    false,
	}
	f.store.EXPECT().GetByID(gomock.Any(), int64(16)).Return(inf, nil)

	f.coordinator.handleExpiry(16)

	if f.enforcer.reverseCalls != 0 {
		t.Errorf("Reverse called %d times, want 0", f.enforcer.reverseCalls)
	}
}
