package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/AuvroIslam/Mio-sub001/internal/repo/docstore"
	"github.com/AuvroIslam/Mio-sub001/internal/store/memory"
)

type staticEntitlements struct {
	premium map[string]bool
}

func (s *staticEntitlements) IsPremiumActive(_ context.Context, userID string, _ time.Time) (bool, error) {
	return s.premium[userID], nil
}

func newService(t *testing.T, premium map[string]bool) *Service {
	t.Helper()

	mem := memory.New()
	return NewService(
		docstore.NewCooldownRepo(mem),
		&staticEntitlements{premium: premium},
		nil,
		Config{FreeMatchQuota: 2, CooldownDuration: 24 * time.Hour},
	)
}

func TestCheckAndAdvanceCreatesDefaultState(t *testing.T) {
	service := newService(t, nil)
	ctx := context.Background()

	status, err := service.CheckAndAdvance(ctx, "fresh-user")
	if err != nil {
		t.Fatalf("check and advance for unseen user: %v", err)
	}
	if !status.AvailableForMatching || status.JustReset {
		t.Fatalf("unexpected initial status: %+v", status)
	}
	if status.State.MatchCount != 0 || status.State.MatchThreshold != 2 {
		t.Fatalf("unexpected default state: %+v", status.State)
	}
}

func TestFreeUserTripsIntoCooldownAndResets(t *testing.T) {
	service := newService(t, nil)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	if err := service.RecordMatchConsumed(ctx, "u1"); err != nil {
		t.Fatalf("consume #1: %v", err)
	}
	status, err := service.CheckAndAdvance(ctx, "u1")
	if err != nil {
		t.Fatalf("check after one match: %v", err)
	}
	if !status.AvailableForMatching || status.State.MatchCount != 1 {
		t.Fatalf("unexpected status after one match: %+v", status)
	}

	if err := service.RecordMatchConsumed(ctx, "u1"); err != nil {
		t.Fatalf("consume #2: %v", err)
	}
	status, err = service.CheckAndAdvance(ctx, "u1")
	if err != nil {
		t.Fatalf("check after quota hit: %v", err)
	}
	if status.AvailableForMatching {
		t.Fatalf("expected cooldown after reaching quota: %+v", status)
	}
	if status.State.CooldownStartedAt == nil || !status.State.CooldownStartedAt.Equal(base) {
		t.Fatalf("expected cooldown start at %v, got %+v", base, status.State.CooldownStartedAt)
	}
	if status.Remaining <= 0 {
		t.Fatalf("expected positive remaining cooldown, got %v", status.Remaining)
	}

	// re-checking before the duration elapses leaves the state untouched
	service.now = func() time.Time { return base.Add(23 * time.Hour) }
	status, err = service.CheckAndAdvance(ctx, "u1")
	if err != nil {
		t.Fatalf("check mid-cooldown: %v", err)
	}
	if status.AvailableForMatching || status.JustReset || status.State.MatchCount != 2 {
		t.Fatalf("cooldown must hold mid-duration: %+v", status)
	}

	service.now = func() time.Time { return base.Add(24*time.Hour + time.Minute) }
	status, err = service.CheckAndAdvance(ctx, "u1")
	if err != nil {
		t.Fatalf("check after cooldown elapsed: %v", err)
	}
	if !status.AvailableForMatching || !status.JustReset {
		t.Fatalf("expected reset after elapsed cooldown: %+v", status)
	}
	if status.State.MatchCount != 0 || status.State.CooldownStartedAt != nil {
		t.Fatalf("expected cleared counters after reset: %+v", status.State)
	}
}

func TestConsumeWhileCoolingDownIsNoop(t *testing.T) {
	service := newService(t, nil)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	for i := 0; i < 2; i++ {
		if err := service.RecordMatchConsumed(ctx, "u1"); err != nil {
			t.Fatalf("consume #%d: %v", i+1, err)
		}
	}
	// extra consume against a tripped gate must not advance the counter
	if err := service.RecordMatchConsumed(ctx, "u1"); err != nil {
		t.Fatalf("consume while cooling down: %v", err)
	}

	status, err := service.CheckAndAdvance(ctx, "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status.State.MatchCount != 2 {
		t.Fatalf("expected count frozen at 2, got %+v", status.State)
	}
}

func TestPremiumUserNeverTripsButCounts(t *testing.T) {
	service := newService(t, map[string]bool{"vip": true})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := service.RecordMatchConsumed(ctx, "vip"); err != nil {
			t.Fatalf("consume #%d: %v", i+1, err)
		}
	}

	status, err := service.CheckAndAdvance(ctx, "vip")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !status.AvailableForMatching {
		t.Fatalf("premium user must stay available: %+v", status)
	}
	if status.State.MatchCount != 5 {
		t.Fatalf("premium count must still advance, got %+v", status.State)
	}
	if status.State.RemainingQuota() != -1 {
		t.Fatalf("premium quota must be unlimited, got %d", status.State.RemainingQuota())
	}
}
