package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	"github.com/AuvroIslam/Mio-sub001/internal/repo/docstore"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
	"github.com/AuvroIslam/Mio-sub001/internal/store/memory"
)

type staticActivity struct {
	users []string
}

func (s staticActivity) RecentlyActiveUsers(context.Context, time.Time, int) ([]string, error) {
	return s.users, nil
}

// fixingHealer mirrors the missing side the way the matcher would, and
// records which pairs actually needed work.
type fixingHealer struct {
	matches *docstore.MatchRepo
	healed  [][2]string
}

func (h *fixingHealer) HealPair(ctx context.Context, userAID, userBID string) (bool, error) {
	setA, err := h.matches.GetSet(ctx, userAID)
	if err != nil {
		return false, err
	}
	setB, err := h.matches.GetSet(ctx, userBID)
	if err != nil {
		return false, err
	}
	if setA.Has(userBID) == setB.Has(userAID) {
		return false, nil
	}

	owner, match := userBID, setA.Data[userBID]
	if setB.Has(userAID) {
		owner, match = userAID, setB.Data[userAID]
	}
	mirrored := model.Match{
		OtherUserID:   otherOf(owner, userAID, userBID),
		MatchStrength: match.MatchStrength,
	}
	op := h.matches.InsertOp(owner, mirrored, time.Now().UTC())
	if err := h.matches.Submit(ctx, []store.Op{op}); err != nil {
		return false, err
	}
	h.healed = append(h.healed, [2]string{userAID, userBID})
	return true, nil
}

func otherOf(owner, a, b string) string {
	if owner == a {
		return b
	}
	return a
}

func seedMatch(t *testing.T, matches *docstore.MatchRepo, owner, other string, strength int) {
	t.Helper()
	op := matches.InsertOp(owner, model.Match{OtherUserID: other, MatchStrength: strength}, time.Now().UTC())
	if err := matches.Submit(context.Background(), []store.Op{op}); err != nil {
		t.Fatalf("seed match %s->%s: %v", owner, other, err)
	}
}

func TestRunOnceHealsAsymmetricPairs(t *testing.T) {
	mem := memory.New()
	matches := docstore.NewMatchRepo(mem)
	ctx := context.Background()

	// u1<->u2 intact, u1->u3 one-sided, u4->u5 one-sided with u5 inactive
	seedMatch(t, matches, "u1", "u2", 3)
	seedMatch(t, matches, "u2", "u1", 3)
	seedMatch(t, matches, "u1", "u3", 4)
	seedMatch(t, matches, "u4", "u5", 3)

	healer := &fixingHealer{matches: matches}
	job := NewJob(staticActivity{users: []string{"u1", "u2", "u3", "u4"}}, matches, healer, nil, Config{})

	report, err := job.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if report.UsersScanned != 4 {
		t.Fatalf("users scanned = %d, want 4", report.UsersScanned)
	}
	if report.PairsHealed != 2 {
		t.Fatalf("pairs healed = %d, want 2 (%v)", report.PairsHealed, healer.healed)
	}
	if report.Errors != 0 {
		t.Fatalf("unexpected errors: %+v", report)
	}

	for _, pair := range [][2]string{{"u3", "u1"}, {"u5", "u4"}} {
		set, err := matches.GetSet(ctx, pair[0])
		if err != nil {
			t.Fatalf("load %s: %v", pair[0], err)
		}
		if !set.Has(pair[1]) {
			t.Fatalf("%s still missing record for %s", pair[0], pair[1])
		}
	}

	// second sweep finds nothing left to repair
	report, err = job.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.PairsHealed != 0 {
		t.Fatalf("second sweep healed %d pairs, want 0", report.PairsHealed)
	}
}

func TestRunOnceChecksEachPairOnce(t *testing.T) {
	mem := memory.New()
	matches := docstore.NewMatchRepo(mem)

	seedMatch(t, matches, "u1", "u2", 3)
	seedMatch(t, matches, "u2", "u1", 3)

	healer := &fixingHealer{matches: matches}
	job := NewJob(staticActivity{users: []string{"u1", "u2"}}, matches, healer, nil, Config{})

	report, err := job.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if report.PairsChecked != 1 {
		t.Fatalf("pairs checked = %d, want 1 (pair visible from both sides)", report.PairsChecked)
	}
}
