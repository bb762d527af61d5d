package goal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
	"finledger/internal/store/memory"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type captureRecorder struct {
	mu         sync.Mutex
	activities []core.Activity
}

func (r *captureRecorder) Record(_ context.Context, a core.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, a)
}

func (r *captureRecorder) byType(t core.ActivityType) []core.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Activity
	for _, a := range r.activities {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memory.Store, *captureRecorder) {
	t.Helper()
	st := memory.New()
	rec := &captureRecorder{}
	svc := NewService(st, rec, log.New(log.DefaultConfig()))
	svc.now = func() time.Time { return fixedNow }
	return svc, st, rec
}

func mustCreate(t *testing.T, svc *Service, userID string, targetCents int64) core.Goal {
	t.Helper()
	g, err := svc.Create(context.Background(), userID, CreateInput{
		Title:        "vacation fund",
		TargetAmount: core.Money{Cents: targetCents},
		Category:     core.GoalTravel,
	})
	require.NoError(t, err)
	return g
}

func TestCreateValidates(t *testing.T) {
	svc, _, rec := newTestService(t)

	past := fixedNow.AddDate(0, -1, 0)
	_, err := svc.Create(context.Background(), "u1", CreateInput{
		Title:        "x",
		TargetAmount: core.Money{},
		Category:     "yacht",
		Deadline:     &past,
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, 4, "every violation reported: %v", ve.Violations)
	assert.Empty(t, rec.activities)
}

func TestCreateStartsActive(t *testing.T) {
	svc, _, rec := newTestService(t)
	g := mustCreate(t, svc, "u1", 100000)

	assert.Equal(t, core.GoalActive, g.Status)
	assert.Equal(t, int64(0), g.CurrentAmount.Cents)
	assert.NotEmpty(t, g.ID)
	require.Len(t, rec.byType(core.ActivityGoalCreated), 1)
}

func TestContributionCompletesOnce(t *testing.T) {
	svc, _, rec := newTestService(t)
	g := mustCreate(t, svc, "u1", 100000)
	ctx := context.Background()

	g, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 60000}, "bonus")
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)
	assert.Equal(t, int64(60000), g.CurrentAmount.Cents)
	assert.Nil(t, g.CompletedAt)

	g, err = svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 40000}, "")
	require.NoError(t, err)
	assert.Equal(t, core.GoalCompleted, g.Status)
	require.NotNil(t, g.CompletedAt)
	assert.Equal(t, fixedNow, *g.CompletedAt)

	// Contributing past the target must not emit a second completion.
	g, err = svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 500}, "")
	require.NoError(t, err)
	assert.Equal(t, core.GoalCompleted, g.Status)
	assert.Equal(t, int64(100500), g.CurrentAmount.Cents)

	assert.Len(t, rec.byType(core.ActivityGoalContribution), 3)
	assert.Len(t, rec.byType(core.ActivityGoalCompleted), 1)
}

func TestContributionRejectsNonPositive(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 100000)

	_, err := svc.AddContribution(context.Background(), "u1", g.ID, core.Money{}, "")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRemoveContributionRevertsCompletion(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	g, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 50000}, "")
	require.NoError(t, err)
	require.Equal(t, core.GoalCompleted, g.Status)

	g, err = svc.RemoveContribution(ctx, "u1", g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)
	assert.Equal(t, int64(0), g.CurrentAmount.Cents)
	assert.Nil(t, g.CompletedAt)
	assert.Empty(t, g.Contributions)
}

func TestUpdateTargetDoesNotTouchStatus(t *testing.T) {
	svc, _, rec := newTestService(t)
	g := mustCreate(t, svc, "u1", 100000)
	ctx := context.Background()

	g, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 100000}, "")
	require.NoError(t, err)
	require.Equal(t, core.GoalCompleted, g.Status)

	// Raising the target after completion leaves the goal completed.
	raised := core.Money{Cents: 200000}
	g, err = svc.Update(ctx, "u1", g.ID, UpdateInput{TargetAmount: &raised})
	require.NoError(t, err)
	assert.Equal(t, core.GoalCompleted, g.Status)
	assert.Equal(t, int64(200000), g.TargetAmount.Cents)

	// Lowering the target under an active goal's amount does not complete it.
	g2 := mustCreate(t, svc, "u1", 500000)
	g2, err = svc.AddContribution(ctx, "u1", g2.ID, core.Money{Cents: 40000}, "")
	require.NoError(t, err)
	require.Equal(t, core.GoalActive, g2.Status)

	lowered := core.Money{Cents: 30000}
	g2, err = svc.Update(ctx, "u1", g2.ID, UpdateInput{TargetAmount: &lowered})
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g2.Status)
	assert.Len(t, rec.byType(core.ActivityGoalCompleted), 1, "only the contribution-driven completion")
}

func TestRemoveContributionBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	_, err := svc.RemoveContribution(ctx, "u1", g.ID, 0)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	_, err = svc.RemoveContribution(ctx, "u1", g.ID, -1)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRemoveContributionReactivatesCancelledGoal(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	g, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 10000}, "")
	require.NoError(t, err)

	g, err = svc.Cancel(ctx, "u1", g.ID)
	require.NoError(t, err)
	require.Equal(t, core.GoalCancelled, g.Status)

	// Removing a contribution recomputes status and only knows
	// active and completed, so the cancellation is lost.
	g, err = svc.RemoveContribution(ctx, "u1", g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)
}

func TestCancelAndReactivate(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	g, err := svc.Cancel(ctx, "u1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, core.GoalCancelled, g.Status)

	_, err = svc.Cancel(ctx, "u1", g.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	g, err = svc.Reactivate(ctx, "u1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)

	_, err = svc.Reactivate(ctx, "u1", g.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelCompletedGoalRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 10000)
	ctx := context.Background()

	_, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 10000}, "")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "u1", g.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteRecordsFinalAmounts(t *testing.T) {
	svc, st, rec := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	_, err := svc.AddContribution(ctx, "u1", g.ID, core.Money{Cents: 12500}, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", g.ID))

	_, err = st.GetByID(ctx, store.Goals, g.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	deleted := rec.byType(core.ActivityGoalDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, "125.00", deleted[0].Metadata["saved"])
	assert.Equal(t, "500.00", deleted[0].Metadata["target"])
}

func TestForeignGoalNotVisible(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := mustCreate(t, svc, "u1", 50000)
	ctx := context.Background()

	_, err := svc.Get(ctx, "u2", g.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.AddContribution(ctx, "u2", g.ID, core.Money{Cents: 100}, "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, "u2", g.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", 100000)
	_, err := svc.AddContribution(ctx, "u1", a.ID, core.Money{Cents: 100000}, "")
	require.NoError(t, err)

	b := mustCreate(t, svc, "u1", 100000)
	_, err = svc.AddContribution(ctx, "u1", b.ID, core.Money{Cents: 50000}, "")
	require.NoError(t, err)

	c := mustCreate(t, svc, "u1", 100000)
	_, err = svc.Cancel(ctx, "u1", c.ID)
	require.NoError(t, err)

	mustCreate(t, svc, "u2", 999999)

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalGoals)
	assert.Equal(t, 1, stats.ActiveGoals)
	assert.Equal(t, 1, stats.CompletedGoals)
	assert.Equal(t, int64(300000), stats.TotalTargetAmount.Cents)
	assert.Equal(t, int64(150000), stats.TotalCurrentAmount.Cents)
	assert.InDelta(t, 50.0, stats.TotalProgress, 0.001)
}

func TestStatsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGoals)
	assert.Zero(t, stats.TotalProgress)
}
