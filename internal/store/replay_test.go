package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suitecheck/internal/testutil"
)

func TestCompareLatest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	ids := testutil.NewSequentialRunIDs("run")

	write := func(seed int64, fps map[string]string) {
		t.Helper()
		require.NoError(t, s.WriteResult(ctx, ids.Generate(), createTestResult(seed, fps)))
	}

	write(0, map[string]string{"cartpole/balance": "b1", "cartpole/swingup": "s1"}) // run-0001
	write(0, map[string]string{"cartpole/balance": "b1", "cartpole/swingup": "s2"}) // run-0002
	write(0, map[string]string{"cartpole/balance": "b1", "cartpole/swingup": "s3"}) // run-0003
	write(1, map[string]string{"cartpole/balance": "x1"})                           // run-0004

	drifts, err := s.CompareLatest(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 3)

	assert.Equal(t, Drift{
		Task: "cartpole/balance", Seed: 0, Episodes: 5, MaxSteps: 10,
		LatestRun: "run-0003", Latest: "b1",
		PreviousRun: "run-0002", Previous: "b1",
		Changed: false,
	}, drifts[0])

	assert.Equal(t, "cartpole/balance", drifts[1].Task)
	assert.Equal(t, int64(1), drifts[1].Seed)
	assert.False(t, drifts[1].HasBaseline())
	assert.False(t, drifts[1].Changed)

	assert.Equal(t, Drift{
		Task: "cartpole/swingup", Seed: 0, Episodes: 5, MaxSteps: 10,
		LatestRun: "run-0003", Latest: "s3",
		PreviousRun: "run-0002", Previous: "s2",
		Changed: true,
	}, drifts[2])
}
