package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePlay(t *testing.T, out string) []PlayTask {
	t.Helper()
	var resp struct {
		Status string     `json:"status"`
		Data   []PlayTask `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestPlayJSON(t *testing.T) {
	out, _, err := execute(NewPlayCommand(&RootOptions{Format: "json"}),
		"cartpole/balance", "--seed", "1", "--episodes", "2", "--max-steps", "3")
	require.NoError(t, err)

	played := decodePlay(t, out)
	require.Len(t, played, 1)
	pt := played[0]
	assert.Equal(t, "cartpole/balance", pt.Task)
	require.Len(t, pt.Steps, 8)

	first := pt.Steps[0]
	assert.Equal(t, "first", first.StepType)
	assert.Nil(t, first.Reward)
	assert.Nil(t, first.Discount)
	assert.Len(t, first.Observation["position"], 3)
	assert.Len(t, first.Observation["velocity"], 2)

	for _, s := range pt.Steps[1:4] {
		require.NotNil(t, s.Reward)
		assert.GreaterOrEqual(t, *s.Reward, 0.0)
		assert.LessOrEqual(t, *s.Reward, 1.0)
	}
	assert.Equal(t, 1, pt.Steps[4].Episode)
	assert.Equal(t, "first", pt.Steps[4].StepType)
}

func TestPlaySeededIsReproducible(t *testing.T) {
	args := []string{"pendulum/swingup", "--seed", "5", "--max-steps", "4"}

	out1, _, err := execute(NewPlayCommand(&RootOptions{Format: "json"}), args...)
	require.NoError(t, err)
	out2, _, err := execute(NewPlayCommand(&RootOptions{Format: "json"}), args...)
	require.NoError(t, err)

	assert.Equal(t, decodePlay(t, out1)[0].Fingerprint, decodePlay(t, out2)[0].Fingerprint)
}

func TestPlayDefaultsToCartpoleSwingup(t *testing.T) {
	out, _, err := execute(NewPlayCommand(&RootOptions{Format: "text"}), "--max-steps", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "== cartpole/swingup", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ep=0 step=0 first"))
	assert.NotContains(t, lines[1], "reward=")
	assert.Contains(t, lines[2], "reward=")
	assert.Contains(t, lines[2], "position=[")
	assert.True(t, strings.HasPrefix(lines[4], "fingerprint "))
}

func TestPlayEndsAtTimeLimit(t *testing.T) {
	dir := writeManifest(t, miniManifest)
	out, _, err := execute(NewPlayCommand(&RootOptions{Format: "json", Manifest: dir}),
		"cartpole/balance", "--seed", "0")
	require.NoError(t, err)

	steps := decodePlay(t, out)[0].Steps
	require.Len(t, steps, 5)
	last := steps[len(steps)-1]
	assert.Equal(t, "last", last.StepType)
	require.NotNil(t, last.Discount)
	assert.Equal(t, 1.0, *last.Discount)
}

func TestPlayBenchmarking(t *testing.T) {
	out, _, err := execute(NewPlayCommand(&RootOptions{Format: "json"}), "benchmarking", "--max-steps", "1")
	require.NoError(t, err)
	assert.Len(t, decodePlay(t, out), 6)
}

func TestPlayUnknownTask(t *testing.T) {
	out, _, err := execute(NewPlayCommand(&RootOptions{Format: "text"}), "cartpole/run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E008")
}
