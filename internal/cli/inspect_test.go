package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectText(t *testing.T) {
	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "cartpole")
	require.NoError(t, err)

	assert.Contains(t, out, `domain cartpole (model "cart-pole")`)
	assert.Regexp(t, `TASK\s+TIME LIMIT\s+BENCHMARKING\s+REWARD`, out)
	assert.Regexp(t, `balance\s+1000\s+true\s+smooth`, out)
	assert.Regexp(t, `swingup_sparse\s+1000\s+true\s+sparse`, out)
	assert.Regexp(t, `camera\s+2\s+fixed, lookatcart`, out)
	assert.NotContains(t, out, "tendon")
}

func TestInspectJSON(t *testing.T) {
	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "json"}), "cartpole")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cart-pole", resp.Data.Model)
	assert.Equal(t, []string{"slider", "hinge_1"}, resp.Data.Entities["joint"])
	assert.Equal(t, []string{"slide"}, resp.Data.Entities["actuator"])
	_, hasSensor := resp.Data.Entities["sensor"]
	assert.False(t, hasSensor)
	require.Len(t, resp.Data.Tasks, 4)
	assert.Equal(t, InspectTask{Name: "balance", Benchmarking: true, TimeLimit: 1000}, resp.Data.Tasks[0])
}

func TestInspectTaskParameters(t *testing.T) {
	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "json"}), "point_mass")
	require.NoError(t, err)

	var resp struct {
		Data InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []InspectTask{
		{Name: "easy", Benchmarking: true, TimeLimit: 1000},
		{Name: "hard", Benchmarking: false, TimeLimit: 1000},
	}, resp.Data.Tasks)
}

func TestInspectManifestTimeLimit(t *testing.T) {
	dir := writeManifest(t, miniManifest)
	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "text", Manifest: dir}), "cartpole")
	require.NoError(t, err)
	assert.Regexp(t, `balance\s+4\s+true\s+smooth`, out)
}

func TestInspectUnknownDomain(t *testing.T) {
	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "humanoid")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unknown domain")
}

func TestInspectRequiresDomain(t *testing.T) {
	_, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
