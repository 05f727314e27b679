package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// miniManifest declares a single short cartpole task with every field set.
const miniManifest = `package suite

domain: cartpole: {
	model: {
		name:   "mini-cartpole"
		body:   ["world", "cart"]
		joint:  ["slider"]
		camera: ["fixed", "lookatcart"]
	}
	tasks: balance: {
		benchmarking:    true
		time_limit:      4
		sparse:          false
		swing_up:        false
		randomize_gains: false
	}
}
`

// writeManifest writes a CUE manifest into a fresh directory.
func writeManifest(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "suite.cue"), []byte(src), 0644))
	return dir
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
