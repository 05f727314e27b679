package suite

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suitecheck/internal/env"
)

func compile(t *testing.T, src string) cue.Value {
	t.Helper()
	return cuecontext.New().CompileString(src, cue.Filename("test.cue"))
}

func TestBuiltinManifest(t *testing.T) {
	m, err := BuiltinManifest()
	require.NoError(t, err)

	var names []string
	for _, d := range m.Domains {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"cartpole", "pendulum", "point_mass"}, names)

	cartpole := m.Domains[0]
	require.Len(t, cartpole.Tasks, 4)
	assert.Equal(t, TaskSpec{Name: "balance", Benchmarking: true, TimeLimit: 1000}, cartpole.Tasks[0])
	assert.Equal(t, TaskSpec{Name: "swingup_sparse", Benchmarking: true, TimeLimit: 1000, Sparse: true, SwingUp: true}, cartpole.Tasks[3])
	assert.Equal(t, "cart-pole", cartpole.Model.Name())
	assert.Equal(t, 2, cartpole.Model.Count(env.Camera))

	hard := m.Domains[2].Tasks[1]
	assert.Equal(t, "hard", hard.Name)
	assert.False(t, hard.Benchmarking)
	assert.True(t, hard.RandomizeGains)
}

func TestDecodeManifestDefaults(t *testing.T) {
	src := `
domain: toy: {
	model: {name: "toy", body: ["world"]}
	tasks: run: {benchmarking: *true | bool, time_limit: 25, sparse: false, swing_up: false, randomize_gains: *false | bool}
}
`
	m, err := DecodeManifest(compile(t, src))
	require.NoError(t, err)
	require.Len(t, m.Domains, 1)
	assert.Equal(t, TaskSpec{Name: "run", Benchmarking: true, TimeLimit: 25}, m.Domains[0].Tasks[0])
	assert.Equal(t, 0, m.Domains[0].Model.Count(env.Joint))
}

func TestDecodeManifestErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantPath string
	}{
		{
			name:     "no domains",
			src:      `other: 1`,
			wantPath: "domain",
		},
		{
			name:     "missing model",
			src:      `domain: toy: tasks: run: {benchmarking: true, time_limit: 1, sparse: false, swing_up: false, randomize_gains: false}`,
			wantPath: "domain.toy.model",
		},
		{
			name:     "no tasks",
			src:      `domain: toy: {model: name: "toy", tasks: {}}`,
			wantPath: "domain.toy.tasks",
		},
		{
			name:     "non-boolean flag",
			src:      `domain: toy: {model: name: "toy", tasks: run: {benchmarking: "yes", time_limit: 1, sparse: false, swing_up: false, randomize_gains: false}}`,
			wantPath: "domain.toy.tasks.run.benchmarking",
		},
		{
			name:     "names not a list",
			src:      `domain: toy: {model: {name: "toy", body: "world"}, tasks: run: {}}`,
			wantPath: "domain.toy.model.body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest(compile(t, tt.src))
			require.Error(t, err)
			var me *ManifestError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.wantPath, me.Path)
		})
	}
}

func TestManifestErrorFormat(t *testing.T) {
	err := &ManifestError{Path: "domain.toy", Message: "bad"}
	assert.Equal(t, "domain.toy: bad", err.Error())
}

func TestLoadManifestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.cue"), []byte(builtinManifest), 0644))

	m, err := LoadManifestDir(dir)
	require.NoError(t, err)
	assert.Len(t, m.Domains, 3)
}

func TestLoadManifestDirErrors(t *testing.T) {
	_, err := LoadManifestDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "manifest directory")

	file := filepath.Join(t.TempDir(), "file.cue")
	require.NoError(t, os.WriteFile(file, []byte("package suite\n"), 0644))
	_, err = LoadManifestDir(file)
	assert.ErrorContains(t, err, "not a directory")

	bad := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bad, "bad.cue"), []byte("package suite\n\ndomain: {\n"), 0644))
	_, err = LoadManifestDir(bad)
	require.Error(t, err)
}
