package suite

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/suitecheck/internal/env"
)

//go:embed manifest.cue
var builtinManifest string

// Manifest is the decoded suite description: domains in declaration order,
// each with its model entity names and its tasks.
type Manifest struct {
	Domains []DomainManifest
}

// DomainManifest describes one domain.
type DomainManifest struct {
	Name  string
	Model *StaticModel
	Tasks []TaskSpec
}

// TaskSpec carries the per-task parameters declared in the manifest.
type TaskSpec struct {
	Name           string
	Benchmarking   bool
	TimeLimit      int
	Sparse         bool
	SwingUp        bool
	RandomizeGains bool
}

// ManifestError reports a manifest that does not compile or does not have
// the expected structure.
type ManifestError struct {
	Path    string    // CUE path of the offending value
	Message string    // human-readable description
	Pos     token.Pos // source position if available
}

func (e *ManifestError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// BuiltinManifest compiles the manifest embedded in the binary.
func BuiltinManifest() (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(builtinManifest, cue.Filename("manifest.cue"))
	return DecodeManifest(v)
}

// LoadManifestDir loads the CUE package in dir and decodes it.
// The package must follow the schema of the embedded manifest.
func LoadManifestDir(dir string) (*Manifest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("manifest directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("manifest path is not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	return DecodeManifest(v)
}

// DecodeManifest extracts a Manifest from a compiled CUE value with a
// top-level "domain" struct.
func DecodeManifest(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("manifest", err)
	}
	if err := v.Validate(); err != nil {
		return nil, formatCUEError("manifest", err)
	}

	domains := v.LookupPath(cue.ParsePath("domain"))
	if !domains.Exists() {
		return nil, &ManifestError{Path: "domain", Message: "no domains declared", Pos: v.Pos()}
	}

	iter, err := domains.Fields()
	if err != nil {
		return nil, formatCUEError("domain", err)
	}

	m := &Manifest{}
	for iter.Next() {
		dm, err := decodeDomain(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Domains = append(m.Domains, dm)
	}
	if len(m.Domains) == 0 {
		return nil, &ManifestError{Path: "domain", Message: "no domains declared", Pos: domains.Pos()}
	}
	return m, nil
}

func decodeDomain(name string, v cue.Value) (DomainManifest, error) {
	path := "domain." + name
	dm := DomainManifest{Name: name}

	model, err := decodeModel(path+".model", v.LookupPath(cue.ParsePath("model")))
	if err != nil {
		return DomainManifest{}, err
	}
	dm.Model = model

	tasks := v.LookupPath(cue.ParsePath("tasks"))
	iter, err := tasks.Fields()
	if err != nil {
		return DomainManifest{}, formatCUEError(path+".tasks", err)
	}
	for iter.Next() {
		taskName := iter.Label()
		spec, err := decodeTask(path+".tasks."+taskName, taskName, iter.Value())
		if err != nil {
			return DomainManifest{}, err
		}
		dm.Tasks = append(dm.Tasks, spec)
	}
	if len(dm.Tasks) == 0 {
		return DomainManifest{}, &ManifestError{Path: path + ".tasks", Message: "at least one task is required", Pos: v.Pos()}
	}
	return dm, nil
}

func decodeModel(path string, v cue.Value) (*StaticModel, error) {
	if !v.Exists() {
		return nil, &ManifestError{Path: path, Message: "model is required"}
	}
	name, err := defaultOf(v.LookupPath(cue.ParsePath("name"))).String()
	if err != nil {
		return nil, formatCUEError(path+".name", err)
	}

	names := make(map[env.Category][]string, len(env.Categories))
	for _, c := range env.Categories {
		field := v.LookupPath(cue.ParsePath(string(c)))
		if !field.Exists() {
			continue
		}
		list, err := defaultOf(field).List()
		if err != nil {
			return nil, formatCUEError(path+"."+string(c), err)
		}
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return nil, formatCUEError(path+"."+string(c), err)
			}
			names[c] = append(names[c], s)
		}
	}
	return NewStaticModel(name, names), nil
}

func decodeTask(path, name string, v cue.Value) (TaskSpec, error) {
	spec := TaskSpec{Name: name}

	bools := []struct {
		field string
		dst   *bool
	}{
		{"benchmarking", &spec.Benchmarking},
		{"sparse", &spec.Sparse},
		{"swing_up", &spec.SwingUp},
		{"randomize_gains", &spec.RandomizeGains},
	}
	for _, b := range bools {
		val, err := defaultOf(v.LookupPath(cue.ParsePath(b.field))).Bool()
		if err != nil {
			return TaskSpec{}, formatCUEError(path+"."+b.field, err)
		}
		*b.dst = val
	}

	limit, err := defaultOf(v.LookupPath(cue.ParsePath("time_limit"))).Int64()
	if err != nil {
		return TaskSpec{}, formatCUEError(path+".time_limit", err)
	}
	spec.TimeLimit = int(limit)
	return spec, nil
}

// defaultOf resolves a disjunction to its default value when it has one.
func defaultOf(v cue.Value) cue.Value {
	if d, ok := v.Default(); ok {
		return d
	}
	return v
}

// formatCUEError converts a CUE error into a ManifestError carrying the
// position of the first underlying error.
func formatCUEError(path string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ManifestError{Path: path, Message: err.Error()}
	}

	first := errs[0]
	me := &ManifestError{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		me.Pos = positions[0]
	}
	return me
}
