package suite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/suitecheck/internal/env"
)

// TaskID identifies a registered task.
type TaskID struct {
	Domain string `json:"domain" yaml:"domain"`
	Task   string `json:"task"   yaml:"task"`
}

// String returns "domain/task".
func (id TaskID) String() string {
	return id.Domain + "/" + id.Task
}

// TaskOptions are the per-load task arguments.
type TaskOptions struct {
	// Random seeds the task's initial-state sampler. Nil draws a random seed.
	Random *int64
	// TimeLimit overrides the manifest episode length in control steps when
	// positive.
	TimeLimit int
}

// Factory builds an environment for one task of a domain.
type Factory func(model *StaticModel, task TaskSpec, opts TaskOptions) (env.Environment, error)

// Registry is the immutable set of loadable tasks. It is built once and
// shared by reference; none of its methods mutate it.
type Registry struct {
	domains   []string
	byDomain  map[string][]string
	all       []TaskID
	bench     []TaskID
	benchSet  map[TaskID]bool
	specs     map[TaskID]TaskSpec
	models    map[string]*StaticModel
	factories map[string]Factory
}

// NewRegistry builds a registry from a manifest and the factories that
// implement its domains. Every manifest domain must have a factory.
func NewRegistry(m *Manifest, factories map[string]Factory) (*Registry, error) {
	r := &Registry{
		byDomain:  make(map[string][]string),
		benchSet:  make(map[TaskID]bool),
		specs:     make(map[TaskID]TaskSpec),
		models:    make(map[string]*StaticModel),
		factories: make(map[string]Factory),
	}

	for _, d := range m.Domains {
		if _, dup := r.byDomain[d.Name]; dup {
			return nil, fmt.Errorf("duplicate domain %q", d.Name)
		}
		f, ok := factories[d.Name]
		if !ok {
			return nil, fmt.Errorf("domain %q has no factory", d.Name)
		}
		r.domains = append(r.domains, d.Name)
		r.models[d.Name] = d.Model
		r.factories[d.Name] = f
		r.byDomain[d.Name] = []string{}

		for _, t := range d.Tasks {
			id := TaskID{Domain: d.Name, Task: t.Name}
			if _, dup := r.specs[id]; dup {
				return nil, fmt.Errorf("duplicate task %s", id)
			}
			r.byDomain[d.Name] = append(r.byDomain[d.Name], t.Name)
			r.all = append(r.all, id)
			r.specs[id] = t
			if t.Benchmarking {
				r.bench = append(r.bench, id)
				r.benchSet[id] = true
			}
		}
	}

	if err := r.checkConsistency(); err != nil {
		return nil, err
	}
	return r, nil
}

// checkConsistency verifies that the flattened task list matches the
// per-domain lists and that the benchmarking subset is contained in it.
func (r *Registry) checkConsistency() error {
	total := 0
	for _, tasks := range r.byDomain {
		total += len(tasks)
	}
	if total != len(r.all) {
		return fmt.Errorf("registry has %d tasks but domains declare %d", len(r.all), total)
	}
	for _, id := range r.bench {
		if _, ok := r.specs[id]; !ok {
			return fmt.Errorf("benchmarking task %s is not registered", id)
		}
	}
	return nil
}

// Domains returns the domain names in declaration order.
func (r *Registry) Domains() []string {
	return append([]string(nil), r.domains...)
}

// TasksByDomain returns the task names of a domain in declaration order.
func (r *Registry) TasksByDomain(domain string) []string {
	return append([]string(nil), r.byDomain[domain]...)
}

// TasksByDomainMap returns a copy of the full domain to tasks mapping.
func (r *Registry) TasksByDomainMap() map[string][]string {
	out := make(map[string][]string, len(r.byDomain))
	for d, tasks := range r.byDomain {
		out[d] = append([]string(nil), tasks...)
	}
	return out
}

// AllTasks returns every registered task.
func (r *Registry) AllTasks() []TaskID {
	return append([]TaskID(nil), r.all...)
}

// Benchmarking returns the benchmarking subset.
func (r *Registry) Benchmarking() []TaskID {
	return append([]TaskID(nil), r.bench...)
}

// IsBenchmarking reports whether id belongs to the benchmarking subset.
func (r *Registry) IsBenchmarking(id TaskID) bool {
	return r.benchSet[id]
}

// Has reports whether id is registered.
func (r *Registry) Has(id TaskID) bool {
	_, ok := r.specs[id]
	return ok
}

// Spec returns the manifest parameters of a task.
func (r *Registry) Spec(id TaskID) (TaskSpec, bool) {
	s, ok := r.specs[id]
	return s, ok
}

// Model returns the model of a domain.
func (r *Registry) Model(domain string) (env.Model, bool) {
	m, ok := r.models[domain]
	return m, ok
}

// Load builds a fresh environment for domain/task.
func (r *Registry) Load(domain, task string, opts TaskOptions) (env.Environment, error) {
	id := TaskID{Domain: domain, Task: task}
	spec, ok := r.specs[id]
	if !ok {
		if _, known := r.byDomain[domain]; !known {
			return nil, fmt.Errorf("unknown domain %q (known: %v)", domain, r.domains)
		}
		return nil, fmt.Errorf("unknown task %q in domain %q (known: %v)", task, domain, r.byDomain[domain])
	}
	e, err := r.factories[domain](r.models[domain], spec, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return e, nil
}

// Select resolves a task selector against the registry. Accepted forms are
// "all", "benchmarking", "<domain>" and "<domain>/<task>". The result is
// sorted and free of duplicates.
func (r *Registry) Select(selectors ...string) ([]TaskID, error) {
	seen := make(map[TaskID]bool)
	add := func(ids ...TaskID) {
		for _, id := range ids {
			seen[id] = true
		}
	}

	for _, sel := range selectors {
		switch sel {
		case "all":
			add(r.all...)
		case "benchmarking":
			add(r.bench...)
		default:
			id, isPair := parseTaskID(sel)
			if isPair {
				if !r.Has(id) {
					return nil, fmt.Errorf("unknown task %q", sel)
				}
				add(id)
				continue
			}
			tasks, ok := r.byDomain[sel]
			if !ok {
				return nil, fmt.Errorf("unknown domain or selector %q", sel)
			}
			for _, t := range tasks {
				add(TaskID{Domain: sel, Task: t})
			}
		}
	}

	out := make([]TaskID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Task < out[j].Task
	})
	return out, nil
}

func parseTaskID(s string) (TaskID, bool) {
	domain, task, ok := strings.Cut(s, "/")
	return TaskID{Domain: domain, Task: task}, ok
}
