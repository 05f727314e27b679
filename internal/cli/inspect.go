package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/suite"
)

// InspectResult describes the model of one domain.
type InspectResult struct {
	Domain   string              `json:"domain"`
	Model    string              `json:"model"`
	Tasks    []InspectTask       `json:"tasks"`
	Entities map[string][]string `json:"entities"`
}

// InspectTask holds the manifest parameters of one task.
type InspectTask struct {
	Name         string `json:"name"`
	Benchmarking bool   `json:"benchmarking"`
	TimeLimit    int    `json:"time_limit"`
	Sparse       bool   `json:"sparse,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <domain>",
		Short: "Show the named entities of a domain's model",
		Long: `Show the model of a domain: its name, its tasks with their time limit
and benchmarking flag, and the names of its entities per category
(bodies, joints, geoms, cameras, ...). Empty categories are omitted.

Examples:
  suitecheck inspect cartpole
  suitecheck inspect point_mass --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, domain string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	reg, err := opts.loadRegistry(f)
	if err != nil {
		return err
	}

	m, ok := reg.Model(domain)
	if !ok {
		err := fmt.Errorf("unknown domain %q (known: %v)", domain, reg.Domains())
		_ = f.Error(ErrCodeUnknownTask, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid domain", err)
	}

	result := InspectResult{
		Domain:   domain,
		Model:    m.Name(),
		Entities: entityNames(m),
	}
	for _, name := range reg.TasksByDomain(domain) {
		spec, _ := reg.Spec(suite.TaskID{Domain: domain, Task: name})
		result.Tasks = append(result.Tasks, InspectTask{
			Name:         name,
			Benchmarking: spec.Benchmarking,
			TimeLimit:    spec.TimeLimit,
			Sparse:       spec.Sparse,
		})
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "domain %s (model %q)\n\n", result.Domain, result.Model)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tTIME LIMIT\tBENCHMARKING\tREWARD")
	for _, t := range result.Tasks {
		reward := "smooth"
		if t.Sparse {
			reward = "sparse"
		}
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", t.Name, t.TimeLimit, t.Benchmarking, reward)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tNAMES")
	for _, c := range env.Categories {
		names, ok := result.Entities[string(c)]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c, len(names), strings.Join(names, ", "))
	}
	return tw.Flush()
}

// entityNames lists entity names per non-empty category.
func entityNames(m env.Model) map[string][]string {
	out := make(map[string][]string)
	for _, c := range env.Categories {
		n := m.Count(c)
		if n == 0 {
			continue
		}
		names := make([]string, n)
		for i := range names {
			names[i] = m.ID2Name(c, i)
		}
		out[string(c)] = names
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
