package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// TasksOptions holds flags for the tasks command.
type TasksOptions struct {
	*RootOptions
	Benchmarking bool
}

// TaskEntry is one listed task.
type TaskEntry struct {
	Domain       string `json:"domain"`
	Task         string `json:"task"`
	Benchmarking bool   `json:"benchmarking"`
}

// TasksResult is the output of the tasks command.
type TasksResult struct {
	Tasks        []TaskEntry `json:"tasks"`
	Domains      int         `json:"domains"`
	Total        int         `json:"total"`
	Benchmarking int         `json:"benchmarking"`
}

// NewTasksCommand creates the tasks command.
func NewTasksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TasksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tasks [selector...]",
		Short: "List registered tasks",
		Long: `List the registered (domain, task) pairs.

Selectors narrow the listing: "all", "benchmarking", a domain name, or
"domain/task". With no selector every task is listed.

Examples:
  suitecheck tasks
  suitecheck tasks cartpole
  suitecheck tasks --benchmarking --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Benchmarking, "benchmarking", false, "list only benchmarking tasks")

	return cmd
}

func runTasks(opts *TasksOptions, selectors []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	reg, err := opts.loadRegistry(f)
	if err != nil {
		return err
	}

	if len(selectors) == 0 {
		selectors = []string{"all"}
	}
	if opts.Benchmarking {
		selectors = []string{"benchmarking"}
	}
	ids, err := reg.Select(selectors...)
	if err != nil {
		_ = f.Error(ErrCodeUnknownTask, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid selector", err)
	}

	result := TasksResult{
		Tasks:   make([]TaskEntry, 0, len(ids)),
		Domains: len(reg.Domains()),
		Total:   len(reg.AllTasks()),
	}
	for _, id := range ids {
		bench := reg.IsBenchmarking(id)
		if bench {
			result.Benchmarking++
		}
		result.Tasks = append(result.Tasks, TaskEntry{Domain: id.Domain, Task: id.Task, Benchmarking: bench})
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tTASK\tBENCHMARKING")
	for _, t := range result.Tasks {
		mark := ""
		if t.Benchmarking {
			mark = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Domain, t.Task, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d listed (%s)\n", len(result.Tasks), strings.Join(selectors, ", "))
	return nil
}
