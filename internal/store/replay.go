package store

import (
	"context"
	"fmt"
)

// Drift compares the two most recent fingerprints of one trajectory
// configuration: a task run with a given seed, episode count and step cap.
type Drift struct {
	Task     string `json:"task"`
	Seed     int64  `json:"seed"`
	Episodes int    `json:"episodes"`
	MaxSteps int    `json:"max_steps"`

	LatestRun   string `json:"latest_run"`
	Latest      string `json:"latest"`
	PreviousRun string `json:"previous_run,omitempty"`
	Previous    string `json:"previous,omitempty"`

	// Changed is true when both fingerprints exist and differ.
	Changed bool `json:"changed"`
}

// HasBaseline reports whether an earlier fingerprint exists to compare with.
func (d Drift) HasBaseline() bool { return d.PreviousRun != "" }

type driftKey struct {
	task     string
	seed     int64
	episodes int
	maxSteps int
}

// CompareLatest returns one Drift per trajectory configuration, ordered by
// task, seed, episodes and step cap. A configuration seen only once has no
// baseline and is never Changed.
func (s *Store) CompareLatest(ctx context.Context) ([]Drift, error) {
	records, err := s.ReadFingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("compare latest: %w", err)
	}

	drifts := []Drift{}
	var current driftKey
	seen := 0
	for _, r := range records {
		key := driftKey{r.Task, r.Seed, r.Episodes, r.MaxSteps}
		if len(drifts) == 0 || key != current {
			current = key
			seen = 0
			drifts = append(drifts, Drift{
				Task:      r.Task,
				Seed:      r.Seed,
				Episodes:  r.Episodes,
				MaxSteps:  r.MaxSteps,
				LatestRun: r.RunID,
				Latest:    r.Fingerprint,
			})
		}
		seen++
		if seen == 2 {
			d := &drifts[len(drifts)-1]
			d.PreviousRun = r.RunID
			d.Previous = r.Fingerprint
			d.Changed = d.Previous != d.Latest
		}
	}
	return drifts, nil
}
