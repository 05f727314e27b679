package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/suitecheck/internal/env"
)

// DomainTrajectory prefixes trajectory fingerprints. The version suffix
// allows the encoding to change without colliding with stored fingerprints.
const DomainTrajectory = "suitecheck/trajectory/v1"

// Step is one recorded TimeStep together with its position.
type Step struct {
	Episode  int
	Index    int // position inside the whole trajectory
	StepType env.StepType
	Reward   *float64
	Discount *float64
	Obs      env.Observation
}

// Record captures ts at the given position. Arrays are copied so later
// mutation by the environment cannot change the record.
func Record(episode, index int, ts env.TimeStep) Step {
	obs := env.NewObservation()
	for _, k := range ts.Observation.Keys() {
		arr, _ := ts.Observation.Get(k)
		obs = obs.With(k, arr.Clone())
	}
	return Step{
		Episode:  episode,
		Index:    index,
		StepType: ts.StepType,
		Reward:   copyFloat(ts.Reward),
		Discount: copyFloat(ts.Discount),
		Obs:      obs,
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// canonicalMap converts a step into the generic form accepted by
// MarshalCanonical. Unset reward and discount are omitted.
func (s Step) canonicalMap() map[string]any {
	obs := make(map[string]any, s.Obs.Len())
	for _, k := range s.Obs.Keys() {
		arr, _ := s.Obs.Get(k)
		obs[k] = map[string]any{
			"dtype": string(arr.DType),
			"shape": append([]int{}, arr.Shape...),
			"data":  append([]float64{}, arr.Data...),
		}
	}
	m := map[string]any{
		"episode":     s.Episode,
		"index":       s.Index,
		"step_type":   s.StepType.String(),
		"observation": obs,
	}
	if s.Reward != nil {
		m["reward"] = *s.Reward
	}
	if s.Discount != nil {
		m["discount"] = *s.Discount
	}
	return m
}

// Snapshot is the canonical encoding of a named trajectory.
func Snapshot(name string, steps []Step) ([]byte, error) {
	list := make([]any, len(steps))
	for i, s := range steps {
		list[i] = s.canonicalMap()
	}
	data, err := MarshalCanonical(map[string]any{
		"name":  name,
		"steps": list,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return data, nil
}

// Fingerprint hashes the canonical encoding of steps with domain separation.
// The trajectory name is not part of the fingerprint.
func Fingerprint(steps []Step) (string, error) {
	data, err := Snapshot("", steps)
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainTrajectory, data), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
