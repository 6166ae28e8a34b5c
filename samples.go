// ABOUTME: Sample preload flag parsing
// ABOUTME: Turns -sample path[@pattern] values into loaded channels
package main

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
)

// sampleList collects repeated -sample flags
type sampleList []string

func (s *sampleList) String() string {
	return strings.Join(*s, ",")
}

func (s *sampleList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// sampleSpec is one parsed -sample value
type sampleSpec struct {
	Path  string
	Steps []int
}

// parseSampleSpec splits "kick.wav@x...x..." into a path and active step indexes.
// In the pattern 'x' or 'X' marks an active step; any other character is a rest.
func parseSampleSpec(v string) (sampleSpec, error) {
	path, pattern, _ := strings.Cut(v, "@")
	if path == "" {
		return sampleSpec{}, fmt.Errorf("empty sample path in %q", v)
	}

	spec := sampleSpec{Path: path}
	for i, r := range pattern {
		if r == 'x' || r == 'X' {
			spec.Steps = append(spec.Steps, i)
		}
	}
	return spec, nil
}

// preload adds one channel per sample flag
func preload(session *sequencer.Session, values []string) error {
	for _, v := range values {
		spec, err := parseSampleSpec(v)
		if err != nil {
			return err
		}

		id := session.AddChannel()
		if err := session.LoadSample(id, spec.Path); err != nil {
			return err
		}
		for _, step := range spec.Steps {
			if err := session.ToggleStep(id, step); err != nil {
				return fmt.Errorf("sample %s: %w", spec.Path, err)
			}
		}
	}
	return nil
}
