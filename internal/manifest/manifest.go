package manifest

import (
	"fmt"
	"strings"
)

// An ordered sequence of build stages.
type Recipe struct {
	Stages []Stage `yaml:"stages"`
}

// A single build stage backed by a container.
//
// Named stages can be referenced by later stages for cross-stage copies.
// Transient stages are never exported; they exist only to feed other stages.
type Stage struct {
	Name       string   `yaml:"name,omitempty"`
	From       string   `yaml:"from"`
	Transient  bool     `yaml:"transient,omitempty"`
	Entrypoint []string `yaml:"entrypoint,omitempty"`
	Cmd        []string `yaml:"cmd,omitempty"`
	Steps      []Step   `yaml:"steps,omitempty"`
}

// A single build step.
//
// A step is either an operation (run or copy), a group of nested steps, or
// a standalone modifier (shell, workdir, env) that persists for the rest of
// the stage. Modifiers attached to an operation apply to that operation only.
type Step struct {
	Run     string            `yaml:"run,omitempty"`
	Copy    string            `yaml:"copy,omitempty"`
	Shell   string            `yaml:"shell,omitempty"`
	Workdir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Steps   []Step            `yaml:"steps,omitempty"`
}

// Identifies how a stage's base is resolved.
type SourceKind int

const (

	// The base is an OCI archive on the host filesystem.
	SourceArchive SourceKind = iota

	// The base is an image tag previously imported into the runtime.
	SourceImage
)

// A resolved stage base.
type Source struct {
	Kind  SourceKind
	Value string
}

// Parses the stage's from field into a [Source].
//
// A value with an "image:" prefix names a previously imported image tag.
// Anything else is a path to an OCI archive on the host.
func (s Stage) ParseFrom() (Source, error) {
	from := strings.TrimSpace(s.From)
	if from == "" {
		return Source{}, fmt.Errorf("stage %q: missing from", s.Name)
	}

	if ref, ok := strings.CutPrefix(from, "image:"); ok {
		if ref == "" {
			return Source{}, fmt.Errorf("stage %q: empty image reference", s.Name)
		}
		return Source{Kind: SourceImage, Value: ref}, nil
	}

	return Source{Kind: SourceArchive, Value: from}, nil
}

// Checks the recipe for structural problems.
//
// A valid recipe has at least one stage, at least one non-transient stage,
// unique stage names, a base for every stage, and steps that carry either
// one operation or at least one modifier or nested step.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return fmt.Errorf("recipe has no stages")
	}

	names := make(map[string]bool, len(r.Stages))
	exported := false

	for i, stage := range r.Stages {
		label := stageRef(stage.Name, i)

		if _, err := stage.ParseFrom(); err != nil {
			return err
		}

		if stage.Name != "" {
			if names[stage.Name] {
				return fmt.Errorf("duplicate stage name %q", stage.Name)
			}
			names[stage.Name] = true
		}

		if !stage.Transient {
			exported = true
		}

		if err := validateSteps(stage.Steps, label); err != nil {
			return err
		}
	}

	if !exported {
		return fmt.Errorf("all stages are transient, nothing to export")
	}

	return nil
}

// Validates a list of steps, recursing into groups.
func validateSteps(steps []Step, stage string) error {
	for i, step := range steps {
		if err := validateStep(step, stage, i); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step, stage string, index int) error {
	ops := 0
	if step.Run != "" {
		ops++
	}
	if step.Copy != "" {
		ops++
	}

	if ops > 1 {
		return fmt.Errorf("stage %s, step %d: run and copy are mutually exclusive", stage, index+1)
	}

	if len(step.Steps) > 0 {
		if ops > 0 {
			return fmt.Errorf("stage %s, step %d: a group cannot also carry an operation", stage, index+1)
		}
		return validateSteps(step.Steps, stage)
	}

	hasModifier := step.Shell != "" || step.Workdir != "" || len(step.Env) > 0
	if ops == 0 && !hasModifier {
		return fmt.Errorf("stage %s, step %d: empty step", stage, index+1)
	}

	return nil
}

// Returns a human-readable stage reference for error messages.
func stageRef(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
