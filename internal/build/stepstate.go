package build

import (
	"maps"
	"path"
	"slices"

	"github.com/packforge/packd/internal/manifest"
)

// Default shell used for run steps when no shell modifier has been set.
const defaultShell = "/bin/sh"

// Tracks accumulated modifiers during step execution.
//
// State flows linearly through the step list. Standalone modifiers update
// the state permanently via apply. Operations read the effective values
// for a single step via resolve without modifying the persistent state.
type stepState struct {
	shell   string
	workdir string
	env     map[string]string
}

// Creates a new [stepState] with default values.
func newStepState() *stepState {
	return &stepState{
		shell: defaultShell,
		env:   make(map[string]string),
	}
}

// Persists modifier fields from a step into the state.
//
// Called for standalone modifier steps and groups. The state is mutated
// permanently, affecting all subsequent steps.
func (s *stepState) apply(step manifest.Step) {
	if step.Shell != "" {
		s.shell = step.Shell
	}
	s.workdir = resolveWorkdir(s.workdir, step.Workdir)
	maps.Copy(s.env, step.Env)
}

// Returns a new [stepState] with step-level modifiers overlaid on the
// persistent state. The receiver is not modified.
func (s *stepState) resolve(step manifest.Step) *stepState {
	resolved := &stepState{
		shell:   s.shell,
		workdir: s.workdir,
		env:     make(map[string]string, len(s.env)+len(step.Env)),
	}
	maps.Copy(resolved.env, s.env)
	maps.Copy(resolved.env, step.Env)

	if step.Shell != "" {
		resolved.shell = step.Shell
	}
	resolved.workdir = resolveWorkdir(s.workdir, step.Workdir)

	return resolved
}

// Resolves a workdir change against the current workdir.
//
// Relative paths are joined onto the previous value, starting from the
// container root, so "/src" followed by "app" yields "/src/app".
func resolveWorkdir(current, next string) string {
	if next == "" {
		return current
	}
	if path.IsAbs(next) {
		return path.Clean(next)
	}
	if current == "" {
		current = "/"
	}
	return path.Join(current, next)
}

// Formats the environment as a sorted list of "key=value" strings suitable
// for container exec and image configs.
func (s *stepState) environ() []string {
	env := make([]string, 0, len(s.env))
	for k, v := range s.env {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env
}
