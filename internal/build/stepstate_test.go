package build

import (
	"slices"
	"testing"

	"github.com/packforge/packd/internal/manifest"
)

func TestNewStepState(t *testing.T) {
	state := newStepState()

	if state.shell != defaultShell {
		t.Errorf("shell = %q, want %q", state.shell, defaultShell)
	}
	if state.workdir != "" {
		t.Errorf("workdir = %q, want empty", state.workdir)
	}
	if len(state.env) != 0 {
		t.Errorf("env = %v, want empty", state.env)
	}
}

func TestStepStateApply(t *testing.T) {
	state := newStepState()

	state.apply(manifest.Step{Shell: "/bin/bash"})
	if state.shell != "/bin/bash" {
		t.Errorf("shell = %q, want /bin/bash", state.shell)
	}

	state.apply(manifest.Step{Workdir: "/app"})
	if state.workdir != "/app" {
		t.Errorf("workdir = %q, want /app", state.workdir)
	}

	// Empty fields leave existing values untouched.
	state.apply(manifest.Step{Env: map[string]string{"FOO": "bar"}})
	if state.shell != "/bin/bash" {
		t.Errorf("shell changed to %q after env apply", state.shell)
	}
	if state.workdir != "/app" {
		t.Errorf("workdir changed to %q after env apply", state.workdir)
	}
	if state.env["FOO"] != "bar" {
		t.Errorf("env[FOO] = %q, want bar", state.env["FOO"])
	}

	// Later env values override earlier ones.
	state.apply(manifest.Step{Env: map[string]string{"FOO": "baz", "X": "1"}})
	if state.env["FOO"] != "baz" {
		t.Errorf("env[FOO] = %q, want baz", state.env["FOO"])
	}
	if state.env["X"] != "1" {
		t.Errorf("env[X] = %q, want 1", state.env["X"])
	}
}

func TestResolveWorkdir(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		want    string
	}{
		{"absolute replaces", "/src", "/app", "/app"},
		{"relative joins onto previous", "/src", "app", "/src/app"},
		{"relative without previous starts at root", "", "app", "/app"},
		{"empty keeps current", "/src", "", "/src"},
		{"parent traversal", "/src/app", "..", "/src"},
		{"absolute cleans trailing slash", "", "/app/", "/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveWorkdir(tt.current, tt.next); got != tt.want {
				t.Errorf("resolveWorkdir(%q, %q) = %q, want %q", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestStepStateApplyRelativeWorkdir(t *testing.T) {
	state := newStepState()
	state.apply(manifest.Step{Workdir: "/src"})
	state.apply(manifest.Step{Workdir: "app"})

	if state.workdir != "/src/app" {
		t.Errorf("workdir = %q, want /src/app", state.workdir)
	}

	resolved := state.resolve(manifest.Step{Workdir: "sub"})
	if resolved.workdir != "/src/app/sub" {
		t.Errorf("resolved workdir = %q, want /src/app/sub", resolved.workdir)
	}
	if state.workdir != "/src/app" {
		t.Errorf("state workdir changed to %q", state.workdir)
	}
}

func TestStepStateResolve(t *testing.T) {
	state := newStepState()
	state.apply(manifest.Step{
		Workdir: "/app",
		Env:     map[string]string{"A": "1", "B": "2"},
	})

	resolved := state.resolve(manifest.Step{
		Shell:   "/bin/bash",
		Workdir: "/tmp",
		Env:     map[string]string{"B": "override", "C": "3"},
	})

	if resolved.shell != "/bin/bash" {
		t.Errorf("resolved shell = %q, want /bin/bash", resolved.shell)
	}
	if resolved.workdir != "/tmp" {
		t.Errorf("resolved workdir = %q, want /tmp", resolved.workdir)
	}
	if resolved.env["A"] != "1" || resolved.env["B"] != "override" || resolved.env["C"] != "3" {
		t.Errorf("resolved env = %v", resolved.env)
	}

	// The persistent state is untouched.
	if state.shell != defaultShell {
		t.Errorf("state shell = %q, want %q", state.shell, defaultShell)
	}
	if state.workdir != "/app" {
		t.Errorf("state workdir = %q, want /app", state.workdir)
	}
	if state.env["B"] != "2" {
		t.Errorf("state env[B] = %q, want 2", state.env["B"])
	}
	if _, ok := state.env["C"]; ok {
		t.Error("step env leaked into persistent state")
	}
}

func TestStepStateEnviron(t *testing.T) {
	state := newStepState()
	state.apply(manifest.Step{
		Env: map[string]string{
			"PYTHONDONTWRITEBYTECODE": "1",
			"APP_HOME":                "/app",
			"PATH":                    "/usr/local/bin:/usr/bin",
		},
	})

	got := state.environ()
	want := []string{
		"APP_HOME=/app",
		"PATH=/usr/local/bin:/usr/bin",
		"PYTHONDONTWRITEBYTECODE=1",
	}
	if !slices.Equal(got, want) {
		t.Errorf("environ() = %v, want %v", got, want)
	}
}

func TestImageConfig(t *testing.T) {
	state := newStepState()
	state.apply(manifest.Step{
		Workdir: "/app",
		Env:     map[string]string{"PYTHONDONTWRITEBYTECODE": "1"},
	})

	stage := manifest.Stage{
		Name: "app",
		Cmd:  []string{"python", "bot.py"},
	}

	p := &pipeline{}
	cfg := p.imageConfig(stage, state)

	if !slices.Equal(cfg.Cmd, []string{"python", "bot.py"}) {
		t.Errorf("cmd = %v", cfg.Cmd)
	}
	if cfg.Workdir != "/app" {
		t.Errorf("workdir = %q, want /app", cfg.Workdir)
	}
	if !slices.Equal(cfg.Env, []string{"PYTHONDONTWRITEBYTECODE=1"}) {
		t.Errorf("env = %v", cfg.Env)
	}

	// A build-level entrypoint override replaces both entrypoint and cmd.
	p.entrypoint = []string{"/usr/bin/tini", "--"}
	cfg = p.imageConfig(stage, state)
	if !slices.Equal(cfg.Entrypoint, []string{"/usr/bin/tini", "--"}) {
		t.Errorf("entrypoint = %v", cfg.Entrypoint)
	}
	if cfg.Cmd != nil {
		t.Errorf("cmd = %v, want nil", cfg.Cmd)
	}
}
