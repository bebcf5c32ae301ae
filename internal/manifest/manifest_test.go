package manifest

import (
	"strings"
	"testing"
)

func TestParseFrom(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		kind    SourceKind
		value   string
		wantErr bool
	}{
		{
			name:  "archive path",
			from:  "base/python.tar",
			kind:  SourceArchive,
			value: "base/python.tar",
		},
		{
			name:  "image reference",
			from:  "image:python:3.11-slim",
			kind:  SourceImage,
			value: "python:3.11-slim",
		},
		{
			name:  "whitespace trimmed",
			from:  "  base.tar  ",
			kind:  SourceArchive,
			value: "base.tar",
		},
		{
			name:    "empty",
			from:    "",
			wantErr: true,
		},
		{
			name:    "empty image reference",
			from:    "image:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Stage{From: tt.from}.ParseFrom()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", src.Kind, tt.kind)
			}
			if src.Value != tt.value {
				t.Errorf("value = %q, want %q", src.Value, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  Recipe
		wantErr string
	}{
		{
			name: "minimal valid",
			recipe: Recipe{Stages: []Stage{
				{From: "base.tar", Steps: []Step{{Run: "true"}}},
			}},
		},
		{
			name:    "no stages",
			recipe:  Recipe{},
			wantErr: "no stages",
		},
		{
			name: "all transient",
			recipe: Recipe{Stages: []Stage{
				{From: "base.tar", Transient: true},
			}},
			wantErr: "transient",
		},
		{
			name: "duplicate names",
			recipe: Recipe{Stages: []Stage{
				{Name: "build", From: "a.tar"},
				{Name: "build", From: "b.tar"},
			}},
			wantErr: "duplicate",
		},
		{
			name: "missing from",
			recipe: Recipe{Stages: []Stage{
				{Steps: []Step{{Run: "true"}}},
			}},
			wantErr: "missing from",
		},
		{
			name: "run and copy together",
			recipe: Recipe{Stages: []Stage{
				{From: "a.tar", Steps: []Step{{Run: "true", Copy: "a b"}}},
			}},
			wantErr: "mutually exclusive",
		},
		{
			name: "group with operation",
			recipe: Recipe{Stages: []Stage{
				{From: "a.tar", Steps: []Step{{Run: "true", Steps: []Step{{Run: "false"}}}}},
			}},
			wantErr: "group",
		},
		{
			name: "empty step",
			recipe: Recipe{Stages: []Stage{
				{From: "a.tar", Steps: []Step{{}}},
			}},
			wantErr: "empty step",
		},
		{
			name: "modifier only step is valid",
			recipe: Recipe{Stages: []Stage{
				{From: "a.tar", Steps: []Step{{Workdir: "/app"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	input := `
stages:
  - name: deps
    from: base/python.tar
    transient: true
    steps:
      - workdir: /app
      - copy: requirements.txt .
      - run: pip install -r requirements.txt
  - from: base/python.tar
    cmd: ["python", "bot.py"]
    steps:
      - env:
          PYTHONDONTWRITEBYTECODE: "1"
      - copy: "deps:/app /app"
`

	recipe, err := ParseYAML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recipe.Stages) != 2 {
		t.Fatalf("len(stages) = %d, want 2", len(recipe.Stages))
	}
	if recipe.Stages[0].Name != "deps" || !recipe.Stages[0].Transient {
		t.Errorf("first stage = %+v", recipe.Stages[0])
	}
	if recipe.Stages[1].Steps[0].Env["PYTHONDONTWRITEBYTECODE"] != "1" {
		t.Errorf("env = %v", recipe.Stages[1].Steps[0].Env)
	}

	if err := recipe.Validate(); err != nil {
		t.Fatalf("validation failed: %v", err)
	}
}
