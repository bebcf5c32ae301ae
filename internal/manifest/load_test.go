package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRecipe(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}
	return path
}

func TestLoadDockerfile(t *testing.T) {
	path := writeRecipe(t, "Dockerfile", "FROM python:3.11-slim\nRUN pip install requests\n")

	recipe, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipe.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(recipe.Stages))
	}
	if recipe.Stages[0].From != "image:python:3.11-slim" {
		t.Errorf("from = %q", recipe.Stages[0].From)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeRecipe(t, "recipe.yaml", `
stages:
  - from: image:alpine:3.20
    steps:
      - run: echo hello
`)

	recipe, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipe.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(recipe.Stages))
	}
	if recipe.Stages[0].Steps[0].Run != "echo hello" {
		t.Errorf("run = %q", recipe.Stages[0].Steps[0].Run)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidRecipe(t *testing.T) {
	path := writeRecipe(t, "recipe.yaml", "stages: []\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty recipe")
	}
}

func TestIsDockerfile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Dockerfile", true},
		{"/srv/app/Dockerfile", true},
		{"Dockerfile.prod", true},
		{"app.dockerfile", true},
		{"recipe.yaml", false},
		{"dockerfile-notes.txt", false},
	}

	for _, tt := range tests {
		if got := isDockerfile(tt.path); got != tt.want {
			t.Errorf("isDockerfile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
