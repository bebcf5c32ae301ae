package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reads a recipe from a file, choosing the parser by filename.
//
// Files named "Dockerfile" (any directory) or carrying a ".dockerfile"
// suffix go through the Dockerfile parser. Everything else is parsed as
// a YAML recipe. The result is validated before it is returned.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(path, data)
}

// Parses recipe bytes, choosing the parser by the given filename.
//
// Useful when the recipe content arrives separately from its name, such
// as over the wire. The result is validated before it is returned.
func Parse(name string, data []byte) (*Recipe, error) {
	var recipe *Recipe
	var err error
	if isDockerfile(name) {
		recipe, err = ParseDockerfile(data)
	} else {
		recipe, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(name), err)
	}

	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recipe %s: %w", filepath.Base(name), err)
	}

	return recipe, nil
}

// Parses a YAML recipe document.
func ParseYAML(data []byte) (*Recipe, error) {
	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Whether the filename selects the Dockerfile parser.
func isDockerfile(path string) bool {
	base := filepath.Base(path)
	if base == "Dockerfile" || strings.HasPrefix(base, "Dockerfile.") {
		return true
	}
	return strings.HasSuffix(base, ".dockerfile")
}
