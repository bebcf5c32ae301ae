package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/packforge/packd/internal/manifest"
	"github.com/packforge/packd/internal/paths"
	"github.com/packforge/packd/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe     *manifest.Recipe // Recipe to execute.
	Resource   string           // Resource name, used as a prefix for container IDs.
	Output     string           // Directory for the exported image.
	Root       string           // Build context, for resolving copy sources and archive bases.
	Entrypoint []string         // Overrides the recipe's entrypoint for the output image.
	Platforms  []string         // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
}

// Returned after successful recipe execution.
type Result struct {
	Output string // Directory containing the exported image.
}

// Executes a recipe against the container engine.
//
// Stages are built in declaration order. Each stage starts a container
// from its base image and executes the stage's steps. Non-transient stages
// are exported as OCI archives to the output directory with the stage's
// accumulated process configuration baked into the image config.
func Run(ctx context.Context, eng *runtime.Engine, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{runtime.DefaultPlatform()}
	}

	slog.Info("executing recipe",
		"resource", opts.Resource,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(eng, opts).run(ctx, opts.Recipe.Stages)
}
