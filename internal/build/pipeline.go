package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/packd/internal/manifest"
	"github.com/packforge/packd/internal/paths"
	"github.com/packforge/packd/internal/runtime"
)

// Holds shared state while building all stages of a recipe.
type pipeline struct {
	eng        *runtime.Engine      // Container engine for image and container operations.
	resource   string               // Resource name, used as a prefix for container IDs.
	output     string               // Output directory for the final build artifact.
	context    string               // Build context, root for resolving copy sources.
	entrypoint []string             // Entrypoint override for the output image.
	platforms  []string             // Target platforms to build for.
	containers []*runtime.Container // All stage containers, destroyed after the build completes.
}

func newPipeline(eng *runtime.Engine, opts Options) *pipeline {
	return &pipeline{
		eng:        eng,
		resource:   opts.Resource,
		output:     opts.Output,
		context:    opts.Root,
		entrypoint: opts.Entrypoint,
		platforms:  opts.Platforms,
	}
}

// Builds the recipe end-to-end against the container engine.
//
// Each target platform is built independently. All stage containers are
// destroyed when the build completes.
func (p *pipeline) run(ctx context.Context, stages []manifest.Stage) (*Result, error) {
	defer p.destroyContainers(ctx)

	for _, platform := range p.platforms {
		if err := p.buildPlatform(ctx, stages, platform); err != nil {
			return nil, err
		}
	}

	return &Result{Output: p.output}, nil
}

// Builds all stages of the recipe for a single platform.
//
// Each platform maintains its own set of named stage containers for
// cross-stage copy lookups. The output is written to a platform-specific
// subdirectory when building for multiple platforms.
func (p *pipeline) buildPlatform(ctx context.Context, stages []manifest.Stage, platform string) error {
	slog.Info("building platform", "platform", platform)

	output := p.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	named := make(map[string]*runtime.Container)

	for i, stage := range stages {
		if err := p.buildStage(ctx, stage, i, platform, output, named); err != nil {
			return fmt.Errorf("%w: platform %s, stage %s: %w", ErrBuild, platform, stageLabel(stage.Name, i), err)
		}
	}

	return nil
}

// Builds a single stage of a recipe for a specific platform.
//
// Resolves the stage's base, starts a build container, executes the
// stage's steps, then commits the result. Non-transient stages are
// exported to the output directory with the stage's process configuration.
func (p *pipeline) buildStage(ctx context.Context, stage manifest.Stage, index int, platform, output string, named map[string]*runtime.Container) error {
	label := stageLabel(stage.Name, index)
	slog.Info(fmt.Sprintf("building stage %s", label), "platform", platform)

	ctr, err := p.startStage(ctx, stage, index, platform)
	if err != nil {
		return err
	}

	p.containers = append(p.containers, ctr)
	if stage.Name != "" {
		named[stage.Name] = ctr
	}

	state := newStepState()
	if err := executeSteps(ctx, ctr, stage.Steps, state, p.context, named); err != nil {
		return err
	}

	if stage.Transient {
		return nil
	}

	if err := ctr.Stop(ctx); err != nil {
		return err
	}

	return ctr.Export(ctx, output, p.imageConfig(stage, state))
}

// Starts the build container for a stage.
//
// Archive bases are resolved relative to the build context; image bases
// name previously imported tags.
func (p *pipeline) startStage(ctx context.Context, stage manifest.Stage, index int, platform string) (*runtime.Container, error) {
	src, err := stage.ParseFrom()
	if err != nil {
		return nil, err
	}

	id := p.containerID(stage.Name, index, platform)

	switch src.Kind {
	case manifest.SourceImage:
		return p.eng.StartFromImage(ctx, src.Value, id, platform)
	default:
		path := src.Value
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.context, path)
		}
		return p.eng.StartFromArchive(ctx, path, id, platform)
	}
}

// Assembles the image config exported with a stage.
//
// The stage's entrypoint and command come from the recipe; the environment
// and working directory are whatever the step state accumulated by the end
// of the stage. A build-level entrypoint override wins over the recipe.
func (p *pipeline) imageConfig(stage manifest.Stage, state *stepState) runtime.ImageConfig {
	cfg := runtime.ImageConfig{
		Entrypoint: stage.Entrypoint,
		Cmd:        stage.Cmd,
		Env:        state.environ(),
		Workdir:    state.workdir,
	}
	if len(p.entrypoint) > 0 {
		cfg.Entrypoint = p.entrypoint
		cfg.Cmd = nil
	}
	return cfg
}

// Destroys all stage containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a stage, scoped to this resource and
// platform.
func (p *pipeline) containerID(name string, index int, platform string) string {
	slug := platformSlug(platform)
	if name != "" {
		return fmt.Sprintf("%s-%s-stage-%s", p.resource, slug, name)
	}
	return fmt.Sprintf("%s-%s-stage-%d", p.resource, slug, index+1)
}

// Returns the output directory for a specific platform.
//
// When building for a single platform, the output directory is left as-is
// to preserve the {output}/image.tar convention. Multi-platform builds get
// a subdirectory per platform (e.g., {output}/linux-amd64).
func (p *pipeline) platformOutput(platform string) string {
	if len(p.platforms) == 1 {
		return p.output
	}
	return filepath.Join(p.output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}

// Returns a label for a stage, preferring the name when available and
// falling back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
