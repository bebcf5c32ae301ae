// Package build orchestrates recipe execution against the container engine.
//
// A recipe is an ordered sequence of stages, each backed by a container
// created from a base image. The build pipeline starts a container for
// each stage, dispatches its steps (shell commands, file copies, and
// inter-stage transfers), and exports each non-transient stage as an OCI
// image with the stage's accumulated process configuration (entrypoint,
// command, environment, working directory) baked into the image config.
// Multi-platform builds repeat the pipeline per platform, writing each
// result to a platform-specific output directory.
//
// Container operations are delegated to the runtime package. Step state
// (environment variables, working directory, shell) accumulates across
// steps within a stage and resets between stages.
//
// Example usage:
//
//	result, err := build.Run(ctx, eng, build.Options{
//	    Recipe:    recipe,
//	    Resource:  "my-bot",
//	    Output:    "dist",
//	    Root:      ".",
//	    Platforms: []string{"linux/amd64", "linux/arm64"},
//	})
//	if err != nil {
//	    return err
//	}
package build
