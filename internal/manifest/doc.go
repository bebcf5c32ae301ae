// Package manifest defines the recipe model and its parsers.
//
// A recipe is an ordered list of stages, each starting from a base image
// (an OCI archive on disk or a previously imported image tag) and carrying
// a list of steps: shell commands, file copies, and persistent modifiers
// (shell, workdir, environment). Stages may declare an entrypoint and a
// default command that are baked into the exported image config.
//
// Recipes are written as YAML documents or as a Dockerfile subset; both
// parse to the same model. See [Load] for the file-level entry point.
package manifest
