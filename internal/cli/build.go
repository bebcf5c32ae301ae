package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/packforge/packd/internal/client"
	"github.com/packforge/packd/internal/manifest"
	"github.com/packforge/packd/internal/protocol"
)

// Represents the 'packd build' command.
type BuildCmd struct {
	Recipe     string   `arg:"" help:"Recipe file (YAML or Dockerfile)." type:"existingfile"`
	Output     string   `short:"o" default:"dist" help:"Output directory for the exported archive."`
	Resource   string   `help:"Resource name used to label build containers. Defaults to the context directory name." placeholder:"NAME"`
	Root       string   `help:"Build context for copy sources. Defaults to the recipe's directory." placeholder:"DIR"`
	Entrypoint []string `help:"Override the recipe's entrypoint for the output image."`
	Platform   []string `help:"Target platform (repeatable, e.g. linux/amd64). Defaults to the daemon host." placeholder:"OS/ARCH"`
	Tag        string   `short:"t" help:"Register the build output under this tag." placeholder:"NAME:TAG"`
}

// Executes the build command.
//
// The recipe travels to the daemon as a file payload; small recipes are
// inlined, large ones are passed by absolute path. Output and context
// paths are made absolute before sending since the daemon resolves them
// in its own working directory.
func (c *BuildCmd) Run(ctx context.Context) error {

	// Parse locally first so malformed recipes fail before reaching the
	// daemon.
	if _, err := manifest.Load(c.Recipe); err != nil {
		return err
	}

	recipe, err := protocol.NewFile(c.Recipe)
	if err != nil {
		return err
	}

	root := c.Root
	if root == "" {
		root = filepath.Dir(c.Recipe)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}

	output, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}

	resource := c.Resource
	if resource == "" {
		resource = resourceName(root)
	}

	slog.Info("requesting build", "recipe", c.Recipe, "resource", resource, "output", output)

	res, err := client.Call[protocol.BuildResult](ctx, newClient(), protocol.CmdBuild, &protocol.BuildRequest{
		Recipe:     recipe,
		Resource:   resource,
		Output:     output,
		Root:       root,
		Entrypoint: c.Entrypoint,
		Platforms:  c.Platform,
		Tag:        c.Tag,
	})
	if err != nil {
		return err
	}

	fmt.Printf("built %s\n", res.Output)
	if res.Tag != nil {
		fmt.Printf("tagged %s -> %s\n", res.Tag.Name, res.Tag.Target)
	}
	return nil
}

// Derives a resource name from the build context directory.
func resourceName(root string) string {
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) {
		return "build"
	}
	return strings.ToLower(name)
}
