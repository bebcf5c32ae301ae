package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/packforge/packd/internal/protocol"
)

// Represents the 'packd image' command group.
type ImageCmd struct {
	Import ImageImportCmd `cmd:"" help:"Import an OCI archive under a tag."`
	Start  ImageStartCmd  `cmd:"" help:"Start a container from an imported image."`
	Rm     ImageRmCmd     `cmd:"" help:"Remove an image and its containers."`
}

// Represents the 'packd image import' command.
type ImageImportCmd struct {
	Path string `arg:"" help:"OCI archive to import." type:"existingfile"`
	Tag  string `arg:"" help:"Tag to import the image under (name:tag)."`
}

// Executes the image import command.
func (c *ImageImportCmd) Run(ctx context.Context) error {
	path, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}

	if _, err := newClient().Call(ctx, protocol.CmdImageImport, &protocol.ImageImportRequest{
		Path: path,
		Tag:  c.Tag,
	}); err != nil {
		return err
	}

	fmt.Printf("imported %s as %s\n", c.Path, c.Tag)
	return nil
}

// Represents the 'packd image start' command.
type ImageStartCmd struct {
	Tag string `arg:"" help:"Tag of the imported image (name:tag)."`
	ID  string `arg:"" help:"Container ID to start."`
}

// Executes the image start command.
func (c *ImageStartCmd) Run(ctx context.Context) error {
	if _, err := newClient().Call(ctx, protocol.CmdImageStart, &protocol.ImageStartRequest{
		Tag: c.Tag,
		ID:  c.ID,
	}); err != nil {
		return err
	}

	fmt.Printf("started %s from %s\n", c.ID, c.Tag)
	return nil
}

// Represents the 'packd image rm' command.
type ImageRmCmd struct {
	Tag string `arg:"" help:"Tag of the image to remove (name:tag)."`
}

// Executes the image rm command.
func (c *ImageRmCmd) Run(ctx context.Context) error {
	if _, err := newClient().Call(ctx, protocol.CmdImageDestroy, &protocol.ImageDestroyRequest{
		Tag: c.Tag,
	}); err != nil {
		return err
	}

	fmt.Printf("removed %s\n", c.Tag)
	return nil
}
