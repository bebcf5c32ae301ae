package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/packforge/packd/internal/client"
	"github.com/packforge/packd/internal/protocol"
)

// Represents the 'packd tag' command group.
type TagCmd struct {
	Create TagCreateCmd `cmd:"" help:"Create a tag pointing at a target."`
	Update TagUpdateCmd `cmd:"" help:"Repoint an existing tag."`
	Get    TagGetCmd    `cmd:"" help:"Show a single tag."`
	Ls     TagLsCmd     `cmd:"" help:"List tags, newest first."`
	Rm     TagRmCmd     `cmd:"" help:"Remove a tag."`
}

// Represents the 'packd tag create' command.
type TagCreateCmd struct {
	Name   string `arg:"" help:"Tag name (name:tag)."`
	Target string `arg:"" help:"Target image path or existing tag name."`
}

// Executes the tag create command.
func (c *TagCreateCmd) Run(ctx context.Context) error {
	rec, err := client.Call[protocol.TagRecord](ctx, newClient(), protocol.CmdTagCreate, &protocol.TagCreateRequest{
		Name:   c.Name,
		Target: c.Target,
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %s -> %s\n", rec.Name, rec.Target)
	return nil
}

// Represents the 'packd tag update' command.
type TagUpdateCmd struct {
	Name   string `arg:"" help:"Tag name (name:tag)."`
	Target string `arg:"" help:"New target image path or existing tag name."`
}

// Executes the tag update command.
func (c *TagUpdateCmd) Run(ctx context.Context) error {
	rec, err := client.Call[protocol.TagRecord](ctx, newClient(), protocol.CmdTagUpdate, &protocol.TagUpdateRequest{
		Name:   c.Name,
		Target: c.Target,
	})
	if err != nil {
		return err
	}

	fmt.Printf("updated %s -> %s\n", rec.Name, rec.Target)
	return nil
}

// Represents the 'packd tag get' command.
type TagGetCmd struct {
	Name string `arg:"" help:"Tag name (name:tag)."`
}

// Executes the tag get command.
func (c *TagGetCmd) Run(ctx context.Context) error {
	rec, err := client.Call[protocol.TagRecord](ctx, newClient(), protocol.CmdTagGet, &protocol.TagGetRequest{
		Name: c.Name,
	})
	if err != nil {
		return err
	}

	printTagTable([]protocol.TagRecord{rec})
	return nil
}

// Represents the 'packd tag ls' command.
type TagLsCmd struct {
	Skip   int    `help:"Number of tags to skip." default:"0"`
	Limit  int    `help:"Maximum number of tags to list." default:"20"`
	Target string `help:"Only list tags pointing at this target." placeholder:"TARGET"`
}

// Executes the tag ls command.
func (c *TagLsCmd) Run(ctx context.Context) error {
	page, err := client.Call[protocol.TagListResult](ctx, newClient(), protocol.CmdTagList, &protocol.TagListRequest{
		Skip:   c.Skip,
		Limit:  c.Limit,
		Target: c.Target,
	})
	if err != nil {
		return err
	}

	printTagTable(page.Data)

	shown := c.Skip + len(page.Data)
	if shown < page.Total {
		fmt.Printf("\n%d of %d tags shown, use --skip %d for more\n", shown, page.Total, shown)
	}
	return nil
}

// Represents the 'packd tag rm' command.
type TagRmCmd struct {
	Name string `arg:"" help:"Tag name (name:tag)."`
}

// Executes the tag rm command.
func (c *TagRmCmd) Run(ctx context.Context) error {
	if _, err := newClient().Call(ctx, protocol.CmdTagDelete, &protocol.TagDeleteRequest{Name: c.Name}); err != nil {
		return err
	}

	fmt.Printf("removed %s\n", c.Name)
	return nil
}

// Prints tag records as an aligned table with relative ages.
func printTagTable(records []protocol.TagRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTARGET\tAGE")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.Name, rec.Target, humanize.Time(rec.CreatedAt))
	}
	w.Flush()
}
