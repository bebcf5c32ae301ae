package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/packforge/packd/internal/client"
	"github.com/packforge/packd/internal/protocol"
)

// Represents the 'packd container' command group.
type ContainerCmd struct {
	Stop   ContainerStopCmd   `cmd:"" help:"Stop a running container."`
	Rm     ContainerRmCmd     `cmd:"" help:"Destroy a container."`
	Status ContainerStatusCmd `cmd:"" help:"Show a container's state."`
	Exec   ContainerExecCmd   `cmd:"" help:"Run a command inside a container."`
}

// Represents the 'packd container stop' command.
type ContainerStopCmd struct {
	ID string `arg:"" help:"Container ID."`
}

// Executes the container stop command.
func (c *ContainerStopCmd) Run(ctx context.Context) error {
	if _, err := newClient().Call(ctx, protocol.CmdContainerStop, &protocol.ContainerRequest{ID: c.ID}); err != nil {
		return err
	}

	fmt.Printf("stopped %s\n", c.ID)
	return nil
}

// Represents the 'packd container rm' command.
type ContainerRmCmd struct {
	ID string `arg:"" help:"Container ID."`
}

// Executes the container rm command.
func (c *ContainerRmCmd) Run(ctx context.Context) error {
	if _, err := newClient().Call(ctx, protocol.CmdContainerDestroy, &protocol.ContainerRequest{ID: c.ID}); err != nil {
		return err
	}

	fmt.Printf("removed %s\n", c.ID)
	return nil
}

// Represents the 'packd container status' command.
type ContainerStatusCmd struct {
	ID string `arg:"" help:"Container ID."`
}

// Executes the container status command.
func (c *ContainerStatusCmd) Run(ctx context.Context) error {
	res, err := client.Call[protocol.ContainerStatusResult](ctx, newClient(), protocol.CmdContainerStatus, &protocol.ContainerRequest{ID: c.ID})
	if err != nil {
		return err
	}

	fmt.Println(res.State)
	return nil
}

// Represents the 'packd container exec' command.
type ContainerExecCmd struct {
	ID   string   `arg:"" help:"Container ID."`
	Args []string `arg:"" passthrough:"" help:"Command and arguments to run."`
}

// Executes the container exec command.
//
// The remote command's output is replayed on the local stdout and stderr,
// and its exit code becomes an error when non-zero.
func (c *ContainerExecCmd) Run(ctx context.Context) error {
	res, err := client.Call[protocol.ContainerExecResult](ctx, newClient(), protocol.CmdContainerExec, &protocol.ContainerExecRequest{
		ID:   c.ID,
		Args: c.Args,
	})
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, res.Stdout)
	fmt.Fprint(os.Stderr, res.Stderr)

	if res.ExitCode != 0 {
		return fmt.Errorf("command exited with code %d", res.ExitCode)
	}
	return nil
}
