package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/packforge/packd/internal/client"
	"github.com/packforge/packd/internal/protocol"
)

// Represents the 'packd status' command.
type StatusCmd struct{}

// Executes the status command.
//
// An unreachable daemon is reported as not running rather than as an
// error.
func (c *StatusCmd) Run(ctx context.Context) error {
	res, err := client.Call[protocol.StatusResult](ctx, newClient(), protocol.CmdStatus, nil)
	if errors.Is(err, client.ErrConnect) {
		fmt.Println("packd is not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("packd is running\n")
	fmt.Printf("  version: %s\n", res.Version)
	fmt.Printf("  pid:     %d\n", res.Pid)
	fmt.Printf("  uptime:  %s\n", res.Uptime)
	fmt.Printf("  builds:  %d\n", res.Builds)
	fmt.Printf("  tags:    %d\n", res.Tags)
	return nil
}

// Represents the 'packd stop' command.
type StopCmd struct{}

// Executes the stop command by sending a shutdown request to the daemon.
func (c *StopCmd) Run(ctx context.Context) error {
	cl := newClient()
	if !cl.Reachable(ctx) {
		fmt.Println("packd is not running")
		return nil
	}

	if _, err := cl.Call(ctx, protocol.CmdShutdown, nil); err != nil {
		return err
	}

	fmt.Println("packd stopped")
	return nil
}
