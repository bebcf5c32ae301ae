package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/packforge/packd/internal/paths"
	"github.com/packforge/packd/internal/protocol"
)

// Returned when the daemon socket cannot be reached.
var ErrConnect = errors.New("cannot connect to daemon")

// Returned when the daemon reports a command failure.
var ErrDaemon = errors.New("daemon error")

const (

	// Maximum number of dial attempts before giving up.
	maxDialRetries = 4

	// Initial backoff interval between dial attempts.
	dialInterval = 50 * time.Millisecond
)

// Talks to the packd daemon over its Unix socket.
//
// Each command opens a fresh connection, performs one request-response
// exchange, and closes it.
type Client struct {
	socket string
}

// Creates a client for the given socket path. Empty uses the default.
func New(socket string) *Client {
	if socket == "" {
		socket = paths.Socket()
	}
	return &Client{socket: socket}
}

// Sends a command and returns the raw payload of the response.
//
// A response with the error kind is converted into an error wrapping
// [ErrDaemon].
func (c *Client) Call(ctx context.Context, cmd protocol.Command, payload any) (json.RawMessage, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, err
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	env, raw, err := protocol.Decode(line)
	if err != nil {
		return nil, err
	}

	if env.Command == protocol.CmdError {
		res, err := protocol.DecodePayload[protocol.ErrorResult](raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed error response", ErrDaemon)
		}
		return nil, fmt.Errorf("%w: %s", ErrDaemon, res.Message)
	}

	return raw, nil
}

// Sends a command and decodes the response payload into T.
func Call[T any](ctx context.Context, c *Client, cmd protocol.Command, payload any) (T, error) {
	raw, err := c.Call(ctx, cmd, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return protocol.DecodePayload[T](raw)
}

// Whether the daemon socket accepts connections.
func (c *Client) Reachable(ctx context.Context) bool {
	conn, err := (&net.Dialer{}).DialContext(ctx, "unix", c.socket)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Dials the daemon socket, retrying briefly to ride out daemon startup.
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var conn net.Conn

	attempt := func() error {
		var err error
		conn, err = (&net.Dialer{}).DialContext(ctx, "unix", c.socket)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = dialInterval

	err := backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(policy, maxDialRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrConnect, c.socket, err)
	}

	return conn, nil
}
