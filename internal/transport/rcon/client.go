package rcon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gorcon "github.com/gorcon/rcon"

	"voxelops.dev/internal/transport"
)

// Client implements transport.Transport over TCP Source-RCON. Every Execute
// dials a fresh authenticated session and closes it afterwards, so the
// client itself carries no connection state.
type Client struct {
	addr        string
	password    string
	dialTimeout time.Duration
}

func NewClient(addr, password string, dialTimeout time.Duration) *Client {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	return &Client{addr: addr, password: password, dialTimeout: dialTimeout}
}

func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts := []gorcon.Option{gorcon.SetDialTimeout(c.dialTimeout)}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", context.DeadlineExceeded
		}
		opts = append(opts, gorcon.SetDeadline(remaining))
	}

	conn, err := gorcon.Dial(c.addr, c.password, opts...)
	if err != nil {
		if errors.Is(err, gorcon.ErrAuthFailed) || strings.Contains(strings.ToLower(err.Error()), "authentication") {
			return "", fmt.Errorf("%w: %s", transport.ErrAuthRejected, c.addr)
		}
		return "", fmt.Errorf("%w: dial %s: %v", transport.ErrUnreachable, c.addr, err)
	}
	defer conn.Close()

	resp, err := conn.Execute(command)
	if err != nil {
		return "", fmt.Errorf("rcon execute: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
