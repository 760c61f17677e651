// Package wsconsole implements the command transport for servers that expose
// their admin console over a websocket bridge instead of raw TCP RCON. The
// exchange is line-oriented JSON: an AUTH frame, then one CMD/OUT pair per
// command.
package wsconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"voxelops.dev/internal/transport"
)

// Frame types.
const (
	typeAuth     = "AUTH"
	typeAuthOK   = "AUTH_OK"
	typeAuthFail = "AUTH_FAIL"
	typeCmd      = "CMD"
	typeOut      = "OUT"
)

type frame struct {
	Type     string `json:"type"`
	Password string `json:"password,omitempty"`
	Cmd      string `json:"cmd,omitempty"`
	Out      string `json:"out,omitempty"`
	Err      string `json:"err,omitempty"`
}

// Client implements transport.Transport over a websocket console. Each
// Execute dials, authenticates, runs one command, and closes the socket.
type Client struct {
	url      string
	password string
	timeout  time.Duration
}

func NewClient(url, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{url: url, password: password, timeout: timeout}
}

func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: dial %s: %v", transport.ErrUnreachable, c.url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.writeFrame(conn, deadline, frame{Type: typeAuth, Password: c.password}); err != nil {
		return "", err
	}
	ack, err := c.readFrame(conn, deadline)
	if err != nil {
		return "", err
	}
	if ack.Type != typeAuthOK {
		return "", fmt.Errorf("%w: %s", transport.ErrAuthRejected, c.url)
	}

	if err := c.writeFrame(conn, deadline, frame{Type: typeCmd, Cmd: command}); err != nil {
		return "", err
	}
	out, err := c.readFrame(conn, deadline)
	if err != nil {
		return "", err
	}
	if out.Type != typeOut {
		return "", fmt.Errorf("console: unexpected frame %q", out.Type)
	}
	if out.Err != "" {
		return "", fmt.Errorf("console: %s", out.Err)
	}
	return out.Out, nil
}

func (c *Client) writeFrame(conn *websocket.Conn, deadline time.Time, f frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}

func (c *Client) readFrame(conn *websocket.Conn, deadline time.Time) (frame, error) {
	_ = conn.SetReadDeadline(deadline)
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return frame{}, fmt.Errorf("console read: %w", err)
	}
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return frame{}, fmt.Errorf("console decode: %w", err)
	}
	return f, nil
}
