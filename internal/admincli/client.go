// Package admincli implements the client side of the four-letter command
// protocol for keeperctl: dial the admin listener, write the 4-byte command
// code, read the text response until the server closes the connection.
package admincli

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/flwd/keeperd/internal/flw"
)

// Client sends four-letter commands to a keeperd admin listener. Each Send
// uses a fresh connection; the protocol has no sessions.
type Client struct {
	Addr    string
	Timeout time.Duration
}

// New returns a client for the given admin address.
func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{Addr: addr, Timeout: timeout}
}

// Send runs one four-letter command and returns the server's full text
// response.
func (c *Client) Send(name string) (string, error) {
	code, err := flw.ToCode(name)
	if err != nil {
		return "", err
	}

	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", c.Addr, err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(c.Timeout))

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(code))
	if _, err := conn.Write(buf[:]); err != nil {
		return "", fmt.Errorf("send %q: %w", name, err)
	}

	// The server writes its whole response and closes; EOF is the frame
	// delimiter.
	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read %q response: %w", name, err)
	}
	return string(resp), nil
}
