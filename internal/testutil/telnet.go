package testutil

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a simple Telnet test client for integration testing.
// Output read past a match is kept for the next ReadUntil.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	pending string
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return newClient(t, conn)
}

// NewTLSTelnetClient dials addr over TLS. Certificate verification is
// skipped so tests can use self-signed certificates.
//
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTLSTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		t.Fatalf("tls connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Logf("telnet client connected to %s over tls [%s]", addr, time.Since(start))
	return newClient(t, conn)
}

func newClient(t *testing.T, conn net.Conn) *TelnetClient {
	t.Cleanup(func() {
		conn.Close()
	})
	return &TelnetClient{
		conn: conn,
		t:    t,
	}
}

// ReadUntil reads data until the specified substring is found or timeout occurs.
// It returns all data read up to and including the match.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the accumulated output containing substr, or fails on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	out, err := c.readUntil(substr, timeout)
	if err != nil {
		c.t.Fatalf("reading until %q: got %q, error: %v", substr, out, err)
	}
	return out
}

// TryReadUntil is ReadUntil without failing the test: ok is false when the
// connection closed or timed out before substr arrived.
func (c *TelnetClient) TryReadUntil(substr string, timeout time.Duration) (out string, ok bool) {
	out, err := c.readUntil(substr, timeout)
	return out, err == nil
}

func (c *TelnetClient) readUntil(substr string, timeout time.Duration) (string, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	buf := c.pending
	tmp := make([]byte, 1024)
	for {
		if idx := strings.Index(buf, substr); idx >= 0 {
			end := idx + len(substr)
			c.pending = buf[end:]
			return buf[:end], nil
		}
		n, err := c.conn.Read(tmp)
		buf += string(tmp[:n])
		if err != nil && !strings.Contains(buf, substr) {
			c.pending = buf
			return buf, err
		}
	}
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
// Postcondition: text + \r\n is written to the connection.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := fmt.Fprintf(c.conn, "%s\r\n", text)
	if err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
