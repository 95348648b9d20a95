package telnet

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854) and the options the chat server negotiates.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds a single line of chat input in bytes.
const MaxLineLength = 2048

// ErrLineTooLong is returned by ReadLine when a line exceeds MaxLineLength.
// The rest of the line is discarded and the connection stays usable.
var ErrLineTooLong = errors.New("line too long")

// Conn wraps a TCP or TLS connection with Telnet protocol handling: IAC
// sequences are stripped from input and writes are serialised so the
// session's reader and outbox writer can share one connection.
type Conn struct {
	raw       net.Conn
	reader    *bufio.Reader
	encrypted bool

	mu sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. The connection counts as encrypted when raw is a
// *tls.Conn.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	_, encrypted := raw.(*tls.Conn)
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		encrypted:    encrypted,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead; clients stay in their default
// line mode with local echo.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of input without its terminator. Telnet commands
// and control characters other than tab are dropped. A line is ended by
// "\n", "\r" or "\r\n".
//
// Postcondition: on ErrLineTooLong the first MaxLineLength bytes are
// returned and the remainder of the line has been consumed.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	overflow := false
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
			continue
		case b == '\n':
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
		case b < 32 && b != '\t':
			continue
		default:
			if line.Len() >= MaxLineLength {
				overflow = true
			} else {
				line.WriteByte(b)
			}
			continue
		}

		if overflow {
			return line.String(), ErrLineTooLong
		}
		return line.String(), nil
	}
}

// skipCommand consumes the remainder of a command whose IAC byte has been
// read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return err
	case SB:
		prev := byte(0)
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// WriteLine sends text followed by "\r\n".
//
// Precondition: text should not end with a newline.
func (c *Conn) WriteLine(text string) error {
	return c.write([]byte(text + "\r\n"))
}

// Write sends text as-is, e.g. a pre-formatted banner.
func (c *Conn) Write(data []byte) error {
	return c.write(data)
}

// WritePrompt sends prompt without a trailing newline.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := io.Copy(c.raw, bytes.NewReader(data))
	return err
}

// Close closes the underlying connection, unblocking any pending ReadLine.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// Encrypted reports whether the connection is served over TLS.
func (c *Conn) Encrypted() bool {
	return c.encrypted
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
