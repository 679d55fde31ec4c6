package kasa

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPort is the fixed TCP/UDP port the strip listens on.
	DefaultPort = 9999

	// DefaultTimeout bounds the connect, write and read phases of one request.
	DefaultTimeout = 2 * time.Second

	// MaxResponseSize caps a single response frame or datagram.
	MaxResponseSize = 64 * 1024
)

// Protocol selects the socket type used to reach the strip.
type Protocol string

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

func (p Protocol) String() string {
	return string(p)
}

func (p *Protocol) Set(v string) error {
	parsed, err := ParseProtocol(v)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Protocol) Type() string {
	return "Protocol"
}

// ParseProtocol accepts "tcp" or "udp" in any case.
func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(s))) {
	case TCP:
		return TCP, nil
	case UDP:
		return UDP, nil
	default:
		return "", configError("protocol", "must be one of %v, got %q", []Protocol{TCP, UDP}, s)
	}
}

// Client sends single request/response exchanges to a strip. It holds no
// sockets between calls, so one value can be shared by concurrent callers.
type Client struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func (c *Client) address() string {
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c *Client) deadline(ctx context.Context) time.Time {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// Send dispatches command over the given protocol.
func (c *Client) Send(ctx context.Context, proto Protocol, command []byte) ([]byte, error) {
	switch proto {
	case TCP:
		return c.SendTCP(ctx, command)
	case UDP:
		return c.SendUDP(ctx, command)
	default:
		return nil, configError("send", "unknown protocol %q", proto)
	}
}

// SendTCP writes one length-prefixed frame and reads one framed reply.
// The returned bytes are the deciphered JSON payload.
func (c *Client) SendTCP(ctx context.Context, command []byte) ([]byte, error) {
	deadline := c.deadline(ctx)
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.address())
	if err != nil {
		return nil, connectionError("dial tcp", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Str("host", c.Host).Msg("could not close tcp connection")
		}
	}()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, connectionError("set deadline", err)
	}

	log.Debug().Str("host", c.Host).Str("protocol", "tcp").RawJSON("request", command).Msg("sending command")
	if _, err := conn.Write(Encode(command, true)); err != nil {
		return nil, connectionError("write tcp", err)
	}

	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, connectionError("read tcp header", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxResponseSize {
		return nil, protocolError("read tcp", fmt.Errorf("response length %d exceeds maximum %d bytes", size, MaxResponseSize))
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(conn, body); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, protocolError("read tcp", fmt.Errorf("truncated response: %w", err))
		}
		return nil, connectionError("read tcp", err)
	}
	return c.payload("tcp", Decode(body))
}

// SendUDP writes one unprefixed datagram and deciphers the whole reply
// datagram.
func (c *Client) SendUDP(ctx context.Context, command []byte) ([]byte, error) {
	deadline := c.deadline(ctx)
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "udp", c.address())
	if err != nil {
		return nil, connectionError("dial udp", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Str("host", c.Host).Msg("could not close udp socket")
		}
	}()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, connectionError("set deadline", err)
	}

	log.Debug().Str("host", c.Host).Str("protocol", "udp").RawJSON("request", command).Msg("sending command")
	if _, err := conn.Write(Encode(command, false)); err != nil {
		return nil, connectionError("write udp", err)
	}

	buf := make([]byte, MaxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, connectionError("read udp", err)
	}
	return c.payload("udp", Decode(buf[:n]))
}

func (c *Client) payload(proto string, plaintext []byte) ([]byte, error) {
	if !json.Valid(plaintext) {
		return nil, protocolError("decode "+proto, fmt.Errorf("response is not valid JSON (%d bytes)", len(plaintext)))
	}
	log.Debug().Str("host", c.Host).Str("protocol", proto).RawJSON("response", plaintext).Msg("received response")
	return plaintext, nil
}
