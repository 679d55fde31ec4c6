package kasa

import (
	"errors"
	"fmt"
)

// Error kinds reported by the strip client. Match them with errors.Is.
var (
	// ErrConfig covers bad caller input: missing host, unknown protocol,
	// state strings other than "on"/"off" and outlet targets that don't resolve.
	ErrConfig = errors.New("kasa: invalid configuration")

	// ErrConnection is returned for socket-level failures such as timeouts,
	// refused connections and unreachable hosts.
	ErrConnection = errors.New("kasa: connection failed")

	// ErrProtocol is returned when a response cannot be deciphered into JSON or
	// lacks the expected module/method path.
	ErrProtocol = errors.New("kasa: protocol error")
)

// Error carries the kind of failure along with the operation that produced it.
type Error struct {
	Kind error  // one of ErrConfig, ErrConnection, ErrProtocol
	Op   string // e.g. "get_sysinfo", "dial tcp"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func configError(op string, format string, args ...any) error {
	return &Error{Kind: ErrConfig, Op: op, Err: fmt.Errorf(format, args...)}
}

func connectionError(op string, err error) error {
	return &Error{Kind: ErrConnection, Op: op, Err: err}
}

func protocolError(op string, err error) error {
	return &Error{Kind: ErrProtocol, Op: op, Err: err}
}
