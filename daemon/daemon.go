package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultService is the well-known bus name owned by the contacts daemon.
	DefaultService = "com.github.TitouanReal.ContactsDaemon"
	// DefaultPath is the object path exporting the contacts interface.
	DefaultPath = "/com/github/TitouanReal/ContactsDaemon"
	// DefaultInterface is the interface carrying the contacts methods.
	DefaultInterface = "com.github.TitouanReal.ContactsDaemon"
)

// Remote method names, relative to Target.Interface.
const (
	MethodGetContacts   = "GetContacts"
	MethodAddContact    = "AddContact"
	MethodRemoveContact = "RemoveContact"
)

var (
	// ErrUnsupportedPlatform is returned by Dial when no message bus transport
	// exists for the current OS.
	ErrUnsupportedPlatform = errors.New("daemon: unsupported platform")
	// ErrClosed is returned by calls made on a closed client.
	ErrClosed = errors.New("daemon: client closed")
)

// Record is one raw contact as returned by GetContacts: the daemon id and the
// encoded vCard text. Its field order matches the (ts) wire signature.
type Record struct {
	ID   uint64
	Card string
}

// Client is the RPC contract with the contacts daemon.
//
// Every call is one request/response round trip. Implementations do not
// retry and do not multiplex concurrent calls on one connection.
type Client interface {
	GetContacts(ctx context.Context) ([]Record, error)
	AddContact(ctx context.Context, card string) error
	RemoveContact(ctx context.Context, id uint64) error
	Close() error
}

// Target identifies the daemon on the bus.
//
// An empty Address selects the session bus of the current user.
type Target struct {
	Address   string
	Service   string
	Path      string
	Interface string
}

// DefaultTarget returns the daemon's well-known name on the session bus.
func DefaultTarget() Target {
	return Target{
		Service:   DefaultService,
		Path:      DefaultPath,
		Interface: DefaultInterface,
	}
}

// withDefaults fills empty fields from DefaultTarget.
func (t Target) withDefaults() Target {
	def := DefaultTarget()
	t.Address = strings.TrimSpace(t.Address)
	if strings.TrimSpace(t.Service) == "" {
		t.Service = def.Service
	}
	if strings.TrimSpace(t.Path) == "" {
		t.Path = def.Path
	}
	if strings.TrimSpace(t.Interface) == "" {
		t.Interface = def.Interface
	}
	return t
}

func (t Target) method(name string) string {
	return t.Interface + "." + name
}

// Validate reports whether the target is addressable.
func (t Target) Validate() error {
	t = t.withDefaults()
	if !strings.Contains(t.Service, ".") {
		return fmt.Errorf("daemon: invalid service name %q", t.Service)
	}
	if !strings.HasPrefix(t.Path, "/") {
		return fmt.Errorf("daemon: invalid object path %q", t.Path)
	}
	if !strings.Contains(t.Interface, ".") {
		return fmt.Errorf("daemon: invalid interface name %q", t.Interface)
	}
	return nil
}

// ErrorCode classifies transport failures.
type ErrorCode string

const (
	// ErrorCodeUnavailable indicates the bus or the daemon could not be reached.
	ErrorCodeUnavailable ErrorCode = "unavailable"
	// ErrorCodeCall indicates a remote method returned an error or a malformed reply.
	ErrorCodeCall ErrorCode = "call"
)

// Error is a typed transport error. Err holds the underlying cause.
type Error struct {
	Code   ErrorCode
	Method string
	Err    error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "daemon: <nil>"
	}
	msg := fmt.Sprintf("daemon: %s", e.Code)
	if e.Method != "" {
		msg += " " + e.Method
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func unavailable(err error) error {
	return &Error{Code: ErrorCodeUnavailable, Err: err}
}

func callFailed(method string, err error) error {
	return &Error{Code: ErrorCodeCall, Method: method, Err: err}
}

// IsUnavailable reports whether err came from a failed connection attempt.
func IsUnavailable(err error) bool {
	var daemonErr *Error
	if errors.As(err, &daemonErr) {
		return daemonErr.Code == ErrorCodeUnavailable
	}
	return errors.Is(err, ErrUnsupportedPlatform)
}

// Dial opens a new bus connection and binds it to the daemon named by target.
// Empty target fields take their DefaultTarget values.
//
// A connection that cannot be established, or a service name that is neither
// owned nor activatable on the bus, yields an *Error with ErrorCodeUnavailable.
// Cancelling ctx after Dial returns tears the connection down.
func Dial(ctx context.Context, target Target) (Client, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return dial(ctx, target.withDefaults())
}
