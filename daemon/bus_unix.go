//go:build unix

package daemon

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	busNameHasOwner         = "org.freedesktop.DBus.NameHasOwner"
	busListActivatableNames = "org.freedesktop.DBus.ListActivatableNames"
)

// busClient is the D-Bus backed Client. One call is in flight at a time.
type busClient struct {
	target Target

	mu   sync.Mutex
	conn *dbus.Conn
	obj  dbus.BusObject
}

var _ Client = (*busClient)(nil)

func dial(ctx context.Context, target Target) (Client, error) {
	conn, err := connect(ctx, target.Address)
	if err != nil {
		return nil, unavailable(fmt.Errorf("connect bus: %w", err))
	}
	if err := checkService(ctx, conn, target.Service); err != nil {
		_ = conn.Close()
		return nil, unavailable(err)
	}
	return &busClient{
		target: target,
		conn:   conn,
		obj:    conn.Object(target.Service, dbus.ObjectPath(target.Path)),
	}, nil
}

func connect(ctx context.Context, address string) (*dbus.Conn, error) {
	if address == "" {
		return dbus.ConnectSessionBus(dbus.WithContext(ctx))
	}
	return dbus.Connect(address, dbus.WithContext(ctx))
}

// checkService accepts a name that currently has an owner or that the bus can
// start on demand.
func checkService(ctx context.Context, conn *dbus.Conn, service string) error {
	var owned bool
	if err := conn.BusObject().CallWithContext(ctx, busNameHasOwner, 0, service).Store(&owned); err != nil {
		return fmt.Errorf("query owner of %s: %w", service, err)
	}
	if owned {
		return nil
	}

	var activatable []string
	if err := conn.BusObject().CallWithContext(ctx, busListActivatableNames, 0).Store(&activatable); err != nil {
		return fmt.Errorf("list activatable names: %w", err)
	}
	if slices.Contains(activatable, service) {
		return nil
	}
	return fmt.Errorf("service %s is not registered on the bus", service)
}

func (c *busClient) GetContacts(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.call(ctx, MethodGetContacts, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *busClient) AddContact(ctx context.Context, card string) error {
	return c.call(ctx, MethodAddContact, nil, card)
}

func (c *busClient) RemoveContact(ctx context.Context, id uint64) error {
	return c.call(ctx, MethodRemoveContact, nil, id)
}

func (c *busClient) call(ctx context.Context, method string, out any, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return callFailed(method, ErrClosed)
	}

	call := c.obj.CallWithContext(ctx, c.target.method(method), 0, args...)
	if call.Err != nil {
		return callFailed(method, call.Err)
	}
	if out == nil {
		return nil
	}
	if err := call.Store(out); err != nil {
		return callFailed(method, fmt.Errorf("decode reply: %w", err))
	}
	return nil
}

func (c *busClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.obj = nil
	return err
}
