package daemon

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MethodDial names the connection step for [Memory.Fail].
const MethodDial = "Dial"

// Memory is an in-process stand-in for the contacts daemon. Its Dial method
// has the same shape as [Dial] and hands out [Client] connections backed by a
// shared, insertion-ordered record list.
type Memory struct {
	mu      sync.Mutex
	nextID  uint64
	records []Record
	fail    map[string]error
	calls   map[string]int
	open    int
}

// NewMemory returns a fake daemon holding records in the given order. New
// records get ids above the largest seeded id.
func NewMemory(records ...Record) *Memory {
	m := &Memory{
		records: slices.Clone(records),
		fail:    map[string]error{},
		calls:   map[string]int{},
	}
	for _, r := range records {
		m.nextID = max(m.nextID, r.ID)
	}
	return m
}

// Fail makes method (one of the Method* names, MethodDial included) return
// err. A nil err clears the failure.
func (m *Memory) Fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, method)
		return
	}
	m.fail[method] = err
}

// Calls returns how many times method was invoked.
func (m *Memory) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Open returns the number of connections dialed and not yet closed.
func (m *Memory) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Records returns a copy of the stored records.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

// Dial opens a new connection to the fake daemon.
func (m *Memory) Dial(ctx context.Context, target Target) (Client, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[MethodDial]++
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	if err := m.fail[MethodDial]; err != nil {
		return nil, unavailable(err)
	}
	m.open++
	return &memoryConn{daemon: m}, nil
}

// memoryConn is one connection to a Memory daemon.
type memoryConn struct {
	daemon *Memory
	closed bool
}

var _ Client = (*memoryConn)(nil)

// enter must be called with daemon.mu held.
func (c *memoryConn) enter(ctx context.Context, method string) error {
	c.daemon.calls[method]++
	if c.closed {
		return callFailed(method, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return callFailed(method, err)
	}
	if err := c.daemon.fail[method]; err != nil {
		return callFailed(method, err)
	}
	return nil
}

func (c *memoryConn) GetContacts(ctx context.Context) ([]Record, error) {
	m := c.daemon
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := c.enter(ctx, MethodGetContacts); err != nil {
		return nil, err
	}
	return slices.Clone(m.records), nil
}

func (c *memoryConn) AddContact(ctx context.Context, card string) error {
	m := c.daemon
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := c.enter(ctx, MethodAddContact); err != nil {
		return err
	}
	m.nextID++
	m.records = append(m.records, Record{ID: m.nextID, Card: card})
	return nil
}

func (c *memoryConn) RemoveContact(ctx context.Context, id uint64) error {
	m := c.daemon
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := c.enter(ctx, MethodRemoveContact); err != nil {
		return err
	}
	i := slices.IndexFunc(m.records, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return callFailed(MethodRemoveContact, fmt.Errorf("no contact with id %d", id))
	}
	m.records = slices.Delete(m.records, i, i+1)
	return nil
}

func (c *memoryConn) Close() error {
	m := c.daemon
	m.mu.Lock()
	defer m.mu.Unlock()
	if !c.closed {
		c.closed = true
		m.open--
	}
	return nil
}
