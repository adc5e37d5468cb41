package contacts

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnavailable is matched by every fetch-level failure: the bus or the
// daemon could not be reached, or the remote call failed.
var ErrUnavailable = errors.New("contacts: daemon unavailable")

// ErrorCode classifies Backend errors.
type ErrorCode string

const (
	// ErrorCodeUnavailable indicates a connection or RPC failure.
	ErrorCodeUnavailable ErrorCode = "unavailable"
	// ErrorCodeValidation indicates a contact that cannot be encoded.
	ErrorCodeValidation ErrorCode = "validation"
	// ErrorCodeUnsupported indicates an operation the daemon does not offer.
	ErrorCodeUnsupported ErrorCode = "unsupported"
)

// Error is a typed package error for backend operations.
//
// The cause is kept for logging and errors.Is checks; callers are expected to
// branch on Code only.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	msg := fmt.Sprintf("contacts: %s", e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
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

// Is matches ErrUnavailable for unavailable errors.
func (e *Error) Is(target error) bool {
	return e != nil && target == ErrUnavailable && e.Code == ErrorCodeUnavailable
}

// Mail is one email address of a contact.
type Mail struct {
	Address string `json:"address"`
}

// Phone is one phone number of a contact.
type Phone struct {
	Number string `json:"number"`
}

// Contact is one address-book entry.
//
// Mails and Phones keep the order in which they appear in the source card and
// may hold duplicates.
type Contact struct {
	Name   string  `json:"name"`
	Mails  []Mail  `json:"mails"`
	Phones []Phone `json:"phones"`
}

// Clone returns a deep copy of c.
func (c Contact) Clone() Contact {
	return Contact{
		Name:   c.Name,
		Mails:  slices.Clone(c.Mails),
		Phones: slices.Clone(c.Phones),
	}
}

// Equal reports whether c and other hold the same values in the same order.
func (c Contact) Equal(other Contact) bool {
	return c.Name == other.Name &&
		slices.Equal(c.Mails, other.Mails) &&
		slices.Equal(c.Phones, other.Phones)
}

// Entry pairs a contact with its daemon id.
type Entry struct {
	ID      uint64  `json:"id"`
	Contact Contact `json:"contact"`
}

// Collection is the ordered result of a fetch.
type Collection []Entry

// Find returns the entry with the given id.
func (c Collection) Find(id uint64) (Entry, bool) {
	for _, entry := range c {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Equal reports whether both collections hold equal entries in the same order.
func (c Collection) Equal(other Collection) bool {
	return slices.EqualFunc(c, other, func(a, b Entry) bool {
		return a.ID == b.ID && a.Contact.Equal(b.Contact)
	})
}
