// Package daemon is the RPC client for the contacts daemon.
//
// The daemon owns the well-known name com.github.TitouanReal.ContactsDaemon on
// the session bus and exports three methods on
// /com/github/TitouanReal/ContactsDaemon:
//
//	GetContacts() -> a(ts)     // (id, vCard text) pairs
//	AddContact(s)              // vCard text
//	RemoveContact(t)           // id
//
// [Client] is the whole contract. [Dial] returns the D-Bus backed client and
// [Memory] is an in-process fake with the same shape, used to test callers
// without a live daemon.
//
// The package carries no business logic: it does not decode vCards and it
// never retries. A failed call is reported once as an *[Error].
//
// # Platform
//
// Dial is implemented on Unix systems using github.com/godbus/dbus/v5. Other
// builds return [ErrUnsupportedPlatform].
package daemon
