// Package contacts turns the raw records of the contacts daemon into a typed
// contact list.
//
// The package exposes one read primitive and three write primitives on
// [Backend]:
//
//   - Fetch: list every contact the daemon holds, in daemon order.
//   - Remove: delete a contact by id.
//   - Add: encode a contact as a vCard 4.0 and submit it.
//   - Update: declared for completeness; the daemon has no update method.
//
// # Decoding
//
// Each record is a vCard text. Only the first card of a record is read and
// only VERSION, FN, EMAIL and TEL are consumed. A record is dropped, never
// reported as an error, when it:
//
//   - does not parse or holds no card,
//   - has no VERSION or a VERSION other than 4.0,
//   - has no FN, or an EMAIL/TEL without a value.
//
// One broken record never keeps the rest of the list from loading. Use
// [Backend.FetchReport] to see which ids were dropped and why.
//
// # Failures
//
// Connection and RPC failures abort the whole call with an *[Error] whose Code
// is ErrorCodeUnavailable and which matches [ErrUnavailable]. The cause is
// logged and kept for errors.Is, and no partial result is returned. Callers
// polling the daemon should keep their last good list on failure.
//
// # Connections
//
// A Backend keeps nothing between calls. Each call dials the daemon through
// [daemon.Dial] (or Options.Dial) and closes the connection before returning.
//
// # Composition Example
//
//	backend := contacts.New(contacts.Options{Timeout: 5 * time.Second})
//	list, err := backend.Fetch(ctx)
//	if errors.Is(err, contacts.ErrUnavailable) {
//		// keep showing the previous list
//	}
//	for _, entry := range list {
//		fmt.Println(entry.ID, entry.Contact.Name)
//	}
package contacts
