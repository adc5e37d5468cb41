// Package contacts is a lightweight index for the subpackages of the contacts
// viewer backend.
//
// This root package is documentation-only. Import specific subpackages to use
// concrete helpers.
//
// Available subpackages:
//   - github.com/titouanreal/contacts/contacts
//     Contact model, vCard decoding and the Backend adapter (Fetch, Remove, Add).
//   - github.com/titouanreal/contacts/daemon
//     RPC client for the contacts daemon on the session bus, plus an in-memory fake.
//   - github.com/titouanreal/contacts/config
//     TOML configuration for the contacts command.
//   - github.com/titouanreal/contacts/logging
//     zerolog setup shared by the command and tests.
//   - github.com/titouanreal/contacts/browser
//     Opening mailto:/tel: links with the desktop's default handler.
//
// The contacts command under cmd/contacts lists, watches, adds and removes
// contacts from a terminal.
package contacts
