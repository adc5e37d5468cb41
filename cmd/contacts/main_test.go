package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"

	"github.com/titouanreal/contacts/config"
	"github.com/titouanreal/contacts/contacts"
	"github.com/titouanreal/contacts/daemon"
	"github.com/titouanreal/contacts/logging"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	os.Exit(m.Run())
}

func vcard(lines ...string) string {
	return "BEGIN:VCARD\r\nVERSION:4.0\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VCARD\r\n"
}

func testBackend(fake *daemon.Memory) *contacts.Backend {
	logger := zerolog.Nop()
	return contacts.New(contacts.Options{Dial: fake.Dial, Logger: &logger})
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	be.Err(t, err, nil)
	be.Equal(t, id, uint64(42))

	_, err = parseID("")
	be.Err(t, err, "ID argument is required")
	_, err = parseID("-1")
	be.Err(t, err, "parse id")
}

func TestNewContact(t *testing.T) {
	contact := newContact(" Dave ", []string{"d@x.com "}, nil)
	be.Equal(t, contact.Name, "Dave")
	be.Equal(t, contact.Mails, []contacts.Mail{{Address: "d@x.com"}})
	be.Equal(t, len(contact.Phones), 0)
}

func TestRunListText(t *testing.T) {
	fake := daemon.NewMemory(
		daemon.Record{ID: 1, Card: vcard("FN:Alice", "EMAIL:a@x.com", "EMAIL:alice@y.org")},
		daemon.Record{ID: 2, Card: "garbage"},
		daemon.Record{ID: 3, Card: vcard("FN:Carol", "TEL:555")},
	)

	var out bytes.Buffer
	be.Err(t, runList(context.Background(), testBackend(fake), &out, config.FormatText, true), nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	be.Equal(t, len(lines), 4)
	be.True(t, strings.HasPrefix(lines[0], "ID"))
	be.True(t, strings.Contains(lines[1], "Alice"))
	be.True(t, strings.Contains(lines[1], "a@x.com, alice@y.org"))
	be.True(t, strings.Contains(lines[2], "Carol"))
	be.Equal(t, lines[3], "skipped 2: parse")
}

func TestRunListJSON(t *testing.T) {
	fake := daemon.NewMemory(daemon.Record{ID: 7, Card: vcard("FN:Alice", "TEL:1")})

	var out bytes.Buffer
	be.Err(t, runList(context.Background(), testBackend(fake), &out, config.FormatJSON, false), nil)

	var list contacts.Collection
	be.Err(t, json.Unmarshal(out.Bytes(), &list), nil)
	be.Equal(t, len(list), 1)
	be.Equal(t, list[0].ID, uint64(7))
	be.Equal(t, list[0].Contact.Phones, []contacts.Phone{{Number: "1"}})
}

func TestRunListUnavailable(t *testing.T) {
	fake := daemon.NewMemory()
	fake.Fail(daemon.MethodDial, errors.New("no bus"))

	var out bytes.Buffer
	err := runList(context.Background(), testBackend(fake), &out, config.FormatText, false)
	be.True(t, errors.Is(err, contacts.ErrUnavailable))
	be.Equal(t, out.Len(), 0)
}

func TestRunShow(t *testing.T) {
	fake := daemon.NewMemory(daemon.Record{ID: 5, Card: vcard("FN:Eve", "EMAIL:e@x.com", "TEL:99")})
	backend := testBackend(fake)

	var out bytes.Buffer
	be.Err(t, runShow(context.Background(), backend, &out, config.FormatText, 5), nil)
	text := out.String()
	be.True(t, strings.Contains(text, "Eve"))
	be.True(t, strings.Contains(text, "e@x.com"))
	be.True(t, strings.Contains(text, "99"))

	out.Reset()
	be.Err(t, runShow(context.Background(), backend, &out, config.FormatJSON, 5), nil)
	var entry contacts.Entry
	be.Err(t, json.Unmarshal(out.Bytes(), &entry), nil)
	be.Equal(t, entry.Contact.Name, "Eve")

	err := runShow(context.Background(), backend, &out, config.FormatText, 6)
	be.Err(t, err, "no contact with id 6")
}

// scriptedFetcher replays results in order and then cancels the watch.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []result
	cancel  context.CancelFunc
}

type result struct {
	list contacts.Collection
	err  error
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (contacts.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		f.cancel()
		return nil, ctx.Err()
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.list, next.err
}

func TestWatchKeepsLastGoodList(t *testing.T) {
	alice := contacts.Entry{ID: 1, Contact: contacts.Contact{Name: "Alice"}}
	bob := contacts.Entry{ID: 2, Contact: contacts.Contact{Name: "Bob"}}
	unavailable := &contacts.Error{Code: contacts.ErrorCodeUnavailable}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &scriptedFetcher{
		cancel: cancel,
		results: []result{
			{list: contacts.Collection{alice}},
			{err: unavailable},
			{list: contacts.Collection{alice}},
			{list: contacts.Collection{alice, bob}},
			{err: unavailable},
		},
	}

	var emitted []contacts.Collection
	watch(ctx, fetcher, time.Millisecond, func(list contacts.Collection) {
		emitted = append(emitted, list)
	})

	be.Equal(t, len(emitted), 2)
	be.True(t, emitted[0].Equal(contacts.Collection{alice}))
	be.True(t, emitted[1].Equal(contacts.Collection{alice, bob}))
}

func TestWatchWithMemoryDaemon(t *testing.T) {
	fake := daemon.NewMemory(daemon.Record{ID: 1, Card: vcard("FN:Alice")})
	backend := testBackend(fake)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var emitted []contacts.Collection
	watch(ctx, backend, time.Millisecond, func(list contacts.Collection) {
		emitted = append(emitted, list)
		switch len(emitted) {
		case 1:
			be.Err(t, backend.Add(ctx, contacts.Contact{Name: "Bob"}), nil)
		case 2:
			cancel()
		}
	})

	be.Equal(t, len(emitted), 2)
	be.Equal(t, len(emitted[0]), 1)
	be.Equal(t, len(emitted[1]), 2)
	be.Equal(t, emitted[1][1].Contact.Name, "Bob")
}

func TestRunOpen(t *testing.T) {
	fake := daemon.NewMemory(
		daemon.Record{ID: 1, Card: vcard("FN:Alice", "EMAIL:a@x.com", "EMAIL:alice@y.org", "TEL:+33 6 12 34 56 78")},
		daemon.Record{ID: 2, Card: vcard("FN:Bob")},
	)
	backend := testBackend(fake)

	var opened []string
	open := func(link string) error {
		opened = append(opened, link)
		return nil
	}

	be.Err(t, runOpen(context.Background(), backend, 1, `mail`, open), nil)
	be.Err(t, runOpen(context.Background(), backend, 1, `call`, open), nil)
	be.Equal(t, opened, []string{"mailto:a@x.com,alice@y.org", "tel:+33612345678"})

	be.Err(t, runOpen(context.Background(), backend, 2, `mail`, open), "no email address")
	be.Err(t, runOpen(context.Background(), backend, 2, `call`, open), "no phone number")
	be.Err(t, runOpen(context.Background(), backend, 3, `mail`, open), "no contact with id 3")
	be.Err(t, runOpen(context.Background(), backend, 1, `fax`, open), "unknown link kind")
	be.Equal(t, len(opened), 2)
}
