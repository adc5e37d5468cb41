package contacts_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/titouanreal/contacts/contacts"
	"github.com/titouanreal/contacts/daemon"
)

func composeRefreshKeepingLastGood(ctx context.Context, backend *contacts.Backend, last contacts.Collection) contacts.Collection {
	list, err := backend.Fetch(ctx)
	if errors.Is(err, contacts.ErrUnavailable) {
		return last
	}
	if err != nil {
		return last
	}
	return list
}

func composeAddThenLookup(ctx context.Context) error {
	fake := daemon.NewMemory()
	backend := contacts.New(contacts.Options{Dial: fake.Dial, Timeout: 2 * time.Second})

	err := backend.Add(ctx, contacts.Contact{
		Name:   "Priya Raman",
		Mails:  []contacts.Mail{{Address: "priya@acme.example"}},
		Phones: []contacts.Phone{{Number: "+1 555 0100"}},
	})
	if err != nil {
		return err
	}

	report, err := backend.FetchReport(ctx)
	if err != nil {
		return err
	}
	for _, s := range report.Skipped {
		fmt.Printf("dropped %d (%s)\n", s.ID, s.Reason)
	}
	for _, entry := range report.Contacts {
		if entry.Contact.Name == "Priya Raman" {
			return backend.Remove(ctx, entry.ID)
		}
	}
	return fmt.Errorf("contact not listed")
}

func composeDecodeOne(text string) (contacts.Contact, bool) {
	contact, err := contacts.Decode(text)
	var skipErr *contacts.SkipError
	if errors.As(err, &skipErr) {
		return contacts.Contact{}, false
	}
	return contact, err == nil
}
