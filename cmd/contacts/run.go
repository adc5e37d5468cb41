package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tabwriter "github.com/NonerKao/color-aware-tabwriter"
	"github.com/rs/zerolog/log"

	"github.com/titouanreal/contacts/browser"
	"github.com/titouanreal/contacts/config"
	"github.com/titouanreal/contacts/contacts"
	"github.com/titouanreal/contacts/logging"
)

type fetcher interface {
	Fetch(ctx context.Context) (contacts.Collection, error)
}

func setupLogging(cfg config.Config) {
	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	logging.ApplyEnv(&logCfg, os.Getenv)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logCfg.Level = lvl
	}
	logging.Install(logCfg)
}

func newBackend(cfg config.Config) *contacts.Backend {
	logger := log.Logger
	return contacts.New(contacts.Options{
		Target:  cfg.Target,
		Logger:  &logger,
		Timeout: cfg.Timeout,
	})
}

func runList(ctx context.Context, backend *contacts.Backend, w io.Writer, format string, withSkipped bool) error {
	report, err := backend.FetchReport(ctx)
	if err != nil {
		return err
	}
	if !withSkipped {
		return printCollection(w, format, report.Contacts)
	}
	if format == config.FormatJSON {
		return writeJSON(w, report)
	}
	if err := printCollection(w, format, report.Contacts); err != nil {
		return err
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "skipped %d: %s\n", s.ID, s.Reason)
	}
	return nil
}

func runShow(ctx context.Context, backend fetcher, w io.Writer, format string, id uint64) error {
	list, err := backend.Fetch(ctx)
	if err != nil {
		return err
	}
	entry, ok := list.Find(id)
	if !ok {
		return fmt.Errorf("no contact with id %d", id)
	}
	if format == config.FormatJSON {
		return writeJSON(w, entry)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintf(tw, "id:\t%d\n", entry.ID)
	fmt.Fprintf(tw, "name:\t%s\n", entry.Contact.Name)
	for _, mail := range entry.Contact.Mails {
		fmt.Fprintf(tw, "email:\t%s\n", mail.Address)
	}
	for _, phone := range entry.Contact.Phones {
		fmt.Fprintf(tw, "phone:\t%s\n", phone.Number)
	}
	return tw.Flush()
}

func printCollection(w io.Writer, format string, list contacts.Collection) error {
	if format == config.FormatJSON {
		return writeJSON(w, list)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, entry := range list {
		mails := make([]string, 0, len(entry.Contact.Mails))
		for _, mail := range entry.Contact.Mails {
			mails = append(mails, mail.Address)
		}
		phones := make([]string, 0, len(entry.Contact.Phones))
		for _, phone := range entry.Contact.Phones {
			phones = append(phones, phone.Number)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			entry.ID,
			entry.Contact.Name,
			strings.Join(mails, ", "),
			strings.Join(phones, ", "),
		)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent(``, `  `)
	return enc.Encode(data)
}

// watch polls backend every interval until ctx is done and calls emit with
// each collection that differs from the previous one. A failed poll keeps the
// last good collection.
func watch(ctx context.Context, backend fetcher, interval time.Duration, emit func(contacts.Collection)) {
	var last contacts.Collection
	loaded := false

	poll := func() {
		list, err := backend.Fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("poll failed, keeping previous contact list")
			}
			return
		}
		if loaded && list.Equal(last) {
			return
		}
		last, loaded = list, true
		emit(list)
	}

	poll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// contactURL builds the link opened by the mail and call commands.
func contactURL(entry contacts.Entry, kind string) (string, error) {
	switch kind {
	case `mail`:
		addresses := make([]string, 0, len(entry.Contact.Mails))
		for _, mail := range entry.Contact.Mails {
			addresses = append(addresses, mail.Address)
		}
		if len(addresses) == 0 {
			return ``, fmt.Errorf("contact %d has no email address", entry.ID)
		}
		return browser.MailtoURL(addresses...)
	case `call`:
		if len(entry.Contact.Phones) == 0 {
			return ``, fmt.Errorf("contact %d has no phone number", entry.ID)
		}
		return browser.TelURL(entry.Contact.Phones[0].Number)
	default:
		return ``, fmt.Errorf("unknown link kind %q", kind)
	}
}

func runOpen(ctx context.Context, backend fetcher, id uint64, kind string, open func(string) error) error {
	list, err := backend.Fetch(ctx)
	if err != nil {
		return err
	}
	entry, ok := list.Find(id)
	if !ok {
		return fmt.Errorf("no contact with id %d", id)
	}
	link, err := contactURL(entry, kind)
	if err != nil {
		return err
	}
	log.Debug().Uint64(`id`, id).Str(`url`, link).Msg(`opening link`)
	return open(link)
}
