package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/titouanreal/contacts/daemon"
)

// DialFunc opens a fresh connection to the contacts daemon.
type DialFunc func(ctx context.Context, target daemon.Target) (daemon.Client, error)

// Options configures a Backend. Zero values select the live daemon on the
// session bus, the global zerolog logger and no timeout.
type Options struct {
	Target  daemon.Target
	Dial    DialFunc
	Logger  *zerolog.Logger
	Metrics *Metrics
	Timeout time.Duration
}

// Backend adapts the contacts daemon to the Contact model.
//
// A Backend holds no state between calls. Every operation opens its own
// connection and closes it before returning, so calls may run concurrently.
type Backend struct {
	target  daemon.Target
	dial    DialFunc
	logger  zerolog.Logger
	metrics *Metrics
	timeout time.Duration
}

// Skipped identifies a raw record left out of a fetch.
type Skipped struct {
	ID     uint64     `json:"id"`
	Reason SkipReason `json:"reason"`
}

// Report is a Collection plus the records that were dropped while building it.
type Report struct {
	Contacts Collection `json:"contacts"`
	Skipped  []Skipped  `json:"skipped,omitempty"`
}

// New returns a Backend for opts.
func New(opts Options) *Backend {
	b := &Backend{
		target:  opts.Target,
		dial:    opts.Dial,
		logger:  log.Logger,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
	}
	if b.dial == nil {
		b.dial = daemon.Dial
	}
	if opts.Logger != nil {
		b.logger = *opts.Logger
	}
	if b.metrics == nil {
		b.metrics = NewMetrics()
	}
	b.logger = b.logger.With().Str("component", "contacts").Logger()
	return b
}

// Metrics returns the counters updated by b.
func (b *Backend) Metrics() *Metrics {
	return b.metrics
}

// Fetch returns every decodable contact held by the daemon, in the order the
// daemon listed them.
//
// Records that fail to parse, carry a VERSION other than 4.0, lack FN or hold
// an empty EMAIL/TEL are dropped and logged at debug level. Connection and RPC
// failures abort the fetch with an *Error matching ErrUnavailable; no partial
// collection is returned.
func (b *Backend) Fetch(ctx context.Context) (Collection, error) {
	report, err := b.FetchReport(ctx)
	if err != nil {
		return nil, err
	}
	return report.Contacts, nil
}

// FetchReport is Fetch with the list of skipped records.
func (b *Backend) FetchReport(ctx context.Context) (Report, error) {
	start := time.Now()
	defer b.metrics.fetchDuration.UpdateDuration(start)
	b.metrics.fetches.Inc()

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	var records []daemon.Record
	err := b.withClient(ctx, func(client daemon.Client) error {
		var err error
		records, err = client.GetContacts(ctx)
		if err != nil {
			b.logger.Error().Err(err).Msg("get contacts failed")
			return unavailableErr("get contacts", err)
		}
		return nil
	})
	if err != nil {
		b.metrics.fetchErrors.Inc()
		return Report{}, err
	}

	report := decodeRecords(records, b.logger)
	b.metrics.records.Add(len(records))
	for _, s := range report.Skipped {
		b.metrics.skipped(s.Reason).Inc()
	}
	b.logger.Debug().
		Int("records", len(records)).
		Int("contacts", len(report.Contacts)).
		Int("skipped", len(report.Skipped)).
		Dur("took", time.Since(start)).
		Msg("fetched contacts")
	return report, nil
}

// decodeRecords folds each record into either an Entry or a Skipped, keeping
// the input order.
func decodeRecords(records []daemon.Record, logger zerolog.Logger) Report {
	report := Report{Contacts: make(Collection, 0, len(records))}
	for _, record := range records {
		contact, err := Decode(record.Card)
		if err != nil {
			reason := SkipParse
			var skipErr *SkipError
			if errors.As(err, &skipErr) {
				reason = skipErr.Reason
			}
			logger.Debug().Err(err).Uint64("id", record.ID).Str("reason", string(reason)).Msg("skipping record")
			report.Skipped = append(report.Skipped, Skipped{ID: record.ID, Reason: reason})
			continue
		}
		report.Contacts = append(report.Contacts, Entry{ID: record.ID, Contact: contact})
	}
	return report
}

// Remove deletes the contact with the given id. Any transport failure is
// returned as an *Error matching ErrUnavailable.
func (b *Backend) Remove(ctx context.Context, id uint64) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	return b.withClient(ctx, func(client daemon.Client) error {
		if err := client.RemoveContact(ctx, id); err != nil {
			b.logger.Error().Err(err).Uint64("id", id).Msg("remove contact failed")
			return unavailableErr("remove contact", err)
		}
		b.logger.Info().Uint64("id", id).Msg("removed contact")
		return nil
	})
}

// Add encodes c as a vCard and submits it to the daemon. The daemon does not
// report the id it assigns; the next Fetch lists the new entry.
func (b *Backend) Add(ctx context.Context, c Contact) error {
	card, err := Encode(c)
	if err != nil {
		return err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	return b.withClient(ctx, func(client daemon.Client) error {
		if err := client.AddContact(ctx, card); err != nil {
			b.logger.Error().Err(err).Str("name", c.Name).Msg("add contact failed")
			return unavailableErr("add contact", err)
		}
		b.logger.Info().Str("name", c.Name).Msg("added contact")
		return nil
	})
}

// Update is not offered by the daemon. Replacing the record through Remove and
// Add would change its id, so Update always fails with ErrorCodeUnsupported.
func (b *Backend) Update(ctx context.Context, id uint64, c Contact) error {
	_, _, _ = ctx, id, c
	return &Error{Code: ErrorCodeUnsupported, Message: "daemon has no update method"}
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return context.WithCancel(ctx)
}

// withClient dials a connection for the duration of fn.
func (b *Backend) withClient(ctx context.Context, fn func(daemon.Client) error) error {
	client, err := b.dial(ctx, b.target)
	if err != nil {
		b.logger.Error().Err(err).Str("service", b.serviceName()).Msg("contacts daemon unreachable, is it installed?")
		return unavailableErr("connect", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			b.logger.Warn().Err(err).Msg("close daemon connection")
		}
	}()
	return fn(client)
}

func (b *Backend) serviceName() string {
	if b.target.Service != "" {
		return b.target.Service
	}
	return daemon.DefaultService
}

func unavailableErr(op string, err error) error {
	return &Error{Code: ErrorCodeUnavailable, Message: op, Err: err}
}
