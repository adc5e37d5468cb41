package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ghetzel/cli"
	"github.com/rs/zerolog/log"

	"github.com/titouanreal/contacts/browser"
	"github.com/titouanreal/contacts/config"
	"github.com/titouanreal/contacts/contacts"
	"github.com/titouanreal/contacts/logging"
)

const version = `0.1.0`

func main() {
	app := cli.NewApp()
	app.Name = `contacts`
	app.Usage = `List and manage the contacts held by the contacts daemon.`
	app.Version = version

	var cfg config.Config
	var backend *contacts.Backend

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   `config, c`,
			Usage:  `Path to the TOML configuration file.`,
			EnvVar: config.EnvConfigPath,
		},
		cli.StringFlag{
			Name:   `log-level, L`,
			Usage:  `Level of log output verbosity`,
			EnvVar: logging.EnvLogLevel,
		},
		cli.StringFlag{
			Name:  `format, f`,
			Usage: `Output format: text or json.`,
		},
		cli.DurationFlag{
			Name:  `timeout, t`,
			Usage: `Bound every daemon call to this duration (0 disables).`,
		},
		cli.BoolFlag{
			Name:  `metrics`,
			Usage: `Write fetch metrics in Prometheus text format to stderr on exit.`,
		},
	}

	app.Before = func(c *cli.Context) error {
		loaded, err := config.Resolve(c.GlobalString(`config`))
		if err != nil {
			return err
		}
		if v := c.GlobalString(`log-level`); v != `` {
			loaded.LogLevel = v
		}
		if v := c.GlobalString(`format`); v != `` {
			loaded.Format = strings.ToLower(v)
		}
		if c.GlobalIsSet(`timeout`) {
			loaded.Timeout = c.GlobalDuration(`timeout`)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		setupLogging(cfg)
		backend = newBackend(cfg)
		return nil
	}

	app.After = func(c *cli.Context) error {
		if backend != nil && c.GlobalBool(`metrics`) {
			backend.Metrics().WritePrometheus(os.Stderr)
		}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:  `list`,
			Usage: `Print every contact.`,
			Action: func(c *cli.Context) {
				if err := runList(context.Background(), backend, os.Stdout, cfg.Format, c.Bool(`skipped`)); err != nil {
					log.Fatal().Err(err).Msg(`cannot list contacts`)
				}
			},
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  `skipped, s`,
					Usage: `Also report records that could not be decoded.`,
				},
			},
		}, {
			Name:      `show`,
			Usage:     `Print one contact.`,
			ArgsUsage: `ID`,
			Action: func(c *cli.Context) {
				id, err := parseID(c.Args().First())
				if err != nil {
					log.Fatal().Err(err).Msg(`invalid id`)
				}
				if err := runShow(context.Background(), backend, os.Stdout, cfg.Format, id); err != nil {
					log.Fatal().Err(err).Uint64(`id`, id).Msg(`cannot show contact`)
				}
			},
		}, {
			Name:  `watch`,
			Usage: `Poll the daemon and print the list whenever it changes.`,
			Flags: []cli.Flag{
				cli.DurationFlag{
					Name:  `interval, i`,
					Usage: `Polling interval (defaults to poll_interval from the config).`,
				},
			},
			Action: func(c *cli.Context) {
				interval := cfg.PollInterval
				if c.IsSet(`interval`) && c.Duration(`interval`) > 0 {
					interval = c.Duration(`interval`)
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				watch(ctx, backend, interval, func(list contacts.Collection) {
					if err := printCollection(os.Stdout, cfg.Format, list); err != nil {
						log.Error().Err(err).Msg(`cannot print contacts`)
					}
				})
			},
		}, {
			Name:      `mail`,
			Usage:     `Open a new message to every address of a contact.`,
			ArgsUsage: `ID`,
			Action: func(c *cli.Context) {
				openLink(backend, c.Args().First(), `mail`)
			},
		}, {
			Name:      `call`,
			Usage:     `Open the first phone number of a contact with the tel: handler.`,
			ArgsUsage: `ID`,
			Action: func(c *cli.Context) {
				openLink(backend, c.Args().First(), `call`)
			},
		}, {
			Name:      `rm`,
			Usage:     `Remove a contact.`,
			ArgsUsage: `ID`,
			Action: func(c *cli.Context) {
				id, err := parseID(c.Args().First())
				if err != nil {
					log.Fatal().Err(err).Msg(`invalid id`)
				}
				if err := backend.Remove(context.Background(), id); err != nil {
					log.Fatal().Err(err).Uint64(`id`, id).Msg(`cannot remove contact`)
				}
			},
		}, {
			Name:  `add`,
			Usage: `Create a contact.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  `name, n`,
					Usage: `Display name of the contact.`,
				},
				cli.StringSliceFlag{
					Name:  `email, e`,
					Usage: `Email address (repeatable).`,
				},
				cli.StringSliceFlag{
					Name:  `phone, p`,
					Usage: `Phone number (repeatable).`,
				},
			},
			Action: func(c *cli.Context) {
				contact := newContact(c.String(`name`), c.StringSlice(`email`), c.StringSlice(`phone`))
				if err := backend.Add(context.Background(), contact); err != nil {
					log.Fatal().Err(err).Str(`name`, contact.Name).Msg(`cannot add contact`)
				}
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openLink(backend *contacts.Backend, rawID string, kind string) {
	id, err := parseID(rawID)
	if err != nil {
		log.Fatal().Err(err).Msg(`invalid id`)
	}
	if err := runOpen(context.Background(), backend, id, kind, browser.OpenURL); err != nil {
		log.Fatal().Err(err).Uint64(`id`, id).Msg(`cannot open link`)
	}
}

func parseID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == `` {
		return 0, fmt.Errorf(`an ID argument is required`)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(`parse id %q: %w`, raw, err)
	}
	return id, nil
}

func newContact(name string, emails []string, phones []string) contacts.Contact {
	contact := contacts.Contact{
		Name:   strings.TrimSpace(name),
		Mails:  make([]contacts.Mail, 0, len(emails)),
		Phones: make([]contacts.Phone, 0, len(phones)),
	}
	for _, email := range emails {
		contact.Mails = append(contact.Mails, contacts.Mail{Address: strings.TrimSpace(email)})
	}
	for _, phone := range phones {
		contact.Phones = append(contact.Phones, contacts.Phone{Number: strings.TrimSpace(phone)})
	}
	return contact
}
