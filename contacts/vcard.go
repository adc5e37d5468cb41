package contacts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
)

// SupportedVersion is the only vCard VERSION value accepted by Decode.
const SupportedVersion = "4.0"

// SkipReason says why a raw record was left out of a fetch.
type SkipReason string

const (
	// SkipParse means the text held no card or could not be parsed.
	SkipParse SkipReason = "parse"
	// SkipVersion means VERSION was missing or not SupportedVersion.
	SkipVersion SkipReason = "version"
	// SkipName means FN was missing or empty.
	SkipName SkipReason = "name"
	// SkipField means an EMAIL or TEL property had no value.
	SkipField SkipReason = "field"
)

// SkipError is returned by Decode for a card that cannot become a Contact.
type SkipError struct {
	Reason SkipReason
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("contacts: skip record: %s", e.Reason)
	}
	return fmt.Sprintf("contacts: skip record: %s: %v", e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

func skip(reason SkipReason, format string, args ...any) error {
	return &SkipError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

// Decode reads the first vCard in text and maps it to a Contact.
//
// Only VERSION, FN, EMAIL and TEL are consumed; other properties and any cards
// after the first are ignored. Every rejection is a *SkipError.
func Decode(text string) (Contact, error) {
	card, err := vcard.NewDecoder(strings.NewReader(text)).Decode()
	if errors.Is(err, io.EOF) {
		return Contact{}, &SkipError{Reason: SkipParse, Err: errors.New("no card")}
	}
	if err != nil {
		return Contact{}, &SkipError{Reason: SkipParse, Err: err}
	}
	if len(card) == 0 {
		return Contact{}, &SkipError{Reason: SkipParse, Err: errors.New("empty card")}
	}

	version := card.Get(vcard.FieldVersion)
	if version == nil {
		return Contact{}, skip(SkipVersion, "VERSION missing")
	}
	if strings.TrimSpace(version.Value) != SupportedVersion {
		return Contact{}, skip(SkipVersion, "VERSION %q", version.Value)
	}

	name := card.Get(vcard.FieldFormattedName)
	if name == nil || strings.TrimSpace(name.Value) == "" {
		return Contact{}, skip(SkipName, "FN missing")
	}

	mails := make([]Mail, 0, len(card[vcard.FieldEmail]))
	for _, field := range card[vcard.FieldEmail] {
		if field == nil || field.Value == "" {
			return Contact{}, skip(SkipField, "EMAIL without value")
		}
		mails = append(mails, Mail{Address: field.Value})
	}

	phones := make([]Phone, 0, len(card[vcard.FieldTelephone]))
	for _, field := range card[vcard.FieldTelephone] {
		if field == nil || field.Value == "" {
			return Contact{}, skip(SkipField, "TEL without value")
		}
		phones = append(phones, Phone{Number: field.Value})
	}

	return Contact{Name: name.Value, Mails: mails, Phones: phones}, nil
}

// Encode renders c as a version 4.0 vCard that Decode maps back to c.
func Encode(c Contact) (string, error) {
	if err := Validate(c); err != nil {
		return "", err
	}

	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, SupportedVersion)
	card.SetValue(vcard.FieldFormattedName, c.Name)
	for _, mail := range c.Mails {
		card.AddValue(vcard.FieldEmail, mail.Address)
	}
	for _, phone := range c.Phones {
		card.AddValue(vcard.FieldTelephone, phone.Number)
	}

	var b strings.Builder
	if err := vcard.NewEncoder(&b).Encode(card); err != nil {
		return "", &Error{Code: ErrorCodeValidation, Message: "encode vcard", Err: err}
	}
	return b.String(), nil
}

// Validate checks that c would survive an Encode/Decode round trip.
func Validate(c Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return &Error{Code: ErrorCodeValidation, Message: "name is required"}
	}
	if strings.ContainsAny(c.Name, "\r\n") {
		return &Error{Code: ErrorCodeValidation, Message: "name must be a single line"}
	}
	for i, mail := range c.Mails {
		if strings.TrimSpace(mail.Address) == "" || strings.ContainsAny(mail.Address, "\r\n") {
			return &Error{Code: ErrorCodeValidation, Message: fmt.Sprintf("mail[%d] is invalid", i)}
		}
	}
	for i, phone := range c.Phones {
		if strings.TrimSpace(phone.Number) == "" || strings.ContainsAny(phone.Number, "\r\n") {
			return &Error{Code: ErrorCodeValidation, Message: fmt.Sprintf("phone[%d] is invalid", i)}
		}
	}
	return nil
}
