// Package payload turns records into the text that gets encoded in a QR code.
//
// Every template is reproduced byte for byte: vCard 3.0, iCalendar VEVENT, the
// WIFI: scheme, SMSTO:, MATMSG: and TEL:. A record missing a required field
// yields an error wrapping ErrIncomplete and no payload at all.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrylevesque/qrforge/internal/models"
)

// ErrIncomplete means a required field is blank. It is not a failure; the UI
// shows IncompletePrompt instead of an image.
var ErrIncomplete = errors.New("incomplete input")

// IncompletePrompt is the message shown while no payload can be built.
const IncompletePrompt = "Please enter the required information to generate a QR code."

// eventTimeLayout is the floating DATE-TIME form, no zone suffix.
const eventTimeLayout = "20060102T150405"

// IncompleteError names the blank field.
type IncompleteError struct {
	Kind  models.Kind
	Field string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", ErrIncomplete, e.Kind, e.Field)
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Formatter builds payloads. The zero value inserts field values verbatim,
// which is what most scanner apps expect.
type Formatter struct {
	// EscapeValues backslash-escapes separator characters inside values.
	EscapeValues bool
}

var std Formatter

// Format builds the payload for r with the default Formatter.
func Format(r models.Record) (string, error) { return std.Format(r) }

func FormatText(r models.TextRecord) (string, error)           { return std.Text(r) }
func FormatURL(r models.URLRecord) (string, error)             { return std.URL(r) }
func FormatContact(r models.ContactRecord) (string, error)     { return std.Contact(r) }
func FormatEvent(r models.EventRecord) (string, error)         { return std.Event(r) }
func FormatWifi(r models.WifiRecord) (string, error)           { return std.Wifi(r) }
func FormatSms(r models.SmsRecord) (string, error)             { return std.Sms(r) }
func FormatEmail(r models.EmailRecord) (string, error)         { return std.Email(r) }
func FormatPhoneCall(r models.PhoneCallRecord) (string, error) { return std.PhoneCall(r) }

// Format dispatches on the concrete record type.
func (f Formatter) Format(r models.Record) (string, error) {
	switch rec := r.(type) {
	case models.TextRecord:
		return f.Text(rec)
	case models.URLRecord:
		return f.URL(rec)
	case models.ContactRecord:
		return f.Contact(rec)
	case models.EventRecord:
		return f.Event(rec)
	case models.WifiRecord:
		return f.Wifi(rec)
	case models.SmsRecord:
		return f.Sms(rec)
	case models.EmailRecord:
		return f.Email(rec)
	case models.PhoneCallRecord:
		return f.PhoneCall(rec)
	case nil:
		return "", fmt.Errorf("%w: nil record", models.ErrUnknownKind)
	}
	return "", fmt.Errorf("%w: %T", models.ErrUnknownKind, r)
}

func (f Formatter) Text(r models.TextRecord) (string, error) {
	if blank(r.Text) {
		return "", incomplete(models.KindText, "text")
	}
	return r.Text, nil
}

func (f Formatter) URL(r models.URLRecord) (string, error) {
	if blank(r.URL) {
		return "", incomplete(models.KindURL, "url")
	}
	return r.URL, nil
}

func (f Formatter) Contact(r models.ContactRecord) (string, error) {
	if blank(r.FirstName) {
		return "", incomplete(models.KindVCard, "first name")
	}
	if blank(r.LastName) {
		return "", incomplete(models.KindVCard, "last name")
	}
	v := f.textValue
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	fmt.Fprintf(&b, "N:%s;%s;;;\n", v(r.LastName), v(r.FirstName))
	fmt.Fprintf(&b, "FN:%s %s\n", v(r.FirstName), v(r.LastName))
	fmt.Fprintf(&b, "ADR;TYPE=HOME:;;%s;;;;\n", v(r.Address))
	fmt.Fprintf(&b, "EMAIL;TYPE=INTERNET:%s\n", v(r.Email))
	fmt.Fprintf(&b, "TEL;TYPE=CELL:%s\n", v(r.Phone))
	b.WriteString("END:VCARD\n")
	return b.String(), nil
}

func (f Formatter) Event(r models.EventRecord) (string, error) {
	if blank(r.Title) {
		return "", incomplete(models.KindEvent, "title")
	}
	if r.Start.IsZero() {
		return "", incomplete(models.KindEvent, "start")
	}
	if r.End.IsZero() {
		return "", incomplete(models.KindEvent, "end")
	}
	v := f.textValue
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\n")
	fmt.Fprintf(&b, "SUMMARY:%s\n", v(r.Title))
	fmt.Fprintf(&b, "DESCRIPTION:%s\n", v(r.Description))
	fmt.Fprintf(&b, "DTSTART:%s\n", r.Start.Format(eventTimeLayout))
	fmt.Fprintf(&b, "DTEND:%s\n", r.End.Format(eventTimeLayout))
	fmt.Fprintf(&b, "URL:%s\n", r.URL)
	b.WriteString("END:VEVENT\n")
	return b.String(), nil
}

func (f Formatter) Wifi(r models.WifiRecord) (string, error) {
	if blank(r.SSID) {
		return "", incomplete(models.KindWifi, "ssid")
	}
	v := f.uriValue
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;",
		r.Encryption.Token(), v(r.SSID), v(r.Password), r.Hidden), nil
}

func (f Formatter) Sms(r models.SmsRecord) (string, error) {
	if blank(r.PhoneNumber) {
		return "", incomplete(models.KindSms, "phone number")
	}
	return "SMSTO:" + r.PhoneNumber + ":" + r.Message, nil
}

func (f Formatter) Email(r models.EmailRecord) (string, error) {
	if blank(r.To) {
		return "", incomplete(models.KindEmail, "to")
	}
	v := f.uriValue
	return fmt.Sprintf("MATMSG:TO:%s;SUB:%s;BODY:%s;;", v(r.To), v(r.Subject), v(r.Body)), nil
}

func (f Formatter) PhoneCall(r models.PhoneCallRecord) (string, error) {
	if blank(r.PhoneNumber) {
		return "", incomplete(models.KindPhone, "phone number")
	}
	return "TEL:" + r.PhoneNumber, nil
}

func incomplete(k models.Kind, field string) error {
	return &IncompleteError{Kind: k, Field: field}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
