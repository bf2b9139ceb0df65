package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned when a kind slug does not name a record type.
var ErrUnknownKind = errors.New("unknown qr kind")

// Kind identifies which record a QR code is generated from.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindVCard Kind = "vcard"
	KindEvent Kind = "event"
	KindWifi  Kind = "wifi"
	KindSms   Kind = "sms"
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
)

// Kinds lists every kind in the order the form shows them.
var Kinds = []Kind{KindText, KindURL, KindVCard, KindEvent, KindWifi, KindSms, KindEmail, KindPhone}

// ParseKind maps a slug (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "wi-fi":
		return KindWifi, nil
	case "contact":
		return KindVCard, nil
	case "tel", "call":
		return KindPhone, nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Label is the human readable name shown in the UI.
func (k Kind) Label() string {
	switch k {
	case KindText:
		return "Text"
	case KindURL:
		return "URL"
	case KindVCard:
		return "vCard"
	case KindEvent:
		return "Event"
	case KindWifi:
		return "Wi-Fi"
	case KindSms:
		return "SMS"
	case KindEmail:
		return "Email"
	case KindPhone:
		return "Phone Call"
	}
	return string(k)
}

// FileName is the download name for a rendered code of this kind.
func (k Kind) FileName() string {
	return string(k) + "_qr_code.png"
}

// Record is implemented by every payload record. The set is closed.
type Record interface {
	Kind() Kind
	isRecord()
}

type TextRecord struct {
	Text string `json:"text"`
}

type URLRecord struct {
	URL string `json:"url"`
}

// ContactRecord is rendered as a vCard 3.0.
type ContactRecord struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// EventRecord is rendered as an iCalendar VEVENT. Start and End are floating
// local times; their location is ignored.
type EventRecord struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	URL         string    `json:"url"`
}

type WifiRecord struct {
	SSID       string     `json:"ssid"`
	Password   string     `json:"password"`
	Encryption Encryption `json:"encryption"`
	Hidden     bool       `json:"hidden"`
}

type SmsRecord struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

type EmailRecord struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PhoneCallRecord struct {
	PhoneNumber string `json:"phone_number"`
}

func (TextRecord) Kind() Kind      { return KindText }
func (URLRecord) Kind() Kind       { return KindURL }
func (ContactRecord) Kind() Kind   { return KindVCard }
func (EventRecord) Kind() Kind     { return KindEvent }
func (WifiRecord) Kind() Kind      { return KindWifi }
func (SmsRecord) Kind() Kind       { return KindSms }
func (EmailRecord) Kind() Kind     { return KindEmail }
func (PhoneCallRecord) Kind() Kind { return KindPhone }

func (TextRecord) isRecord()      {}
func (URLRecord) isRecord()       {}
func (ContactRecord) isRecord()   {}
func (EventRecord) isRecord()     {}
func (WifiRecord) isRecord()      {}
func (SmsRecord) isRecord()       {}
func (EmailRecord) isRecord()     {}
func (PhoneCallRecord) isRecord() {}
