package mobile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrylevesque/qrforge/internal/models"
)

// ErrInvalidField is matched by every FieldError.
var ErrInvalidField = errors.New("invalid field")

// FieldError reports a value that cannot be parsed, as opposed to a blank one.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q, %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

// Accepted event date inputs. The first is what <input type=datetime-local>
// submits; "20060102 1504" is the YYYYMMDD HHMM form typed by hand.
var eventTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"20060102 1504",
	"20060102T1504",
	"20060102T150405",
}

// ParseEventTime reads a local date-time. Blank input is the zero time.
func ParseEventTime(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &FieldError{Field: field + " date", Value: v, Reason: "expected YYYY-MM-DDTHH:MM or YYYYMMDD HHMM"}
}

// ParseCheckbox accepts what browsers and command lines send for a set flag.
func ParseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// RecordFromForm builds the record for k from submitted field values. Blank
// required fields stay blank; the formatter reports them.
func RecordFromForm(k models.Kind, get func(name string) string) (models.Record, error) {
	switch k {
	case models.KindText:
		return models.TextRecord{Text: get("text")}, nil
	case models.KindURL:
		return models.URLRecord{URL: get("url")}, nil
	case models.KindVCard:
		return models.ContactRecord{
			FirstName: get("first_name"),
			LastName:  get("last_name"),
			Address:   get("address"),
			Email:     get("email"),
			Phone:     get("phone"),
		}, nil
	case models.KindEvent:
		start, err := ParseEventTime("start", get("start"))
		if err != nil {
			return nil, err
		}
		end, err := ParseEventTime("end", get("end"))
		if err != nil {
			return nil, err
		}
		return models.EventRecord{
			Title:       get("title"),
			Description: get("description"),
			Start:       start,
			End:         end,
			URL:         get("url"),
		}, nil
	case models.KindWifi:
		enc, err := models.ParseEncryption(get("encryption"))
		if err != nil {
			return nil, &FieldError{Field: "encryption", Value: get("encryption"), Reason: "expected None, WPA/WPA2 or WEP"}
		}
		return models.WifiRecord{
			SSID:       get("ssid"),
			Password:   get("password"),
			Encryption: enc,
			Hidden:     ParseCheckbox(get("hidden")),
		}, nil
	case models.KindSms:
		return models.SmsRecord{PhoneNumber: get("phone_number"), Message: get("message")}, nil
	case models.KindEmail:
		return models.EmailRecord{To: get("to"), Subject: get("subject"), Body: get("body")}, nil
	case models.KindPhone:
		return models.PhoneCallRecord{PhoneNumber: get("phone_number")}, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownKind, k)
}
