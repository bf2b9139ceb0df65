package mobile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/harrylevesque/qrforge/internal/models"
)

var (
	// ErrEmptyScan is returned for a symbol that carries no text.
	ErrEmptyScan = errors.New("scanned code is empty")
	// ErrMalformed is returned when a recognised prefix is followed by an
	// unreadable body.
	ErrMalformed = errors.New("malformed scanned payload")
)

const scanTimeLayout = "20060102T150405"

// ParseScanned turns the text read from a QR symbol back into a record. The
// kind is picked from the payload prefix; anything unrecognised is Text.
func ParseScanned(text string) (models.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyScan
	}
	head := strings.ToUpper(strings.TrimLeft(text, " \t\r\n"))
	switch {
	case strings.HasPrefix(head, "BEGIN:VCARD"):
		return parseVCard(text)
	case strings.HasPrefix(head, "BEGIN:VEVENT"):
		return parseEvent(text)
	case strings.HasPrefix(head, "WIFI:"):
		return parseWifi(text)
	case strings.HasPrefix(head, "SMSTO:"):
		return parseSms(text)
	case strings.HasPrefix(head, "MATMSG:"):
		return parseEmail(text)
	case strings.HasPrefix(head, "TEL:"):
		return models.PhoneCallRecord{PhoneNumber: afterPrefix(text)}, nil
	case strings.HasPrefix(head, "HTTP://"), strings.HasPrefix(head, "HTTPS://"):
		return models.URLRecord{URL: strings.TrimSpace(text)}, nil
	}
	return models.TextRecord{Text: text}, nil
}

func afterPrefix(text string) string {
	text = strings.TrimLeft(text, " \t\r\n")
	_, rest, _ := strings.Cut(text, ":")
	return rest
}

func parseVCard(text string) (models.Record, error) {
	card, err := vcard.NewDecoder(strings.NewReader(strings.TrimSpace(text) + "\n")).Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: vcard: %v", ErrMalformed, err)
	}

	rec := models.ContactRecord{
		Email: card.PreferredValue(vcard.FieldEmail),
		Phone: card.PreferredValue(vcard.FieldTelephone),
	}
	if n := card.Name(); n != nil {
		rec.FirstName = n.GivenName
		rec.LastName = n.FamilyName
	} else if fn := card.Value(vcard.FieldFormattedName); fn != "" {
		rec.FirstName, rec.LastName, _ = strings.Cut(fn, " ")
	}
	if adr := card.Address(); adr != nil {
		rec.Address = adr.StreetAddress
	}
	return rec, nil
}

func parseEvent(text string) (models.Record, error) {
	var rec models.EventRecord
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Drop parameters such as DTSTART;TZID=...
		name, _, _ = strings.Cut(strings.ToUpper(name), ";")
		switch name {
		case "SUMMARY":
			rec.Title = unescapeText(value)
		case "DESCRIPTION":
			rec.Description = unescapeText(value)
		case "URL":
			rec.URL = value
		case "DTSTART", "DTEND":
			t, err := parseEventTime(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, strings.ToLower(name), err)
			}
			if name == "DTSTART" {
				rec.Start = t
			} else {
				rec.End = t
			}
		}
	}
	return rec, nil
}

func parseEventTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "Z") {
		return time.Parse(scanTimeLayout+"Z", v)
	}
	if len(v) == len("20060102") {
		return time.ParseInLocation("20060102", v, time.Local)
	}
	return time.ParseInLocation(scanTimeLayout, v, time.Local)
}

func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'n' || s[i] == 'N' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func parseWifi(text string) (models.Record, error) {
	fields := splitFields(afterPrefix(strings.TrimSpace(text)))
	enc, err := models.ParseEncryption(fields["T"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return models.WifiRecord{
		SSID:       fields["S"],
		Password:   fields["P"],
		Encryption: enc,
		Hidden:     strings.EqualFold(fields["H"], "true"),
	}, nil
}

func parseEmail(text string) (models.Record, error) {
	fields := splitFields(afterPrefix(strings.TrimSpace(text)))
	if _, ok := fields["TO"]; !ok {
		return nil, fmt.Errorf("%w: MATMSG without TO", ErrMalformed)
	}
	return models.EmailRecord{To: fields["TO"], Subject: fields["SUB"], Body: fields["BODY"]}, nil
}

func parseSms(text string) (models.Record, error) {
	number, message, _ := strings.Cut(afterPrefix(text), ":")
	return models.SmsRecord{PhoneNumber: number, Message: message}, nil
}

// splitFields reads "K:V;K:V;;" pairs, honouring backslash escapes inside
// values. Keys are upper-cased; the first occurrence of a key wins.
func splitFields(s string) map[string]string {
	out := make(map[string]string)
	var seg strings.Builder
	flush := func() {
		k, v, ok := strings.Cut(seg.String(), ":")
		seg.Reset()
		if !ok {
			return
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		if _, dup := out[k]; !dup {
			out[k] = v
		}
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			seg.WriteByte(s[i])
		case c == ';':
			flush()
		default:
			seg.WriteByte(c)
		}
	}
	flush()
	return out
}
