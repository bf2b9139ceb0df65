package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Encryption is the Wi-Fi authentication type.
type Encryption int

const (
	EncryptionNone Encryption = iota
	EncryptionWPA
	EncryptionWEP
)

// ParseEncryption accepts the form labels ("None", "WPA/WPA2", "WEP") as well
// as the WIFI: URI tokens ("nopass", "WPA", "WEP").
func ParseEncryption(s string) (Encryption, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE", "NOPASS", "OPEN":
		return EncryptionNone, nil
	case "WPA", "WPA2", "WPA/WPA2", "WPA3", "SAE":
		return EncryptionWPA, nil
	case "WEP":
		return EncryptionWEP, nil
	}
	return EncryptionNone, fmt.Errorf("unknown wifi encryption %q", s)
}

// String returns the form label.
func (e Encryption) String() string {
	switch e {
	case EncryptionWPA:
		return "WPA/WPA2"
	case EncryptionWEP:
		return "WEP"
	}
	return "None"
}

// Token returns the value used in the T: field of a WIFI: payload.
func (e Encryption) Token() string {
	switch e {
	case EncryptionWPA:
		return "WPA"
	case EncryptionWEP:
		return "WEP"
	}
	return "nopass"
}

func (e Encryption) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *Encryption) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEncryption(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
