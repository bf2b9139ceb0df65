package crypto

import (
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidToken covers malformed, tampered and foreign tokens.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadTicket is what a download link carries: everything needed to render
// the same image again without server-side state.
type DownloadTicket struct {
	Kind       string    `json:"k"`
	Payload    string    `json:"p"`
	Foreground string    `json:"fg,omitempty"`
	Background string    `json:"bg,omitempty"`
	ExpiresAt  time.Time `json:"exp"`
}

// Sealer seals tickets into URL-safe tokens with XChaCha20-Poly1305.
type Sealer struct {
	aead cipher.AEAD
	ttl  time.Duration
	now  func() time.Time
}

// NewSealer derives the token key from master. A zero ttl means one hour.
func NewSealer(master []byte, ttl time.Duration) (*Sealer, error) {
	key, err := DeriveTokenKey(master)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sealer{aead: aead, ttl: ttl, now: time.Now}, nil
}

// Seal stamps t with an expiry and returns base64url(nonce || ciphertext).
func (s *Sealer) Seal(t DownloadTicket) (string, error) {
	t.ExpiresAt = s.now().Add(s.ttl).UTC().Truncate(time.Second)
	plain, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	nonce := MustRandom(s.aead.NonceSize())
	blob := s.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(blob), nil
}

// Open verifies and decodes a token produced by Seal.
func (s *Sealer) Open(token string) (DownloadTicket, error) {
	var t DownloadTicket
	blob, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return t, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	ns := s.aead.NonceSize()
	if len(blob) < ns+s.aead.Overhead() {
		return t, fmt.Errorf("%w: too short", ErrInvalidToken)
	}
	plain, err := s.aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return t, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(plain, &t); err != nil {
		return t, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.now().After(t.ExpiresAt) {
		return t, ErrTokenExpired
	}
	return t, nil
}
