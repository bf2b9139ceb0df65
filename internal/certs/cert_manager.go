package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrExpired is returned when the leaf certificate is past NotAfter.
var ErrExpired = errors.New("certificate expired")

// CertManager loads the serving certificate for HTTPS.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

// NewCertManager creates a CertManager for a PEM certificate and key pair.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// Load reads the key pair and refuses an expired leaf certificate.
func (cm *CertManager) Load() (tls.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return tls.Certificate{}, err
	}
	if cm.IsExpired(leaf) {
		return tls.Certificate{}, fmt.Errorf("%w: %s not valid after %s", ErrExpired, cm.certFile, leaf.NotAfter.Format(time.RFC3339))
	}
	pair.Leaf = leaf
	return pair, nil
}

// TLSConfig returns a server TLS config serving the loaded certificate.
func (cm *CertManager) TLSConfig() (*tls.Config, error) {
	pair, err := cm.Load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, nil
}

// Leaf returns the first certificate in the certificate file.
func (cm *CertManager) Leaf() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certFile)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to parse certificate PEM")
	}

	return x509.ParseCertificate(block.Bytes)
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// ExpiresWithin reports whether cert expires within d, for startup warnings.
func (cm *CertManager) ExpiresWithin(cert *x509.Certificate, d time.Duration) bool {
	return cert.NotAfter.Before(cm.now().Add(d))
}
