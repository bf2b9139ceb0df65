package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSelfSigned writes a localhost certificate valid in [notBefore, notAfter].
func writeSelfSigned(t *testing.T, notBefore, notAfter time.Time) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0644))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func TestLoadValidCertificate(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeSelfSigned(t, now.Add(-time.Hour), now.Add(24*time.Hour))
	cm := NewCertManager(certFile, keyFile)

	cfg, err := cm.TLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "localhost", cfg.Certificates[0].Leaf.Subject.CommonName)

	leaf, err := cm.Leaf()
	require.NoError(t, err)
	assert.False(t, cm.IsExpired(leaf))
	assert.True(t, cm.ExpiresWithin(leaf, 48*time.Hour))
	assert.False(t, cm.ExpiresWithin(leaf, time.Hour))
}

func TestLoadExpiredCertificate(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeSelfSigned(t, now.Add(-48*time.Hour), now.Add(-time.Hour))

	_, err := NewCertManager(certFile, keyFile).Load()
	assert.ErrorIs(t, err, ErrExpired)
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := NewCertManager("nope.pem", "nope.key").Load()
	assert.Error(t, err)

	_, err = NewCertManager("nope.pem", "nope.key").Leaf()
	assert.Error(t, err)
}
