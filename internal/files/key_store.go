package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harrylevesque/qrforge/internal/crypto"
)

// DefaultMasterKeyFile is where genmasterkey writes and the server looks by default.
const DefaultMasterKeyFile = "master.key"

// ErrNoMasterKey means neither the hex value nor the key file is available.
var ErrNoMasterKey = errors.New("master key not configured")

// ReadMasterKey decodes hexKey if set, otherwise reads the hex key stored in path.
func ReadMasterKey(hexKey, path string) ([]byte, error) {
	h := strings.TrimSpace(hexKey)
	if h == "" {
		if path == "" {
			return nil, ErrNoMasterKey
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s not found", ErrNoMasterKey, path)
			}
			return nil, err
		}
		h = strings.TrimSpace(string(data))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != crypto.MasterKeySize {
		return nil, fmt.Errorf("master key length must be %d bytes (hex %d chars): %w",
			crypto.MasterKeySize, crypto.MasterKeySize*2, crypto.ErrInvalidKeyLength)
	}
	return b, nil
}

// WriteMasterKey generates a new key and writes it hex encoded to path with
// 0600 permissions. It refuses to overwrite unless force is set.
func WriteMasterKey(path string, force bool) ([]byte, error) {
	if FileExists(path) && !force {
		return nil, fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	key := crypto.MustRandom(crypto.MasterKeySize)
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0600); err != nil {
		return nil, err
	}
	return key, nil
}

// FileExists checks if the given file exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}
