package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const hexDigits = "0123456789ABCDEF"

// IOError is returned when a wallet file cannot be opened or read
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NotFound reports whether the underlying cause is a missing file
func (e *IOError) NotFound() bool {
	return errors.Is(e.Err, os.ErrNotExist)
}

// LoadBuffer reads a whole file into memory as an opaque byte buffer
func LoadBuffer(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IOError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// FormatHex renders bytes as uppercase hex, two digits per byte, no separators
func FormatHex(data []byte) string {
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}

// HexToBytes converts hex string to bytes with validation
func HexToBytes(hexStr string) ([]byte, error) {
	if len(hexStr)%2 != 0 {
		return nil, errors.New("invalid hex string: odd length")
	}
	return hex.DecodeString(hexStr)
}

// HexDump renders the first n bytes as space-separated uppercase pairs,
// with an extra gap after every 8 bytes.
func HexDump(data []byte, n int) string {
	if n > len(data) {
		n = len(data)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(FormatHex(data[i : i+1]))
		sb.WriteByte(' ')
		if (i+1)%8 == 0 && i+1 < n {
			sb.WriteString("  ")
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// WalletDigest returns the double-SHA256 of the whole buffer in display order
func WalletDigest(data []byte) string {
	return chainhash.DoubleHashH(data).String()
}

// KeyFingerprint returns HASH160 (RIPEMD160 of SHA256) of the key bytes as hex
func KeyFingerprint(key []byte) string {
	return hex.EncodeToString(btcutil.Hash160(key))
}
