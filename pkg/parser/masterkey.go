package parser

import (
	"bytes"
	"encoding/binary"

	"wallet-lens/pkg/types"
	"wallet-lens/pkg/utils"

	"github.com/btcsuite/btcd/wire"
)

// Upper bounds for CMasterKey fields; real wallets use 48 and 8 bytes.
const (
	maxCryptedKeyLen = 1024
	maxSaltLen       = 256
	maxOtherParams   = 1024
)

var derivationLabels = map[uint32]string{
	0: "sha512-aes256-cbc",
	1: "scrypt",
}

// DecodeMasterKey interprets a record value as a serialized Bitcoin Core
// CMasterKey:
//
//	[var bytes: encrypted key]
//	[var bytes: salt]
//	[uint32 LE: derivation method]
//	[uint32 LE: derive iterations]
//	[var bytes: other derivation parameters]
//
// The decode is descriptive only. Returns false unless the blob parses
// completely with no trailing bytes.
func DecodeMasterKey(blob []byte) (*types.MasterKeyInfo, bool) {
	r := bytes.NewReader(blob)

	cryptedKey, err := wire.ReadVarBytes(r, 0, maxCryptedKeyLen, "crypted key")
	if err != nil || len(cryptedKey) == 0 {
		return nil, false
	}
	salt, err := wire.ReadVarBytes(r, 0, maxSaltLen, "salt")
	if err != nil || len(salt) == 0 {
		return nil, false
	}

	var method, iterations uint32
	if err := binary.Read(r, binary.LittleEndian, &method); err != nil {
		return nil, false
	}
	if err := binary.Read(r, binary.LittleEndian, &iterations); err != nil {
		return nil, false
	}

	other, err := wire.ReadVarBytes(r, 0, maxOtherParams, "other derivation parameters")
	if err != nil || r.Len() != 0 {
		return nil, false
	}

	label, ok := derivationLabels[method]
	if !ok {
		label = "unknown"
	}

	return &types.MasterKeyInfo{
		EncryptedKeyHex:  utils.FormatHex(cryptedKey),
		EncryptedKeyLen:  len(cryptedKey),
		SaltHex:          utils.FormatHex(salt),
		DerivationMethod: method,
		DeriveIterations: iterations,
		OtherParamsHex:   utils.FormatHex(other),
		DerivationLabel:  label,
	}, true
}
