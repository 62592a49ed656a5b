// Package wallet holds the trading keypair and signs serialized Solana
// transactions.
package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Wallet wraps an ed25519 keypair. The zero value is not usable; construct
// with NewFromBase58.
type Wallet struct {
	priv   ed25519.PrivateKey
	pubkey string // base58
}

// NewFromBase58 creates a wallet from a base58-encoded 64-byte keypair
// (32-byte seed followed by the 32-byte public key, the Solana CLI format).
func NewFromBase58(encoded string) (*Wallet, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode keypair: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)

	// The trailing 32 bytes must match the key derived from the seed;
	// a mismatch means a corrupted or truncated export.
	for i := range pub {
		if raw[32+i] != pub[i] {
			return nil, fmt.Errorf("keypair public half does not match derived public key")
		}
	}
	if !isOnCurve(pub) {
		return nil, fmt.Errorf("public key is not on the ed25519 curve")
	}

	return &Wallet{
		priv:   priv,
		pubkey: base58.Encode(pub),
	}, nil
}

// PublicKey returns the base58-encoded wallet address.
func (w *Wallet) PublicKey() string {
	return w.pubkey
}

// Sign signs an arbitrary message with the wallet's private key.
func (w *Wallet) Sign(message []byte) []byte {
	return ed25519.Sign(w.priv, message)
}

// SignTransaction signs a base64-encoded serialized transaction in place:
// the message bytes are signed and the signature written into the fee
// payer's slot. Works for both legacy and v0 transactions since the
// signature section layout is identical.
func (w *Wallet) SignTransaction(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSigs, offset, err := decodeCompactU16(raw)
	if err != nil {
		return "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSigs < 1 {
		return "", fmt.Errorf("transaction reserves no signature slots")
	}

	sigSection := numSigs * ed25519.SignatureSize
	if len(raw) < offset+sigSection {
		return "", fmt.Errorf("transaction shorter than signature section")
	}

	message := raw[offset+sigSection:]
	sig := ed25519.Sign(w.priv, message)
	copy(raw[offset:], sig)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeCompactU16 decodes the Solana compact-u16 length prefix, returning
// the value and the number of bytes consumed.
func decodeCompactU16(data []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("truncated compact-u16")
		}
		b := int(data[i])
		value |= (b & 0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("compact-u16 exceeds 3 bytes")
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
