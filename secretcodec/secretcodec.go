// Package secretcodec implements Crypted scalar encoding: scalar
// values written with the Crypted flag are encrypted before they are
// stored in the Source tree, and decrypted when read back through a
// Cursor with the Crypted flag. The stored tree, and so the backend
// file, only ever holds the ciphertext.
//
// Config values have no natural notion of "recipient" the way a
// credential bundle handed between machines does, so this adapts a
// keypair-based age sealing scheme to age's passphrase-based scrypt
// recipient/identity instead: one passphrase per Cursor, not a
// public/private keypair per peer.
package secretcodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// ErrNoPassphrase is returned by Encrypt/Decrypt when no passphrase
// has been configured.
var ErrNoPassphrase = errors.New("secretcodec: no passphrase configured")

// Codec turns plaintext scalar values into opaque, storable strings
// and back, using a single shared passphrase.
type Codec struct {
	passphrase string
}

// New returns a Codec that encrypts and decrypts with passphrase.
// An empty passphrase makes every Encrypt call, and every Decrypt of a
// non-empty ciphertext, fail with ErrNoPassphrase — callers that never
// use Crypted values can leave this unset.
func New(passphrase string) *Codec {
	return &Codec{passphrase: passphrase}
}

// Encrypt encrypts plaintext and returns a base64-encoded ciphertext
// suitable for storing as a plain string scalar.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if c.passphrase == "" {
		return "", ErrNoPassphrase
	}
	recipient, err := age.NewScryptRecipient(c.passphrase)
	if err != nil {
		return "", fmt.Errorf("secretcodec: building recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return "", fmt.Errorf("secretcodec: starting encryption: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("secretcodec: writing plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("secretcodec: finalizing encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decrypt reverses Encrypt. An empty ciphertext decrypts to an empty
// string without consulting the passphrase — this mirrors an
// unset Crypted value round-tripping through a Null-tagged scalar.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if c.passphrase == "" {
		return "", ErrNoPassphrase
	}
	identity, err := age.NewScryptIdentity(c.passphrase)
	if err != nil {
		return "", fmt.Errorf("secretcodec: building identity: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("secretcodec: decoding ciphertext: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return "", fmt.Errorf("secretcodec: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("secretcodec: reading plaintext: %w", err)
	}
	return string(plaintext), nil
}
