package edu

import "io"

// Encryptor protects exported decks. Setup generates the key material,
// Encrypt is used on the export path, and Unlock returns a context able to
// decrypt previously exported decks.
type Encryptor interface {
	// Setup generates and stores a new key pair protected by the passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the stored private key with the passphrase.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material exists.
	IsConfigured() bool
}

// DecryptionContext is an unlocked decryption key. Unlock once, decrypt many.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
