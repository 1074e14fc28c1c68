// Package domain defines the core cryptographic types shared across the
// key lifecycle: the wrapped blob format, key size constants, and the
// domain errors crypto failures collapse into.
package domain

import (
	"encoding/base64"
)

const (
	// KeySize is the size in bytes of every symmetric key in the system:
	// content keys, password-derived keys, recovery-derived keys, and
	// PIN-derived keys are all 256-bit AES keys.
	KeySize = 32

	// IVSize is the size in bytes of the initialization vector stored at the
	// front of every wrapped blob. Fixed for compatibility with existing
	// stored data; changing it would require an explicit format version.
	IVSize = 16

	// TagSize is the size in bytes of the GCM authentication tag stored after
	// the IV in every wrapped blob.
	TagSize = 16
)

// WrappedBlob is the authenticated-encryption envelope used both for wrapped
// keys and for document ciphertext. Its serialized byte layout is fixed:
//
//	IV (16 bytes) || AuthTag (16 bytes) || Ciphertext
//
// encoded as standard base64 at rest. The layout is bit-exact for
// interoperability with previously stored blobs.
type WrappedBlob struct {
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// Encode serializes the blob into its base64 storage representation.
func (b WrappedBlob) Encode() string {
	raw := make([]byte, 0, len(b.IV)+len(b.Tag)+len(b.Ciphertext))
	raw = append(raw, b.IV...)
	raw = append(raw, b.Tag...)
	raw = append(raw, b.Ciphertext...)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeWrappedBlob parses the base64 storage representation of a wrapped
// blob. Malformed encodings and blobs too short to carry an IV and tag are
// rejected with ErrMalformedBlob before any cryptographic operation runs.
func DecodeWrappedBlob(encoded string) (WrappedBlob, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return WrappedBlob{}, ErrMalformedBlob
	}
	if len(raw) < IVSize+TagSize {
		return WrappedBlob{}, ErrMalformedBlob
	}

	return WrappedBlob{
		IV:         raw[:IVSize],
		Tag:        raw[IVSize : IVSize+TagSize],
		Ciphertext: raw[IVSize+TagSize:],
	}, nil
}
