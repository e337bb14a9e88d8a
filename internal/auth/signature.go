package auth

import (
	"crypto/ed25519"
	"encoding/base64"
)

var b64 = base64.RawURLEncoding

// Ed25519Authorizer verifies detached ed25519 signatures. Addresses are the
// base64url (no padding) encoding of the 32-byte public key, matching the keys
// provisioned onto cards during registration.
type Ed25519Authorizer struct{}

// NewEd25519 builds the production signature authorizer.
func NewEd25519() Ed25519Authorizer {
	return Ed25519Authorizer{}
}

// Verify checks that the principal's signature over its message verifies under
// the public key its address encodes.
func (Ed25519Authorizer) Verify(p Principal) bool {
	key, err := b64.DecodeString(p.Address)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return false
	}
	if len(p.Signature) != ed25519.SignatureSize || len(p.Message) == 0 {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), p.Message, p.Signature)
}

// EncodeAddress renders a public key as a principal address string.
func EncodeAddress(key ed25519.PublicKey) string {
	return b64.EncodeToString(key)
}
