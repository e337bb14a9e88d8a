package auth

import "errors"

// ErrUnauthorized indicates the caller failed to prove control of the principal
// it claims. It is distinct from the domain error kinds: the request is rejected
// before any card logic runs.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is a claimed identity together with its proof of possession. Message
// is the canonical byte payload the caller signed, Signature its detached
// signature under the key the Address encodes.
type Principal struct {
	Address   string
	Message   []byte
	Signature []byte
}

// Authorizer verifies that a principal actually controls the address it claims.
// Implementations decide what counts as proof; the card service only asks for a
// yes/no answer and separately compares the address against the stored role.
type Authorizer interface {
	Verify(p Principal) bool
}

// insecureAuthorizer accepts every principal. Used in development mode where
// requests are not signed.
type insecureAuthorizer struct{}

// Insecure returns an authorizer that trusts every claimed address.
func Insecure() Authorizer {
	return insecureAuthorizer{}
}

func (insecureAuthorizer) Verify(p Principal) bool {
	return p.Address != ""
}
