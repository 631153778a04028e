package providers

import "context"

// CredentialProvider supplies the bearer token for outgoing requests
type CredentialProvider interface {
	// Token returns the current token or an UNAUTHORIZED error when there is none
	Token(ctx context.Context) (string, error)

	// Invalidate drops the token after the backend rejected it
	Invalidate()
}
