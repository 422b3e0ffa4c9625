package auth

// TokenVerifier defines the interface for bearer token verification.
// This abstraction keeps the middleware agnostic to the verification details.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the subject it was
	// issued to. Returns an error if the token is invalid, expired, or has
	// an invalid signature.
	VerifyToken(tokenString string) (string, error)

	// Close releases any resources held by the verifier (e.g., HTTP
	// connections for JWKS refresh).
	Close() error
}
