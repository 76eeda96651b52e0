package auth

import "context"

// Roles assignable to a caller.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Caller is the authenticated identity behind an API key. Its ID is the
// owner recorded on every order the caller places. KeyHash is the stored
// hash of the key the caller was resolved from, kept so the transport can
// re-verify it in constant time.
type Caller struct {
	ID      string
	KeyHash string
	Name    string
	Role    string
}

// Repository provides lookup of callers by the HMAC hash of their API key.
type Repository interface {
	FindByKeyHash(ctx context.Context, hash string) (*Caller, error)
}

type callerKey struct{}

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom extracts the authenticated caller from the context.
func CallerFrom(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*Caller)
	return c, ok
}
