package contextkeys

import "context"

type identityKeyType struct{}

var identityKey = identityKeyType{}

// ContextWithIdentity stores the caller identity resolved from the API key.
func ContextWithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	return identity, ok
}
