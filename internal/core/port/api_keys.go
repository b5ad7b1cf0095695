package port

// APIKeyRegistryPort resolves an API key to the identity that owns it.
type APIKeyRegistryPort interface {
	Identify(key string) (string, error)
}
