package constants

// Request contracts registered from the embedded schema files.
const (
	SchemaPropertyInfoRequest        = "PropertyInfoRequest"
	SchemaPropertyInfoRequestVersion = "1.0.0"
)
