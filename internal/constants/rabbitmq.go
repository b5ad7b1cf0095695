package constants

const (
	ExchangeValuationEvents     = "valuation_events"
	ExchangeValuationEventsType = "topic"
)

// Routing keys
const (
	RoutingKeyModelTrained = "model.trained"
)

// Event metadata headers
const (
	EventTypeModelTrained    = "ModelTrainedEvent"
	EventVersionModelTrained = "1.0.0"
)
