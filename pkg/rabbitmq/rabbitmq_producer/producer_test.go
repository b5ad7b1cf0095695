package rabbitmq_producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherConfigValidate(t *testing.T) {
	assert.NoError(t, PublisherConfig{}.Validate())
	assert.NoError(t, PublisherConfig{ExchangeName: "valuation_events"}.Validate())
	assert.NoError(t, PublisherConfig{
		ExchangeName:             "valuation_events",
		ExchangeType:             "topic",
		DeclareExchangeIfMissing: true,
	}.Validate())

	assert.Error(t, PublisherConfig{ExchangeType: "topic", DeclareExchangeIfMissing: true}.Validate())
	assert.Error(t, PublisherConfig{ExchangeName: "valuation_events", DeclareExchangeIfMissing: true}.Validate())
}

func TestNewPublisherRequiresManager(t *testing.T) {
	_, err := NewPublisher(PublisherConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection manager")
}
