package usecase

import (
	"context"
	"math"
	"testing"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleRecord() domain.PropertyRecord {
	return domain.PropertyRecord{
		Type:          "casa",
		Sector:        "vitacura",
		NetUsableArea: 140,
		NetArea:       170,
		NRooms:        4,
		NBathroom:     4,
		Latitude:      -33.40123,
		Longitude:     -70.58056,
	}
}

func TestPredictPriceReturnsFiniteEstimate(t *testing.T) {
	uc, err := NewPredictPriceUseCase(trainedModel(t))
	require.NoError(t, err)

	logger := newRecordingLogger()
	ctx := contextkeys.ContextWithLogger(context.Background(), logger)
	ctx = contextkeys.ContextWithIdentity(ctx, "user1")

	price, err := uc.Execute(ctx, exampleRecord())
	require.NoError(t, err)
	assert.False(t, math.IsNaN(price) || math.IsInf(price, 0))
	assert.Greater(t, price, 0.0)

	infos := logger.find("info")
	require.Len(t, infos, 1)
	assert.Equal(t, "user1", infos[0].fields["identity"])
	assert.Len(t, infos[0].fields["fingerprint"], 64)
}

func TestPredictPriceUnknownCategoryFallsBackToPrior(t *testing.T) {
	uc, err := NewPredictPriceUseCase(trainedModel(t))
	require.NoError(t, err)

	rec := exampleRecord()
	rec.Sector = "lo barnechea"
	price, err := uc.Execute(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(price))
}

func TestPredictPriceIgnoresKnownPrice(t *testing.T) {
	uc, err := NewPredictPriceUseCase(trainedModel(t))
	require.NoError(t, err)

	plain, err := uc.Execute(context.Background(), exampleRecord())
	require.NoError(t, err)

	withPrice := exampleRecord()
	known := 1.0
	withPrice.Price = &known
	got, err := uc.Execute(context.Background(), withPrice)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestNewPredictPriceUseCaseRequiresModel(t *testing.T) {
	_, err := NewPredictPriceUseCase(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPropertyFingerprint(t *testing.T) {
	a := exampleRecord()
	b := exampleRecord()
	b.NetUsableArea = 141 // same 2m2 bucket

	assert.Equal(t, propertyFingerprint(a), propertyFingerprint(b))

	c := exampleRecord()
	c.Sector = "las condes"
	assert.NotEqual(t, propertyFingerprint(a), propertyFingerprint(c))

	assert.Contains(t, buildFingerprintPayload(a), "|casa|vitacura|70|85|4|4")
}
