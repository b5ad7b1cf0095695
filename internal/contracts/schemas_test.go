package contracts

import (
	"errors"
	"testing"

	"valuation-service/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"type": "casa",
	"sector": "vitacura",
	"net_usable_area": 140.0,
	"net_area": 170.0,
	"n_rooms": 4.0,
	"n_bathroom": 4.0,
	"latitude": -33.40123,
	"longitude": -70.58056
}`

func validate(body string) error {
	return ValidateRequest(constants.SchemaPropertyInfoRequest, constants.SchemaPropertyInfoRequestVersion, []byte(body))
}

func TestGenerateKeyFromPath(t *testing.T) {
	assert.Equal(t, "PropertyInfoRequest/1.0.0", generateKeyFromPath("requests/property-info/v1.json"))
	assert.Equal(t, "PropertyInfoRequest/2.0.0", generateKeyFromPath("requests/property-info/v2.json"))
	assert.Equal(t, "", generateKeyFromPath("requests/property-info.json"))
	assert.Equal(t, "", generateKeyFromPath("requests/property-info/latest.json"))
}

func TestRegistryHasPropertyInfo(t *testing.T) {
	assert.Contains(t, Registered(), "PropertyInfoRequest/1.0.0")
}

func TestValidateRequestAccepts(t *testing.T) {
	require.NoError(t, validate(validBody))

	withPrice := `{"type":"departamento","sector":"las condes","net_usable_area":60,"net_area":65,
		"n_rooms":2,"n_bathroom":1,"latitude":-33.4,"longitude":-70.5,"price":8500}`
	require.NoError(t, validate(withPrice))
}

func TestValidateRequestMalformed(t *testing.T) {
	err := validate(`{"type": "casa",`)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	assert.NotErrorIs(t, err, ErrSchemaMismatch)
}

func TestValidateRequestMissingField(t *testing.T) {
	err := validate(`{"type":"casa","sector":"vitacura","net_usable_area":140,"net_area":170,
		"n_rooms":4,"n_bathroom":4,"latitude":-33.4}`)
	require.ErrorIs(t, err, ErrSchemaMismatch)

	var ve *ViolationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "longitude")
}

func TestValidateRequestWrongType(t *testing.T) {
	err := validate(`{"type":"casa","sector":"vitacura","net_usable_area":"big","net_area":170,
		"n_rooms":4,"n_bathroom":4,"latitude":-33.4,"longitude":-70.5}`)
	require.ErrorIs(t, err, ErrSchemaMismatch)

	var ve *ViolationError
	require.True(t, errors.As(err, &ve))
	require.NotEmpty(t, ve.Violations)
	assert.Equal(t, "/net_usable_area", ve.Violations[0].Field)
}

func TestValidateRequestUnknownSchema(t *testing.T) {
	err := ValidateRequest("Nope", "1.0.0", []byte(validBody))
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}
