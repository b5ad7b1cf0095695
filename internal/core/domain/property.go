package domain

import (
	"strconv"

	"valuation-service/pkg/ml/pipeline"
)

// Column names of the property tables and of the prediction input.
const (
	ColumnID            = "id"
	ColumnType          = "type"
	ColumnSector        = "sector"
	ColumnNetUsableArea = "net_usable_area"
	ColumnNetArea       = "net_area"
	ColumnNRooms        = "n_rooms"
	ColumnNBathroom     = "n_bathroom"
	ColumnLatitude      = "latitude"
	ColumnLongitude     = "longitude"
	ColumnPrice         = "price"
)

// CategoricalColumns are target-encoded before the regressor sees them.
var CategoricalColumns = []string{ColumnType, ColumnSector}

// NumericColumns are the numeric fields a prediction request carries. Only
// these can be passed through to the regressor; any other training column,
// price included, is never a feature.
var NumericColumns = []string{
	ColumnNetUsableArea, ColumnNetArea,
	ColumnNRooms, ColumnNBathroom,
	ColumnLatitude, ColumnLongitude,
}

// NonFeatureColumns lists the columns of header that a record cannot supply.
func NonFeatureColumns(header []string) []string {
	known := make(map[string]struct{}, len(CategoricalColumns)+len(NumericColumns))
	for _, c := range CategoricalColumns {
		known[c] = struct{}{}
	}
	for _, c := range NumericColumns {
		known[c] = struct{}{}
	}
	var out []string
	for _, c := range header {
		if _, ok := known[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// PropertyRecord is one property to be valued.
type PropertyRecord struct {
	Type          string
	Sector        string
	NetUsableArea float64
	NetArea       float64
	NRooms        float64
	NBathroom     float64
	Latitude      float64
	Longitude     float64
	// Price is only present in the request variant that echoes a known price.
	Price *float64
}

// Row exposes the record under the training column names. Price is left out
// since it is never a feature.
func (p PropertyRecord) Row() pipeline.Row {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return pipeline.Row{
		ColumnType:          p.Type,
		ColumnSector:        p.Sector,
		ColumnNetUsableArea: f(p.NetUsableArea),
		ColumnNetArea:       f(p.NetArea),
		ColumnNRooms:        f(p.NRooms),
		ColumnNBathroom:     f(p.NBathroom),
		ColumnLatitude:      f(p.Latitude),
		ColumnLongitude:     f(p.Longitude),
	}
}
