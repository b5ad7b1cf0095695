package rest

import "valuation-service/internal/core/domain"

// PropertyInfoRequestDTO is the body of POST /predict.
type PropertyInfoRequestDTO struct {
	Type          string   `json:"type"`
	Sector        string   `json:"sector"`
	NetUsableArea float64  `json:"net_usable_area"`
	NetArea       float64  `json:"net_area"`
	NRooms        float64  `json:"n_rooms"`
	NBathroom     float64  `json:"n_bathroom"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Price         *float64 `json:"price,omitempty"`
}

func (d PropertyInfoRequestDTO) ToDomain() domain.PropertyRecord {
	return domain.PropertyRecord{
		Type:          d.Type,
		Sector:        d.Sector,
		NetUsableArea: d.NetUsableArea,
		NetArea:       d.NetArea,
		NRooms:        d.NRooms,
		NBathroom:     d.NBathroom,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Price:         d.Price,
	}
}

type PredictionResponseDTO struct {
	EstimatedPrice float64 `json:"estimated_price"`
}

type HealthResponseDTO struct {
	Status  string `json:"status"`
	ModelID string `json:"model_id"`
}
