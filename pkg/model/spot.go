package model

// Spot is owned by the spots service; bookings only read it.
type Spot struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	OwnerID      string    `json:"ownerId" bson:"owner_id"`
	SpotType     string    `json:"spotType" bson:"spot_type"`
	Address      string    `json:"address" bson:"address"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	PricePerHour float64   `json:"pricePerHour" bson:"price_per_hour"`
	IsAvailable  bool      `json:"isAvailable" bson:"is_available"`
	Location     *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
}

// GeoPoint is a GeoJSON point, coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

type SpotSummary struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Description  string    `json:"description,omitempty"`
	PricePerHour float64   `json:"pricePerHour"`
	Location     *GeoPoint `json:"location,omitempty"`
}

func (s *Spot) Summary() *SpotSummary {
	if s == nil {
		return nil
	}
	return &SpotSummary{
		ID:           s.ID,
		Address:      s.Address,
		Description:  s.Description,
		PricePerHour: s.PricePerHour,
		Location:     s.Location,
	}
}
