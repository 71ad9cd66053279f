package models

import (
	"math"
	"time"
)

// Coordinate is a geographic point. Lat/Lng must be finite and inside the
// usual WGS84 ranges.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Categories is the fixed set of tags a point of interest can carry.
var Categories = []string{
	"restaurant",
	"cultural",
	"nature",
	"shopping",
	"events",
	"transit",
	"accommodation",
}

func ValidCategory(tag string) bool {
	for _, c := range Categories {
		if tag == c {
			return true
		}
	}
	return false
}

type POI struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Location  Coordinate `json:"location" bson:"location"`
	Tag       string     `json:"tag" bson:"tag"`
	Duration  int        `json:"duration" bson:"duration"` // estimated visit time in minutes
	City      string     `json:"city" bson:"city"`
	Team      string     `json:"team" bson:"team"`
	CreatedBy string     `json:"created_by" bson:"created_by"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}
