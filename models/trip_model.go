package models

import "time"

// Trip is a planned visit to a single city over a fixed number of days.
type Trip struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	City      string    `json:"city" bson:"city"`
	Days      int       `json:"days" bson:"days"`
	StartDate string    `json:"start_date,omitempty" bson:"start_date,omitempty"` // YYYY-MM-DD
	Team      string    `json:"team" bson:"team"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// DayAssignment places one point of interest onto one day of a trip.
// It is a join record: the same POI can appear on other days or other trips
// without touching the POI document itself. CreatedAt is the server clock at
// insertion time and drives "most recently assigned" ordering.
type DayAssignment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	TripID    string    `json:"trip_id" bson:"trip_id"`
	PoiID     string    `json:"poi_id" bson:"poi_id"`
	Day       int       `json:"day" bson:"day"` // 1-based, never exceeds Trip.Days
	Team      string    `json:"team" bson:"team"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
