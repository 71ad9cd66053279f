package services

import (
	"context"
	"log"
	"time"
	"wayfare/models"
	"wayfare/utils/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TripService struct {
	trips       *mongo.Collection
	assignments *mongo.Collection
}

func NewTripService(db *mongo.Database) *TripService {
	return &TripService{
		trips:       db.Collection("trips"),
		assignments: db.Collection("assignments"),
	}
}

type TripInput struct {
	City      string `json:"city"`
	Days      int    `json:"days"`
	StartDate string `json:"start_date"`
	Team      string `json:"team"`
}

func (s *TripService) CreateTrip(ctx context.Context, userID string, in TripInput) (models.Trip, error) {
	if in.City == "" || in.Team == "" {
		return models.Trip{}, errors.ErrInvalidInput
	}
	if in.Days < 1 {
		return models.Trip{}, errors.NewAPIError("INVALID_DAYS", "A trip needs at least one day", errors.ErrInvalidInput.Status)
	}
	if in.StartDate != "" {
		if _, err := time.Parse("2006-01-02", in.StartDate); err != nil {
			return models.Trip{}, errors.NewAPIError("INVALID_START_DATE", "Start date must be YYYY-MM-DD", errors.ErrInvalidInput.Status)
		}
	}

	trip := models.Trip{
		ID:        uuid.New().String(),
		City:      in.City,
		Days:      in.Days,
		StartDate: in.StartDate,
		Team:      in.Team,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.trips.InsertOne(ctx, trip); err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	var trip models.Trip
	err := s.trips.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return models.Trip{}, errors.ErrNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

// ListTrips returns a team's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, team string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.trips.Find(ctx, bson.M{"team": team}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trips := []models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// DeleteTrip removes a trip together with its day assignments.
func (s *TripService) DeleteTrip(ctx context.Context, id string) error {
	res, err := s.trips.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	if _, err := s.assignments.DeleteMany(ctx, bson.M{"trip_id": id}); err != nil {
		log.Printf("Failed to remove assignments of trip %s: %v", id, err)
	}
	return nil
}
