package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
	"wayfare/events"
	"wayfare/models"
	"wayfare/utils/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POIService manages points of interest. MongoDB is the source of truth;
// each team's pins are mirrored into a Redis geo set for nearby queries, with
// the full document cached in a Redis hash alongside.
type POIService struct {
	pois        *mongo.Collection
	assignments *mongo.Collection
	redisClient *redis.Client
	hub         *events.Hub
}

func NewPOIService(db *mongo.Database, redisClient *redis.Client, hub *events.Hub) *POIService {
	return &POIService{
		pois:        db.Collection("pois"),
		assignments: db.Collection("assignments"),
		redisClient: redisClient,
		hub:         hub,
	}
}

type POIInput struct {
	Name     string            `json:"name"`
	Location models.Coordinate `json:"location"`
	Tag      string            `json:"tag"`
	Duration int               `json:"duration"`
	City     string            `json:"city"`
	Team     string            `json:"team"`
}

func (in POIInput) validate() error {
	if in.Name == "" || in.City == "" || in.Team == "" {
		return errors.ErrInvalidInput
	}
	if !in.Location.Valid() {
		return errors.NewAPIError("INVALID_COORDINATE", "Coordinate is out of range", errors.ErrInvalidInput.Status)
	}
	if !models.ValidCategory(in.Tag) {
		return errors.NewAPIError("INVALID_CATEGORY", "Unknown category tag", errors.ErrInvalidInput.Status)
	}
	if in.Duration <= 0 {
		return errors.NewAPIError("INVALID_DURATION", "Duration must be a positive number of minutes", errors.ErrInvalidInput.Status)
	}
	return nil
}

func (s *POIService) CreatePOI(ctx context.Context, userID string, in POIInput) (models.POI, error) {
	if err := in.validate(); err != nil {
		return models.POI{}, err
	}

	poi := models.POI{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Location:  in.Location,
		Tag:       in.Tag,
		Duration:  in.Duration,
		City:      in.City,
		Team:      in.Team,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.pois.InsertOne(ctx, poi); err != nil {
		return models.POI{}, err
	}

	s.indexPOI(ctx, poi)
	if s.hub != nil {
		s.hub.Broadcast(events.Event{Action: "poi_created", Team: poi.Team, Data: poi})
	}
	return poi, nil
}

func (s *POIService) GetPOI(ctx context.Context, id string) (models.POI, error) {
	var poi models.POI
	err := s.pois.FindOne(ctx, bson.M{"_id": id}).Decode(&poi)
	if err == mongo.ErrNoDocuments {
		return models.POI{}, errors.ErrNotFound
	}
	if err != nil {
		return models.POI{}, err
	}
	return poi, nil
}

// ListPOIs returns a team's points of interest, optionally narrowed to one
// city, in creation order.
func (s *POIService) ListPOIs(ctx context.Context, team, city string) ([]models.POI, error) {
	filter := bson.M{"team": team}
	if city != "" {
		filter["city"] = city
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.pois.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pois := []models.POI{}
	if err := cursor.All(ctx, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}

// UpdateDuration edits the only mutable POI field.
func (s *POIService) UpdateDuration(ctx context.Context, id string, minutes int) (models.POI, error) {
	if minutes <= 0 {
		return models.POI{}, errors.NewAPIError("INVALID_DURATION", "Duration must be a positive number of minutes", errors.ErrInvalidInput.Status)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var poi models.POI
	err := s.pois.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"duration": minutes}},
		opts,
	).Decode(&poi)
	if err == mongo.ErrNoDocuments {
		return models.POI{}, errors.ErrNotFound
	}
	if err != nil {
		return models.POI{}, err
	}

	s.indexPOI(ctx, poi)
	if s.hub != nil {
		s.hub.Broadcast(events.Event{Action: "poi_updated", Team: poi.Team, Data: poi})
	}
	return poi, nil
}

// DeletePOI removes a point of interest and every day assignment that
// references it, so no trip keeps pointing at a deleted pin.
func (s *POIService) DeletePOI(ctx context.Context, id string) error {
	poi, err := s.GetPOI(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.pois.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	if _, err := s.assignments.DeleteMany(ctx, bson.M{"poi_id": id}); err != nil {
		log.Printf("Failed to remove assignments of POI %s: %v", id, err)
	}

	s.unindexPOI(ctx, poi)
	if s.hub != nil {
		s.hub.Broadcast(events.Event{Action: "poi_removed", Team: poi.Team, Data: poi})
	}
	return nil
}

// FindNearbyPOIs queries the team's Redis geo set for pins within radius
// kilometres, closest first, optionally filtered by category.
func (s *POIService) FindNearbyPOIs(ctx context.Context, team string, lat, lng, radius float64, tag string) ([]models.POI, error) {
	geoResults, err := s.redisClient.GeoRadius(ctx, teamGeoKey(team), lng, lat, &redis.GeoRadiusQuery{
		Radius:    radius,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
		Count:     50,
	}).Result()
	if err != nil {
		log.Printf("Redis GeoRadius error: %v", err)
		return nil, err
	}

	results := []models.POI{}
	for _, geoResult := range geoResults {
		poiJSON, err := s.redisClient.HGet(ctx, poiHashKey(geoResult.Name), "data").Result()
		if err != nil {
			log.Printf("Redis HGet error for POI %s: %v", geoResult.Name, err)
			continue
		}
		var poi models.POI
		if err := json.Unmarshal([]byte(poiJSON), &poi); err != nil {
			log.Printf("Failed to unmarshal POI %s: %v", geoResult.Name, err)
			continue
		}
		if tag != "" && poi.Tag != tag {
			continue
		}
		results = append(results, poi)
	}
	return results, nil
}

// RebuildGeoIndex repopulates the Redis mirror from MongoDB. Run at startup
// so nearby queries survive a cold or flushed Redis.
func (s *POIService) RebuildGeoIndex(ctx context.Context) error {
	cursor, err := s.pois.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var pois []models.POI
	if err := cursor.All(ctx, &pois); err != nil {
		return err
	}
	for _, poi := range pois {
		s.indexPOI(ctx, poi)
	}
	log.Printf("Indexed %d POIs into Redis", len(pois))
	return nil
}

func teamGeoKey(team string) string {
	return "pois:geo:" + team
}

func poiHashKey(id string) string {
	return "poi:" + id
}

func (s *POIService) indexPOI(ctx context.Context, poi models.POI) {
	poiJSON, err := json.Marshal(poi)
	if err != nil {
		log.Printf("Failed to marshal POI %s: %v", poi.Name, err)
		return
	}
	if err := s.redisClient.HSet(ctx, poiHashKey(poi.ID), "data", poiJSON).Err(); err != nil {
		log.Printf("Failed to cache POI %s in Redis: %v", poi.Name, err)
		return
	}
	err = s.redisClient.GeoAdd(ctx, teamGeoKey(poi.Team), &redis.GeoLocation{
		Name:      poi.ID,
		Longitude: poi.Location.Lng,
		Latitude:  poi.Location.Lat,
	}).Err()
	if err != nil {
		log.Printf("Failed to add POI %s to Redis geo set: %v", poi.Name, err)
	}
}

func (s *POIService) unindexPOI(ctx context.Context, poi models.POI) {
	if err := s.redisClient.ZRem(ctx, teamGeoKey(poi.Team), poi.ID).Err(); err != nil {
		log.Printf("Failed to remove POI %s from Redis geo set: %v", poi.Name, err)
	}
	if err := s.redisClient.Del(ctx, poiHashKey(poi.ID)).Err(); err != nil {
		log.Printf("Failed to drop cached POI %s: %v", poi.Name, err)
	}
}
