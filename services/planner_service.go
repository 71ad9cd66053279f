package services

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"
	"wayfare/events"
	"wayfare/models"
	"wayfare/utils/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DayBudgetMinutes is the schedulable time in one itinerary day (14 hours).
	DayBudgetMinutes = 14 * 60

	// MaxRecommendations caps the ranked suggestion list.
	MaxRecommendations = 5
)

// PlannerService owns day assignments: placing points of interest onto trip
// days, the per-day time budget, and proximity-ranked suggestions for what to
// add next.
type PlannerService struct {
	trips       *mongo.Collection
	pois        *mongo.Collection
	assignments *mongo.Collection
	distance    DistanceProvider
	hub         *events.Hub
}

func NewPlannerService(db *mongo.Database, distance DistanceProvider, hub *events.Hub) *PlannerService {
	return &PlannerService{
		trips:       db.Collection("trips"),
		pois:        db.Collection("pois"),
		assignments: db.Collection("assignments"),
		distance:    distance,
		hub:         hub,
	}
}

func (s *PlannerService) getTrip(ctx context.Context, tripID string) (models.Trip, error) {
	var trip models.Trip
	err := s.trips.FindOne(ctx, bson.M{"_id": tripID}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return models.Trip{}, errors.ErrNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

// AssignToDay places a POI onto one day of a trip. The assignment carries the
// server clock, so the item just assigned is by construction the most recent
// one for that day.
func (s *PlannerService) AssignToDay(ctx context.Context, tripID, poiID string, day int) (models.DayAssignment, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return models.DayAssignment{}, err
	}
	if err := checkDay(trip, day); err != nil {
		return models.DayAssignment{}, err
	}

	var poi models.POI
	err = s.pois.FindOne(ctx, bson.M{"_id": poiID}).Decode(&poi)
	if err == mongo.ErrNoDocuments {
		return models.DayAssignment{}, errors.ErrNotFound
	}
	if err != nil {
		return models.DayAssignment{}, err
	}
	if poi.Team != trip.Team || poi.City != trip.City {
		return models.DayAssignment{}, errors.NewAPIError("POI_OUT_OF_SCOPE", "Point of interest belongs to a different team or city", http.StatusBadRequest)
	}

	existing, err := s.dayAssignments(ctx, tripID, day)
	if err != nil {
		return models.DayAssignment{}, err
	}
	if containsPOI(existing, poiID) {
		return models.DayAssignment{}, errors.ErrConflict
	}

	assignment := models.DayAssignment{
		ID:        uuid.New().String(),
		TripID:    tripID,
		PoiID:     poiID,
		Day:       day,
		Team:      trip.Team,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.assignments.InsertOne(ctx, assignment); err != nil {
		return models.DayAssignment{}, err
	}

	if s.hub != nil {
		s.hub.Broadcast(events.Event{Action: "assignment_created", Team: trip.Team, Data: assignment})
	}
	return assignment, nil
}

func (s *PlannerService) GetAssignment(ctx context.Context, assignmentID string) (models.DayAssignment, error) {
	var assignment models.DayAssignment
	err := s.assignments.FindOne(ctx, bson.M{"_id": assignmentID}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return models.DayAssignment{}, errors.ErrNotFound
	}
	if err != nil {
		return models.DayAssignment{}, err
	}
	return assignment, nil
}

// Unassign removes a day assignment. The POI itself stays available.
func (s *PlannerService) Unassign(ctx context.Context, assignmentID string) error {
	assignment, err := s.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if _, err := s.assignments.DeleteOne(ctx, bson.M{"_id": assignmentID}); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Broadcast(events.Event{Action: "assignment_removed", Team: assignment.Team, Data: assignment})
	}
	return nil
}

// ListAssignments returns every assignment of a trip, ordered by day then by
// creation time.
func (s *PlannerService) ListAssignments(ctx context.Context, tripID string) ([]models.DayAssignment, error) {
	if _, err := s.getTrip(ctx, tripID); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := s.assignments.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []models.DayAssignment{}
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// RemainingCapacity reports how many of the day's budgeted minutes are left.
// Over-scheduling is allowed, so the result may be negative.
func (s *PlannerService) RemainingCapacity(ctx context.Context, tripID string, day int) (int, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if err := checkDay(trip, day); err != nil {
		return 0, err
	}

	assignments, err := s.dayAssignments(ctx, tripID, day)
	if err != nil {
		return 0, err
	}
	assigned, err := s.poisByID(ctx, poiIDs(assignments))
	if err != nil {
		return 0, err
	}

	durations := make([]int, 0, len(assigned))
	for _, poi := range assigned {
		durations = append(durations, poi.Duration)
	}
	return RemainingMinutes(durations), nil
}

// RemainingMinutes subtracts the given visit durations from the day budget.
func RemainingMinutes(durations []int) int {
	remaining := DayBudgetMinutes
	for _, d := range durations {
		remaining -= d
	}
	return remaining
}

// Recommend suggests the nearest unassigned POIs relative to the most
// recently assigned item of the day. Without any assignment there is no
// origin to measure from, so the result is empty. A failed distance lookup
// degrades to an empty result instead of an error; reopening the day retries
// naturally.
func (s *PlannerService) Recommend(ctx context.Context, tripID string, day int) ([]models.POI, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkDay(trip, day); err != nil {
		return nil, err
	}

	assignments, err := s.dayAssignments(ctx, tripID, day)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []models.POI{}, nil
	}

	latest := latestAssignment(assignments)
	var origin models.POI
	err = s.pois.FindOne(ctx, bson.M{"_id": latest.PoiID}).Decode(&origin)
	if err == mongo.ErrNoDocuments {
		// Origin deleted concurrently: nothing to measure from.
		return []models.POI{}, nil
	}
	if err != nil {
		return nil, err
	}

	// Items already on this day are excluded so the same place is never
	// suggested twice.
	excluded := poiIDs(assignments)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.pois.Find(ctx, bson.M{
		"team": trip.Team,
		"city": trip.City,
		"_id":  bson.M{"$nin": excluded},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var candidates []models.POI
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}

	return s.rankCandidates(ctx, origin, excludeAssigned(candidates, assignments)), nil
}

// rankCandidates runs the batched distance lookup and orders the candidates.
// Lookup failures are logged and flattened to an empty list.
func (s *PlannerService) rankCandidates(ctx context.Context, origin models.POI, candidates []models.POI) []models.POI {
	if len(candidates) == 0 {
		return []models.POI{}
	}

	destinations := make([]models.Coordinate, len(candidates))
	for i, c := range candidates {
		destinations[i] = c.Location
	}

	distances, err := s.distance.WalkingDistances(ctx, origin.Location, destinations)
	if err != nil {
		log.Printf("Walking distances unavailable from %q: %v", origin.Name, err)
		return []models.POI{}
	}

	return RankByDistance(candidates, distances, MaxRecommendations)
}

// RankByDistance orders candidates ascending by walking distance from the
// origin. Unreachable candidates sort after every reachable one; ties keep
// their incoming order. distances must parallel candidates.
func RankByDistance(candidates []models.POI, distances []WalkingDistance, limit int) []models.POI {
	if len(candidates) != len(distances) {
		return []models.POI{}
	}

	type ranked struct {
		poi  models.POI
		dist WalkingDistance
	}
	rs := make([]ranked, len(candidates))
	for i := range candidates {
		rs[i] = ranked{poi: candidates[i], dist: distances[i]}
	}

	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i].dist, rs[j].dist
		if a.Available != b.Available {
			return a.Available
		}
		if !a.Available {
			return false
		}
		return a.KM < b.KM
	})

	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]models.POI, len(rs))
	for i, r := range rs {
		out[i] = r.poi
	}
	return out
}

func (s *PlannerService) dayAssignments(ctx context.Context, tripID string, day int) ([]models.DayAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.assignments.Find(ctx, bson.M{"trip_id": tripID, "day": day}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.DayAssignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// latestAssignment picks the most recently created assignment, breaking
// equal timestamps by id so the choice is deterministic.
func latestAssignment(assignments []models.DayAssignment) models.DayAssignment {
	latest := assignments[0]
	for _, a := range assignments[1:] {
		if a.CreatedAt.After(latest.CreatedAt) ||
			(a.CreatedAt.Equal(latest.CreatedAt) && a.ID > latest.ID) {
			latest = a
		}
	}
	return latest
}

// checkDay validates a 1-based day index against the trip length.
func checkDay(trip models.Trip, day int) error {
	if day < 1 || day > trip.Days {
		return errors.NewAPIError("INVALID_DAY", "Day is outside the trip range", http.StatusBadRequest)
	}
	return nil
}

func containsPOI(assignments []models.DayAssignment, poiID string) bool {
	for _, a := range assignments {
		if a.PoiID == poiID {
			return true
		}
	}
	return false
}

// excludeAssigned drops candidates already placed on the day, the origin
// among them.
func excludeAssigned(candidates []models.POI, assignments []models.DayAssignment) []models.POI {
	out := make([]models.POI, 0, len(candidates))
	for _, c := range candidates {
		if !containsPOI(assignments, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

func poiIDs(assignments []models.DayAssignment) []string {
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.PoiID)
	}
	return ids
}

func (s *PlannerService) poisByID(ctx context.Context, ids []string) ([]models.POI, error) {
	if len(ids) == 0 {
		return []models.POI{}, nil
	}
	cursor, err := s.pois.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pois []models.POI
	if err := cursor.All(ctx, &pois); err != nil {
		return nil, err
	}
	return pois, nil
}
