package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"
	"wayfare/models"
	"wayfare/utils/errors"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserService struct {
	collection  *mongo.Collection
	redisClient *redis.Client
	jwtSecret   string
}

func NewUserService(db *mongo.Database, redisClient *redis.Client, jwtSecret string) *UserService {
	collection := db.Collection("users")

	// Ensure unique index on username and email
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.Background(), indexModel)
	if err != nil {
		log.Printf("Failed to create unique index on users: %v", err)
	}

	return &UserService{
		collection:  collection,
		redisClient: redisClient,
		jwtSecret:   jwtSecret,
	}
}

// GetUser retrieves a user from Redis or MongoDB
func (s *UserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User

	// Check Redis first
	userJSON, err := s.redisClient.Get(ctx, "user:"+userID).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			log.Printf("Failed to unmarshal user %s: %v", userID, err)
		} else {
			return user, nil
		}
	}

	err = s.collection.FindOne(ctx, bson.M{"public_id": bson.M{"$eq": userID}}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, errors.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	// Cache in Redis
	userJSONBytes, err := json.Marshal(user)
	if err != nil {
		return user, err
	}
	s.redisClient.Set(ctx, "user:"+userID, userJSONBytes, 24*time.Hour)

	return user, nil
}

// IsMember reports whether the user belongs to the named team.
func (s *UserService) IsMember(ctx context.Context, userID, team string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, t := range user.Teams {
		if t == team {
			return true, nil
		}
	}
	return false, nil
}

// JoinTeam adds the requesting user to a named team. Teams come into
// existence by being joined; there is no separate team record.
func (s *UserService) JoinTeam(ctx context.Context, team string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	team = strings.TrimSpace(team)
	if team == "" || strings.ContainsAny(team, "/ ") {
		return errors.NewAPIError("INVALID_TEAM", "Team names cannot be empty or contain spaces or slashes", errors.ErrInvalidInput.Status)
	}

	update := bson.M{"$addToSet": bson.M{"teams": team}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, update)
	if err != nil {
		log.Printf("Failed to join team %s: %v", team, err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}

	s.invalidate(ctx, userID)
	return nil
}

// LeaveTeam removes the requesting user from a team.
func (s *UserService) LeaveTeam(ctx context.Context, team string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}

	update := bson.M{"$pull": bson.M{"teams": team}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, update)
	if err != nil {
		log.Printf("Failed to leave team %s: %v", team, err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}

	s.invalidate(ctx, userID)
	return nil
}

// Teams lists the requesting user's teams.
func (s *UserService) Teams(ctx context.Context) ([]string, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Teams == nil {
		return []string{}, nil
	}
	return user.Teams, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if err := s.redisClient.Del(ctx, "user:"+userID).Err(); err != nil {
		log.Printf("Failed to invalidate cached user %s: %v", userID, err)
	}
}
