package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"wayfare/models"
	"wayfare/utils/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user
func (s *UserService) Register(ctx context.Context, username, email, password string) (string, error) {
	if username == "" || email == "" || password == "" {
		return "", errors.ErrInvalidInput
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	user := models.User{
		PublicID:     uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Teams:        []string{},
	}

	// Insert into MongoDB
	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		return "", errors.Wrap(err, "DB_ERROR", "failed to create user in database", http.StatusInternalServerError)
	}

	// Cache in Redis
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", errors.Wrap(err, "DB_ERROR", "Failed to marshal user", http.StatusInternalServerError)
	}
	s.redisClient.Set(ctx, "user:"+user.PublicID, userJSON, 24*time.Hour)

	return user.PublicID, nil
}

// Login authenticates a user and returns a JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return "", errors.ErrNotFound
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.NewAPIError("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   user.PublicID,
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	// Cache user in Redis
	userJSON, err := json.Marshal(user)
	if err != nil {
		return tokenString, nil
	}
	s.redisClient.Set(ctx, "user:"+user.PublicID, userJSON, 24*time.Hour)

	return tokenString, nil
}
