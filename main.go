package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"wayfare/events"
	"wayfare/handlers"
	"wayfare/middleware"
	"wayfare/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsKey == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY environment variable is not set")
	}

	// MongoDB
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is not set")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")
	db := client.Database(getEnv("MONGODB_DB", "wayfare"))

	// Redis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR environment variable is not set")
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		log.Fatalf("Invalid REDIS_DB value: %v", err)
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Team event feed, runs for the life of the process
	hub := events.NewHub()
	go hub.Run()

	// Services
	distanceService := services.NewDistanceService(mapsKey, redisClient)
	userService := services.NewUserService(db, redisClient, jwtSecret)
	poiService := services.NewPOIService(db, redisClient, hub)
	tripService := services.NewTripService(db)
	plannerService := services.NewPlannerService(db, distanceService, hub)

	// Rebuild the Redis geo mirror so nearby queries work after a cold start
	if err := poiService.RebuildGeoIndex(context.Background()); err != nil {
		log.Printf("Failed to rebuild POI geo index: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	poiHandler := handlers.NewPOIHandler(poiService, userService)
	tripHandler := handlers.NewTripHandler(tripService, userService)
	plannerHandler := handlers.NewPlannerHandler(plannerService, tripService, userService)
	distanceHandler := handlers.NewDistanceHandler(distanceService)
	wsHandler := handlers.NewWSHandler(hub, userService, jwtSecret)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Auth routes (rate limited)
	authLimiter := middleware.NewRateLimiter(rate.Limit(5), 5)
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(authLimiter.Limit())
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST")

	// Everything below requires a valid token
	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.JWTMiddleware(jwtSecret))

	// Teams
	api.HandleFunc("/user/teams", userHandler.ListTeams).Methods("GET")
	api.HandleFunc("/user/teams", userHandler.JoinTeam).Methods("POST")
	api.HandleFunc("/user/teams/{team}", userHandler.LeaveTeam).Methods("DELETE")

	// Points of interest
	api.HandleFunc("/pois", poiHandler.CreatePOI).Methods("POST")
	api.HandleFunc("/pois", poiHandler.ListPOIs).Methods("GET")
	api.HandleFunc("/pois/nearby", poiHandler.GetNearbyPOIs).Methods("GET")
	api.HandleFunc("/pois/{id}", poiHandler.UpdateDuration).Methods("PATCH")
	api.HandleFunc("/pois/{id}", poiHandler.DeletePOI).Methods("DELETE")

	// Trips and day planning
	api.HandleFunc("/trips", tripHandler.CreateTrip).Methods("POST")
	api.HandleFunc("/trips", tripHandler.ListTrips).Methods("GET")
	api.HandleFunc("/trips/{id}", tripHandler.GetTrip).Methods("GET")
	api.HandleFunc("/trips/{id}", tripHandler.DeleteTrip).Methods("DELETE")
	api.HandleFunc("/trips/{id}/assignments", plannerHandler.ListAssignments).Methods("GET")
	api.HandleFunc("/trips/{id}/days/{day}/assignments", plannerHandler.AssignToDay).Methods("POST")
	api.HandleFunc("/trips/{id}/days/{day}/capacity", plannerHandler.RemainingCapacity).Methods("GET")
	api.HandleFunc("/trips/{id}/days/{day}/recommendations", plannerHandler.Recommend).Methods("GET")
	api.HandleFunc("/assignments/{id}", plannerHandler.Unassign).Methods("DELETE")

	// Raw distance lookup, same shape the provider returns
	api.HandleFunc("/api/walking", distanceHandler.GetWalkingDistances).Methods("POST")

	// Websocket feed authenticates via query token, outside the JWT middleware
	r.HandleFunc("/ws/teams/{team}", wsHandler.TeamFeed).Methods("GET")

	allowedOrigins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	port := getEnv("PORT", "8080")
	log.Printf("Server starting on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
