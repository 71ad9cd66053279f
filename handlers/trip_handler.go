package handlers

import (
	"encoding/json"
	"net/http"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/services"
	"wayfare/utils/errors"

	"github.com/gorilla/mux"
)

type TripHandler struct {
	tripService *services.TripService
	userService *services.UserService
}

type TripListResponse struct {
	Trips []models.Trip `json:"trips"`
	Count int           `json:"count"`
}

func NewTripHandler(tripService *services.TripService, userService *services.UserService) *TripHandler {
	return &TripHandler{tripService: tripService, userService: userService}
}

func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var input services.TripInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if !requireMember(w, r, h.userService, input.Team) {
		return
	}
	userID, _ := requestUserID(r)

	trip, err := h.tripService.CreateTrip(r.Context(), userID, input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if !requireMember(w, r, h.userService, team) {
		return
	}

	trips, err := h.tripService.ListTrips(r.Context(), team)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TripListResponse{Trips: trips, Count: len(trips)})
}

func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.memberTrip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.memberTrip(w, r)
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(r.Context(), trip.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Trip deleted", "id": trip.ID})
}

// memberTrip loads the trip from the path and checks the requester belongs
// to its team.
func (h *TripHandler) memberTrip(w http.ResponseWriter, r *http.Request) (models.Trip, bool) {
	trip, err := h.tripService.GetTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return models.Trip{}, false
	}
	if !requireMember(w, r, h.userService, trip.Team) {
		return models.Trip{}, false
	}
	return trip, true
}
