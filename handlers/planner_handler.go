package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/services"
	"wayfare/utils/errors"

	"github.com/gorilla/mux"
)

type PlannerHandler struct {
	plannerService *services.PlannerService
	tripService    *services.TripService
	userService    *services.UserService
}

type CapacityResponse struct {
	Day              int `json:"day"`
	RemainingMinutes int `json:"remaining_minutes"`
	BudgetMinutes    int `json:"budget_minutes"`
}

type RecommendationResponse struct {
	Day             int          `json:"day"`
	Recommendations []models.POI `json:"recommendations"`
	Count           int          `json:"count"`
}

type AssignmentListResponse struct {
	Assignments []models.DayAssignment `json:"assignments"`
	Count       int                    `json:"count"`
}

func NewPlannerHandler(plannerService *services.PlannerService, tripService *services.TripService, userService *services.UserService) *PlannerHandler {
	return &PlannerHandler{
		plannerService: plannerService,
		tripService:    tripService,
		userService:    userService,
	}
}

func (h *PlannerHandler) AssignToDay(w http.ResponseWriter, r *http.Request) {
	trip, day, ok := h.memberTripDay(w, r)
	if !ok {
		return
	}

	var input struct {
		PoiID string `json:"poi_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.PoiID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	assignment, err := h.plannerService.AssignToDay(r.Context(), trip.ID, input.PoiID, day)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *PlannerHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.plannerService.GetAssignment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !requireMember(w, r, h.userService, assignment.Team) {
		return
	}

	if err := h.plannerService.Unassign(r.Context(), assignment.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Assignment removed", "id": assignment.ID})
}

func (h *PlannerHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	trip, err := h.tripService.GetTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !requireMember(w, r, h.userService, trip.Team) {
		return
	}

	assignments, err := h.plannerService.ListAssignments(r.Context(), trip.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssignmentListResponse{Assignments: assignments, Count: len(assignments)})
}

func (h *PlannerHandler) RemainingCapacity(w http.ResponseWriter, r *http.Request) {
	trip, day, ok := h.memberTripDay(w, r)
	if !ok {
		return
	}

	remaining, err := h.plannerService.RemainingCapacity(r.Context(), trip.ID, day)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CapacityResponse{
		Day:              day,
		RemainingMinutes: remaining,
		BudgetMinutes:    services.DayBudgetMinutes,
	})
}

func (h *PlannerHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	trip, day, ok := h.memberTripDay(w, r)
	if !ok {
		return
	}

	recommendations, err := h.plannerService.Recommend(r.Context(), trip.ID, day)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendationResponse{
		Day:             day,
		Recommendations: recommendations,
		Count:           len(recommendations),
	})
}

// memberTripDay resolves the {id} and {day} path segments and checks team
// membership against the trip.
func (h *PlannerHandler) memberTripDay(w http.ResponseWriter, r *http.Request) (models.Trip, int, bool) {
	vars := mux.Vars(r)

	trip, err := h.tripService.GetTrip(r.Context(), vars["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return models.Trip{}, 0, false
	}
	if !requireMember(w, r, h.userService, trip.Team) {
		return models.Trip{}, 0, false
	}

	day, err := strconv.Atoi(vars["day"])
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return models.Trip{}, 0, false
	}
	return trip, day, true
}
