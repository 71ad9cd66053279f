package handlers

import (
	"encoding/json"
	"net/http"
	"wayfare/middleware"
	"wayfare/services"
	"wayfare/utils/errors"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Team string `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.userService.JoinTeam(r.Context(), input.Team); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Joined team", "team": input.Team})
}

func (h *UserHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	team := mux.Vars(r)["team"]
	if err := h.userService.LeaveTeam(r.Context(), team); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Left team", "team": team})
}

func (h *UserHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.userService.Teams(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": teams, "count": len(teams)})
}
