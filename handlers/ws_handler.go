package handlers

import (
	"net/http"
	"wayfare/events"
	"wayfare/middleware"
	"wayfare/services"
	"wayfare/utils/errors"

	"github.com/gorilla/mux"
)

// WSHandler serves the team event feed. Browsers cannot set an Authorization
// header on a websocket handshake, so the token arrives as a query parameter.
type WSHandler struct {
	hub         *events.Hub
	userService *services.UserService
	jwtSecret   string
}

func NewWSHandler(hub *events.Hub, userService *services.UserService, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, userService: userService, jwtSecret: jwtSecret}
}

func (h *WSHandler) TeamFeed(w http.ResponseWriter, r *http.Request) {
	team := mux.Vars(r)["team"]

	userID, err := middleware.ParseUserID(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	member, err := h.userService.IsMember(r.Context(), userID, team)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !member {
		middleware.WriteError(w, errors.ErrForbidden)
		return
	}

	events.ServeTeamSocket(h.hub, w, r, team)
}
